package taskmanager

import (
	"context"
	"errors"
	"sort"
	"sync"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
)

// Registry owns a set of named tasks and runs each one only after all of its
// prerequisites have been marked finished.
//
// Running a task and marking it finished are separate steps: Execute runs the
// handler, Finish records completion and starts every dependent whose
// prerequisites are now all complete.
type Registry struct {
	mu         sync.Mutex
	tasks      map[string]*Task
	dependents *dependencyIndex
	results    *SharedContext
	observer   Observer

	// inflight counts executions started by Finish that have not returned.
	inflight sync.WaitGroup
}

// NewRegistry creates an empty registry. A nil observer logs diagnostics to
// the operational logger.
func NewRegistry(observer Observer) *Registry {
	if observer == nil {
		observer = NewLogObserver(nil)
	}
	return &Registry{
		tasks:      make(map[string]*Task),
		dependents: newDependencyIndex(),
		results:    NewSharedContext(),
		observer:   observer,
	}
}

// Add registers a task, replacing any task with the same name.
func (r *Registry) Add(name string, opts Options) {
	task := newTask(name, opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.tasks[name]; ok {
		r.dependents.remove(prev)
	}
	r.tasks[name] = task
	r.dependents.add(task)
}

// Remove unregisters a task. Unknown names are ignored.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[name]
	if !ok {
		return
	}
	delete(r.tasks, name)
	r.dependents.remove(task)
	r.results.Delete(name)
}

// Execute runs the named task's handler if the task exists, all of its
// prerequisites are completed and it is neither running nor completed.
// Otherwise it returns (nil, nil); unknown tasks and unmet prerequisites are
// reported to the observer. Handler failures are returned as *errors.TaskError.
func (r *Registry) Execute(ctx context.Context, name string) (interface{}, error) {
	result, _, err := r.execute(ctx, name)
	return result, err
}

func (r *Registry) execute(ctx context.Context, name string) (interface{}, bool, error) {
	r.mu.Lock()
	task, ok := r.tasks[name]
	if !ok {
		r.mu.Unlock()
		r.observer.TaskMissing(name)
		return nil, false, nil
	}
	if pending := r.pendingLocked(task); len(pending) > 0 {
		r.mu.Unlock()
		r.observer.DependenciesUnmet(name, pending)
		return nil, false, nil
	}
	if task.completed || task.running {
		r.mu.Unlock()
		return nil, false, nil
	}
	task.running = true
	r.mu.Unlock()

	result, err := task.run(ctx)

	r.mu.Lock()
	task.running = false
	r.mu.Unlock()

	if err != nil {
		return nil, true, taskerrors.NewHandlerError(name, err)
	}
	r.results.Set(name, result)
	return result, true, nil
}

// Finish marks the named task completed, whether or not it was executed, and
// starts Execute for every dependent whose prerequisites are now all
// completed. Dependents run in their own goroutines with ctx; the returned
// Cascade reports their outcomes. Failures are also sent to the observer.
func (r *Registry) Finish(ctx context.Context, name string) *Cascade {
	r.mu.Lock()
	task, ok := r.tasks[name]
	if !ok {
		r.mu.Unlock()
		return newCascade(name, nil)
	}
	task.completed = true

	var ready []string
	for _, dep := range r.dependents.get(name) {
		if len(r.pendingLocked(dep)) == 0 {
			ready = append(ready, dep.name)
		}
	}
	r.inflight.Add(len(ready))
	r.mu.Unlock()

	cascade := newCascade(name, ready)
	for _, depName := range ready {
		go func(depName string) {
			defer r.inflight.Done()
			result, executed, err := r.execute(ctx, depName)
			if err != nil {
				r.observer.CascadeFailed(depName, err)
			}
			cascade.settle(CascadeResult{
				Task:     depName,
				Executed: executed,
				Result:   result,
				Err:      err,
			})
		}(depName)
	}
	return cascade
}

// Reset runs the reset hook of the named task, clears its completed flag and
// then resets its dependents depth first. Each task is reset at most once per
// call. A failing hook leaves that task and the tasks below it untouched.
func (r *Registry) Reset(ctx context.Context, name string) error {
	return r.reset(ctx, name, make(map[string]bool))
}

// ResetAll resets every named task like Reset, sharing one traversal so a
// task below several of the names is reset only once.
func (r *Registry) ResetAll(ctx context.Context, names ...string) error {
	visited := make(map[string]bool)
	var errs []error
	for _, name := range names {
		if err := r.reset(ctx, name, visited); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) reset(ctx context.Context, name string, visited map[string]bool) error {
	if visited[name] {
		return nil
	}
	visited[name] = true

	r.mu.Lock()
	task, ok := r.tasks[name]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	if err := task.undo(ctx); err != nil {
		return taskerrors.NewResetError(name, err)
	}

	r.mu.Lock()
	task.completed = false
	children := r.dependents.names(name)
	r.mu.Unlock()
	r.results.Delete(name)

	var errs []error
	for _, child := range children {
		if err := r.reset(ctx, child, visited); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until every execution started by Finish, including nested
// cascades, has returned.
func (r *Registry) Wait() {
	r.inflight.Wait()
}

// Has reports whether a task is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[name]
	return ok
}

// Names returns the registered task names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// State returns a copy of the named task's state.
func (r *Registry) State(name string) (TaskState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[name]
	if !ok {
		return TaskState{}, false
	}
	return task.state(), true
}

// Dependents returns the names of the tasks that declare name as a prerequisite.
func (r *Registry) Dependents(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dependents.names(name)
}

// Prerequisites returns every name that at least one task depends on.
func (r *Registry) Prerequisites() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dependents.keys()
}

// Result returns the result of the task's last successful execution.
// Reset and Remove discard it.
func (r *Registry) Result(name string) (interface{}, bool) {
	return r.results.Get(name)
}

// Pending returns the prerequisites of name that are unregistered or not completed.
func (r *Registry) Pending(name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[name]
	if !ok {
		return nil
	}
	return r.pendingLocked(task)
}

// pendingLocked treats an unregistered prerequisite as not completed.
func (r *Registry) pendingLocked(task *Task) []string {
	var pending []string
	for _, dep := range task.depends {
		prereq, ok := r.tasks[dep]
		if !ok || !prereq.completed {
			pending = append(pending, dep)
		}
	}
	return pending
}
