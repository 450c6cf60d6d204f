package taskmanager

import (
	"context"
	"fmt"
	"slices"
)

// Handler is the function signature for a task's execution logic.
type Handler func(ctx context.Context) (interface{}, error)

// ResetFunc undoes the side effects of a task's handler.
type ResetFunc func(ctx context.Context) error

// Options describes a task being added to a Registry.
type Options struct {
	// Depends lists prerequisite task names. Names that are never registered
	// keep the task permanently blocked.
	Depends []string
	Handler Handler
	Reset   ResetFunc
}

// Task is a named unit of work owned by a Registry.
// The running and completed flags are only read or written under the registry lock.
type Task struct {
	name      string
	depends   []string
	handler   Handler
	reset     ResetFunc
	running   bool
	completed bool
}

// TaskState is a point-in-time copy of a task's state.
type TaskState struct {
	Name      string
	Depends   []string
	Running   bool
	Completed bool
}

func newTask(name string, opts Options) *Task {
	return &Task{
		name:    name,
		depends: slices.Clone(opts.Depends),
		handler: opts.Handler,
		reset:   opts.Reset,
	}
}

func (t *Task) Name() string {
	return t.name
}

func (t *Task) Depends() []string {
	return slices.Clone(t.depends)
}

func (t *Task) state() TaskState {
	return TaskState{
		Name:      t.name,
		Depends:   t.Depends(),
		Running:   t.running,
		Completed: t.completed,
	}
}

// run invokes the handler. A panic is turned into an error so the caller can
// always clear the running flag.
func (t *Task) run(ctx context.Context) (result interface{}, err error) {
	if t.handler == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return t.handler(ctx)
}

func (t *Task) undo(ctx context.Context) error {
	if t.reset == nil {
		return nil
	}
	return t.reset(ctx)
}
