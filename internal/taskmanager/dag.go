package taskmanager

import (
	"slices"
	"sort"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
)

// Order returns the registered task names in an order where every task comes
// after its registered prerequisites. Unregistered prerequisites are ignored.
// Ties are broken by name so the order is stable.
// Returns a GRAPH error wrapping ErrCyclicDependency if no such order exists.
func (r *Registry) Order() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.topologicalSortLocked()
}

func (r *Registry) topologicalSortLocked() ([]string, error) {
	// indegree counts distinct registered prerequisites
	inDegree := make(map[string]int, len(r.tasks))
	for name, task := range r.tasks {
		inDegree[name] = 0
		seen := make(map[string]bool, len(task.depends))
		for _, dep := range task.depends {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := r.tasks[dep]; ok {
				inDegree[name]++
			}
		}
	}

	var queue []string
	for _, name := range r.namesLocked() {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(r.tasks))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		next := r.dependents.names(current)
		sort.Strings(next)
		for _, name := range next {
			inDegree[name]--
			if inDegree[name] == 0 {
				queue = append(queue, name)
			}
		}
	}

	if len(order) != len(r.tasks) {
		var unordered []string
		for name, degree := range inDegree {
			if degree > 0 {
				unordered = append(unordered, name)
			}
		}
		sort.Strings(unordered)
		return nil, taskerrors.NewCycleError(unordered)
	}

	return order, nil
}

// Validate reports every prerequisite that names no registered task to the
// observer and returns an error if the registered tasks contain a cycle.
// Unregistered prerequisites are not an error: such tasks stay blocked.
func (r *Registry) Validate() error {
	type unknown struct{ task, dep string }

	r.mu.Lock()
	var missing []unknown
	for _, name := range r.namesLocked() {
		task := r.tasks[name]
		var reported []string
		for _, dep := range task.depends {
			if _, ok := r.tasks[dep]; ok || slices.Contains(reported, dep) {
				continue
			}
			reported = append(reported, dep)
			missing = append(missing, unknown{task: name, dep: dep})
		}
	}
	_, err := r.topologicalSortLocked()
	r.mu.Unlock()

	for _, m := range missing {
		r.observer.UnknownDependency(m.task, m.dep)
	}
	return err
}
