package taskmanager

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/mock"
)

// mockObserver records diagnostics with testify expectations.
type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) TaskMissing(name string) {
	m.Called(name)
}

func (m *mockObserver) DependenciesUnmet(name string, pending []string) {
	m.Called(name, pending)
}

func (m *mockObserver) UnknownDependency(name, dependency string) {
	m.Called(name, dependency)
}

func (m *mockObserver) CascadeFailed(name string, err error) {
	m.Called(name, err)
}

// recordingObserver keeps every diagnostic for later inspection.
type recordingObserver struct {
	mu       sync.Mutex
	missing  []string
	unmet    map[string][]string
	unknown  map[string][]string
	failures map[string]error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		unmet:    make(map[string][]string),
		unknown:  make(map[string][]string),
		failures: make(map[string]error),
	}
}

func (o *recordingObserver) TaskMissing(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.missing = append(o.missing, name)
}

func (o *recordingObserver) DependenciesUnmet(name string, pending []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unmet[name] = pending
}

func (o *recordingObserver) UnknownDependency(name, dependency string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unknown[name] = append(o.unknown[name], dependency)
}

func (o *recordingObserver) CascadeFailed(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures[name] = err
}

func (o *recordingObserver) missingNames() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.missing...)
}

func (o *recordingObserver) unmetFor(name string) ([]string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	pending, ok := o.unmet[name]
	return pending, ok
}

func (o *recordingObserver) failureFor(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.failures[name]
}

// countingHandler counts invocations and returns result.
type countingHandler struct {
	calls  atomic.Int32
	result interface{}
	err    error
}

func (h *countingHandler) handle(ctx context.Context) (interface{}, error) {
	h.calls.Add(1)
	return h.result, h.err
}

func (h *countingHandler) count() int {
	return int(h.calls.Load())
}

// countingReset counts reset hook invocations.
type countingReset struct {
	calls atomic.Int32
	err   error
}

func (h *countingReset) reset(ctx context.Context) error {
	h.calls.Add(1)
	return h.err
}

func (h *countingReset) count() int {
	return int(h.calls.Load())
}

// checkIndex checks the dependency index against the registered tasks and returns a description
// of the first violation, or "".
func checkIndex(r *Registry) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for prereq, list := range r.dependents.byPrereq {
		if len(list) == 0 {
			return "empty list kept for " + prereq
		}
		seen := make(map[*Task]bool)
		for _, task := range list {
			if seen[task] {
				return "duplicate " + task.name + " under " + prereq
			}
			seen[task] = true
			if registered := r.tasks[task.name]; registered != task {
				return "stale task " + task.name + " under " + prereq
			}
			found := false
			for _, dep := range task.depends {
				if dep == prereq {
					found = true
				}
			}
			if !found {
				return task.name + " listed under " + prereq + " without depending on it"
			}
		}
	}
	for _, task := range r.tasks {
		for _, dep := range task.depends {
			found := false
			for _, listed := range r.dependents.byPrereq[dep] {
				if listed == task {
					found = true
				}
			}
			if !found {
				return task.name + " missing from index under " + dep
			}
		}
	}
	return ""
}
