package taskmanager

import (
	"testing"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, obs Observer, deps map[string][]string) *Registry {
	t.Helper()
	r := NewRegistry(obs)
	for name, depends := range deps {
		r.Add(name, Options{Depends: depends})
	}
	return r
}

func TestRegistry_Order(t *testing.T) {
	tests := []struct {
		name string
		deps map[string][]string
		want []string
	}{
		{
			name: "empty",
			deps: map[string][]string{},
			want: []string{},
		},
		{
			name: "independent tasks sorted by name",
			deps: map[string][]string{"c": nil, "a": nil, "b": nil},
			want: []string{"a", "b", "c"},
		},
		{
			name: "chain",
			deps: map[string][]string{"task1": {"task2"}, "task2": {"task3"}, "task3": nil},
			want: []string{"task3", "task2", "task1"},
		},
		{
			name: "diamond",
			deps: map[string][]string{
				"task4": nil,
				"task1": {"task4"},
				"task2": {"task4"},
				"task3": {"task1", "task2"},
			},
			want: []string{"task4", "task1", "task2", "task3"},
		},
		{
			name: "unregistered prerequisite ignored",
			deps: map[string][]string{"parse": {"fetch", "config"}, "fetch": nil},
			want: []string{"fetch", "parse"},
		},
		{
			name: "duplicate prerequisite counted once",
			deps: map[string][]string{"a": nil, "b": {"a", "a"}},
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newGraph(t, newRecordingObserver(), tt.deps)

			order, err := r.Order()

			require.NoError(t, err)
			assert.Equal(t, tt.want, order)
		})
	}
}

func TestRegistry_OrderCycleDetection(t *testing.T) {
	tests := []struct {
		name          string
		deps          map[string][]string
		wantUnordered string
	}{
		{
			name:          "three task cycle",
			deps:          map[string][]string{"task1": {"task2"}, "task2": {"task3"}, "task3": {"task1"}},
			wantUnordered: "task1, task2, task3",
		},
		{
			name:          "self cycle",
			deps:          map[string][]string{"task1": {"task1"}, "task0": nil},
			wantUnordered: "task1",
		},
		{
			name:          "downstream of cycle",
			deps:          map[string][]string{"a": {"b"}, "b": {"a"}, "c": {"a"}, "root": nil},
			wantUnordered: "a, b, c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newGraph(t, newRecordingObserver(), tt.deps)

			order, err := r.Order()

			require.Error(t, err)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, taskerrors.ErrCyclicDependency)
			taskErr, ok := taskerrors.AsTaskError(err)
			require.True(t, ok)
			assert.Equal(t, taskerrors.ErrorCategoryGraph, taskErr.Category)
			assert.Equal(t, tt.wantUnordered, taskErr.Context["tasks"])
		})
	}
}

func TestRegistry_ValidateReportsUnknownDependencies(t *testing.T) {
	obs := &mockObserver{}
	obs.On("UnknownDependency", "parse", "config").Once()
	obs.On("UnknownDependency", "report", "upload").Once()
	r := newGraph(t, obs, map[string][]string{
		"fetch":  nil,
		"parse":  {"fetch", "config", "config"},
		"report": {"parse", "upload"},
	})

	err := r.Validate()

	assert.NoError(t, err)
	obs.AssertExpectations(t)
}

func TestRegistry_ValidateCycle(t *testing.T) {
	r := newGraph(t, newRecordingObserver(), map[string][]string{"a": {"b"}, "b": {"a"}})

	err := r.Validate()

	assert.ErrorIs(t, err, taskerrors.ErrCyclicDependency)
}
