package taskmanager

import (
	"context"
	"errors"
	"testing"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascade_WaitCollectsInNameOrder(t *testing.T) {
	c := newCascade("fetch", []string{"parse", "index"})
	boom := errors.New("boom")

	go c.settle(CascadeResult{Task: "index", Executed: true, Err: boom})
	go c.settle(CascadeResult{Task: "parse", Executed: true, Result: 42})

	results, err := c.Wait()

	require.Len(t, results, 2)
	assert.Equal(t, "parse", results[0].Task)
	assert.Equal(t, 42, results[0].Result)
	assert.Equal(t, "index", results[1].Task)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "fetch", c.Source())
	assert.Equal(t, []string{"parse", "index"}, c.Names())
}

func TestCascade_EmptyWaitReturnsImmediately(t *testing.T) {
	c := newCascade("fetch", nil)

	results, err := c.Wait()

	assert.Empty(t, results)
	assert.NoError(t, err)
}

func TestRegistry_FinishReportsCascadeFailure(t *testing.T) {
	obs := newRecordingObserver()
	r := NewRegistry(obs)
	boom := errors.New("exit status 2")
	r.Add("fetch", Options{})
	r.Add("parse", Options{
		Depends: []string{"fetch"},
		Handler: func(ctx context.Context) (interface{}, error) { return nil, boom },
	})

	results, err := r.Finish(context.Background(), "fetch").Wait()

	require.Len(t, results, 1)
	assert.True(t, results[0].Executed)
	assert.ErrorIs(t, err, boom)
	taskErr, ok := taskerrors.AsTaskError(results[0].Err)
	require.True(t, ok)
	assert.Equal(t, taskerrors.ErrorCategoryHandler, taskErr.Category)
	assert.ErrorIs(t, obs.failureFor("parse"), boom)

	state, _ := r.State("parse")
	assert.False(t, state.Running)
	assert.False(t, state.Completed)
}

func TestRegistry_FinishSkipsCompletedDependent(t *testing.T) {
	r := NewRegistry(newRecordingObserver())
	h := &countingHandler{}
	r.Add("fetch", Options{})
	r.Add("parse", Options{Depends: []string{"fetch"}, Handler: h.handle})
	r.Finish(context.Background(), "parse")

	results, err := r.Finish(context.Background(), "fetch").Wait()

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Executed)
	assert.Equal(t, 0, h.count())
}
