package taskmanager

import (
	"errors"
	"slices"
	"sync"
)

// CascadeResult is the outcome of one dependent started by Finish.
type CascadeResult struct {
	Task string
	// Executed is false when Execute returned without calling the handler,
	// for example because the task was already running or completed.
	Executed bool
	Result   interface{}
	Err      error
}

// Cascade tracks the dependents a single Finish call dispatched.
// The dependents run concurrently; Wait collects their outcomes.
type Cascade struct {
	source  string
	names   []string
	wg      sync.WaitGroup
	mu      sync.Mutex
	results map[string]CascadeResult
}

func newCascade(source string, names []string) *Cascade {
	c := &Cascade{
		source:  source,
		names:   names,
		results: make(map[string]CascadeResult, len(names)),
	}
	c.wg.Add(len(names))
	return c
}

func (c *Cascade) settle(res CascadeResult) {
	c.mu.Lock()
	c.results[res.Task] = res
	c.mu.Unlock()
	c.wg.Done()
}

// Source returns the name of the finished task.
func (c *Cascade) Source() string {
	return c.source
}

// Names returns the dependents that were dispatched, in index order.
func (c *Cascade) Names() []string {
	return slices.Clone(c.names)
}

// Wait blocks until every dispatched dependent has settled. Results follow
// the order of Names; the error joins every handler failure.
func (c *Cascade) Wait() ([]CascadeResult, error) {
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	results := make([]CascadeResult, 0, len(c.names))
	var errs []error
	for _, name := range c.names {
		res := c.results[name]
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return results, errors.Join(errs...)
}
