// Package orchestrator runs the shell tasks of a plan through a task registry.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
	"github.com/maxkimambo/taskdeps/internal/logger"
	"github.com/maxkimambo/taskdeps/internal/plan"
	"github.com/maxkimambo/taskdeps/internal/progress"
	"github.com/maxkimambo/taskdeps/internal/taskmanager"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Orchestrator registers every task of a plan and drives its execution.
// A task's handler runs its command and, on success, finishes the task so
// its dependents start.
type Orchestrator struct {
	cfg      *Config
	plan     *plan.Plan
	runner   CommandRunner
	registry *taskmanager.Registry
	sem      *semaphore.Weighted
	runID    string
	workdir  string
	env      []string

	mu       sync.Mutex
	outcomes map[string]*outcome
	cancel   context.CancelCauseFunc
}

type outcome struct {
	runs     int
	duration time.Duration
	output   string
	err      error
}

// New creates an orchestrator for p. Commands run through cfg.Shell.
func New(cfg *Config, p *plan.Plan) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	o := &Orchestrator{
		cfg:      cfg,
		plan:     p,
		runner:   NewShellRunner(cfg.Shell),
		sem:      semaphore.NewWeighted(int64(max(cfg.Concurrency, 1))),
		runID:    "run_" + uuid.New().String(),
		workdir:  p.Workdir,
		env:      p.Environ(cfg.Env),
		outcomes: make(map[string]*outcome),
		cancel:   func(error) {},
	}
	if cfg.Workdir != "" {
		o.workdir = cfg.Workdir
	}

	observer := taskmanager.NewLogObserver(logger.Op.WithFields(map[string]interface{}{
		"run_id": o.runID,
	}))
	o.registry = taskmanager.NewRegistry(observer)
	for _, t := range p.Tasks {
		o.registry.Add(t.Name, taskmanager.Options{
			Depends: t.Depends,
			Handler: o.handler(t),
			Reset:   o.resetHook(t),
		})
	}
	return o
}

// WithRunner replaces the command runner.
func (o *Orchestrator) WithRunner(r CommandRunner) *Orchestrator {
	o.runner = r
	return o
}

// RunID returns the identifier attached to this run's operational logs.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Registry exposes the task registry backing the plan.
func (o *Orchestrator) Registry() *taskmanager.Registry {
	return o.registry
}

// Validate checks the configuration, the plan and the dependency graph.
// Prerequisites naming no task are logged as warnings; cycles are errors.
func (o *Orchestrator) Validate() error {
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	if err := o.plan.Validate(); err != nil {
		return err
	}
	for _, name := range o.cfg.Rerun {
		if _, ok := o.plan.Task(name); !ok {
			return taskerrors.NewConfigurationError(
				fmt.Sprintf("--rerun names unknown task '%s'", name))
		}
	}
	return o.registry.Validate()
}

// Order returns the order tasks would run in if executed one at a time.
func (o *Orchestrator) Order() ([]string, error) {
	return o.registry.Order()
}

// Run executes every task of the plan. Root tasks start concurrently and the
// rest start as their prerequisites finish. Tasks named in Config.Rerun are
// then reset and executed again together with everything downstream of them.
//
// Task failures are recorded in the report, not returned. The error is
// non-nil when the plan is invalid, a reset fails or ctx is canceled.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()

	logger.Op.WithFields(map[string]interface{}{
		"run_id": o.runID,
		"plan":   o.plan.Name,
		"tasks":  len(o.plan.Tasks),
	}).Info("Starting plan run")

	start := time.Now()
	stop := o.startProgress(runCtx, progress.PhaseExecute)
	o.executeAll(runCtx, o.roots())
	stop()

	var runErr error
	if len(o.cfg.Rerun) > 0 && runCtx.Err() == nil {
		runErr = o.rerun(runCtx)
	}

	report := o.buildReport(time.Since(start))
	if ctx.Err() != nil {
		runErr = errors.Join(runErr, ctx.Err())
	}

	logger.Op.WithFields(map[string]interface{}{
		"run_id":    o.runID,
		"completed": report.Count(StatusCompleted),
		"failed":    report.Count(StatusFailed),
		"blocked":   report.Count(StatusBlocked),
		"duration":  report.Duration.String(),
	}).Info("Plan run finished")

	return report, runErr
}

// executeAll executes names concurrently and waits until every cascade they
// started has settled.
func (o *Orchestrator) executeAll(ctx context.Context, names []string) {
	var g errgroup.Group
	for _, name := range names {
		g.Go(func() error {
			_, err := o.registry.Execute(ctx, name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		logger.Op.WithFields(map[string]interface{}{
			"run_id": o.runID,
			"error":  err.Error(),
		}).Debug("Root task failed")
	}
	o.registry.Wait()
}

func (o *Orchestrator) rerun(ctx context.Context) error {
	order, err := o.registry.Order()
	if err != nil {
		return err
	}
	targets := slices.Clone(o.cfg.Rerun)
	slices.SortStableFunc(targets, func(a, b string) int {
		return slices.Index(order, a) - slices.Index(order, b)
	})
	targets = slices.Compact(targets)

	logger.User.Infof("Re-running %d task(s): %s", len(targets), strings.Join(targets, ", "))

	resetErr := o.registry.ResetAll(ctx, targets...)
	if resetErr != nil {
		logger.User.Errorf("Reset failed: %v", resetErr)
	}

	// Targets below another target are started by its cascade.
	var ready []string
	for _, name := range targets {
		if len(o.registry.Pending(name)) == 0 {
			ready = append(ready, name)
		}
	}

	stop := o.startProgress(ctx, progress.PhaseRerun)
	o.executeAll(ctx, ready)
	stop()

	return resetErr
}

func (o *Orchestrator) roots() []string {
	var roots []string
	for _, t := range o.plan.Tasks {
		if len(t.Depends) == 0 {
			roots = append(roots, t.Name)
		}
	}
	return roots
}

func (o *Orchestrator) handler(t plan.Task) taskmanager.Handler {
	return func(ctx context.Context) (interface{}, error) {
		if err := o.sem.Acquire(ctx, 1); err != nil {
			o.fail(t.Name, err)
			return nil, err
		}

		logger.User.Starting(t.Name)
		start := time.Now()
		res, err := o.runCommand(ctx, t.Name, t.Run, o.timeoutFor(t))
		o.sem.Release(1)
		o.record(t.Name, res, time.Since(start), err)

		if err != nil {
			logger.User.Failure(t.Name, err)
			if o.cfg.FailFast {
				o.abort(err)
			}
			return nil, err
		}

		logger.User.Success(t.Name)
		o.registry.Finish(ctx, t.Name)
		return strings.TrimSpace(res.Stdout), nil
	}
}

func (o *Orchestrator) resetHook(t plan.Task) taskmanager.ResetFunc {
	return func(ctx context.Context) error {
		logger.User.Resetting(t.Name)
		if strings.TrimSpace(t.Reset) != "" {
			if _, err := o.runCommand(ctx, t.Name, t.Reset, o.timeoutFor(t)); err != nil {
				return err
			}
		}

		o.mu.Lock()
		if oc := o.outcomes[t.Name]; oc != nil {
			oc.err = nil
		}
		o.mu.Unlock()
		return nil
	}
}

func (o *Orchestrator) runCommand(ctx context.Context, name, script string, timeout time.Duration) (CommandResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger.Op.WithFields(map[string]interface{}{
		"run_id":  o.runID,
		"task":    name,
		"command": script,
		"dir":     o.workdir,
	}).Debug("Running command")

	return o.runner.Run(ctx, Command{
		Task:   name,
		Script: script,
		Dir:    o.workdir,
		Env:    o.env,
	})
}

func (o *Orchestrator) timeoutFor(t plan.Task) time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return o.cfg.Timeout
}

func (o *Orchestrator) abort(err error) {
	o.mu.Lock()
	cancel := o.cancel
	o.mu.Unlock()
	cancel(err)
}

func (o *Orchestrator) record(name string, res CommandResult, d time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	oc := o.outcomeLocked(name)
	oc.runs++
	oc.duration = d
	oc.output = strings.TrimSpace(res.Stdout)
	oc.err = err
}

// fail records an error for a task whose command never started.
func (o *Orchestrator) fail(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomeLocked(name).err = err
}

func (o *Orchestrator) outcomeLocked(name string) *outcome {
	oc, ok := o.outcomes[name]
	if !ok {
		oc = &outcome{}
		o.outcomes[name] = oc
	}
	return oc
}

func (o *Orchestrator) startProgress(ctx context.Context, phase progress.Phase) func() {
	interval := o.cfg.ProgressInterval
	if interval <= 0 {
		return func() {}
	}

	reporter := progress.NewReporter(interval)
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if reporter.ShouldReport() {
					logger.User.Info(reporter.Report(o.progressInfo(phase, reporter.Elapsed())))
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}

func (o *Orchestrator) progressInfo(phase progress.Phase, elapsed time.Duration) progress.ProgressInfo {
	info := progress.ProgressInfo{
		Phase:   phase,
		Elapsed: elapsed,
	}
	for _, t := range o.plan.Tasks {
		state, ok := o.registry.State(t.Name)
		if !ok {
			continue
		}
		info.TotalTasks++
		switch {
		case state.Completed:
			info.Completed++
		case state.Running:
			info.RunningTasks = append(info.RunningTasks, t.Name)
		case o.failed(t.Name):
			info.Failed++
		}
	}
	return info
}

func (o *Orchestrator) failed(name string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	oc, ok := o.outcomes[name]
	return ok && oc.err != nil
}
