package orchestrator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maxkimambo/taskdeps/internal/progress"
	"github.com/maxkimambo/taskdeps/internal/utils"
)

// Status is the final state of a task in a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusBlocked marks a task that never ran because a prerequisite
	// failed, was blocked itself, or is not defined in the plan.
	StatusBlocked Status = "blocked"
)

// TaskReport describes one task after a run.
type TaskReport struct {
	Name     string
	Status   Status
	Runs     int
	Duration time.Duration
	Output   string
	Err      error
	// Pending lists the prerequisites a blocked task was waiting for.
	Pending []string
}

// Report is the outcome of a plan run, with tasks in plan order.
type Report struct {
	RunID    string
	Plan     string
	Tasks    []TaskReport
	Duration time.Duration
}

func (o *Orchestrator) buildReport(elapsed time.Duration) *Report {
	report := &Report{
		RunID:    o.runID,
		Plan:     o.plan.Name,
		Duration: elapsed,
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, name := range o.plan.Names() {
		tr := TaskReport{Name: name}
		if oc, ok := o.outcomes[name]; ok {
			tr.Runs = oc.runs
			tr.Duration = oc.duration
			tr.Output = oc.output
			tr.Err = oc.err
		}

		state, _ := o.registry.State(name)
		switch {
		case state.Completed:
			tr.Status = StatusCompleted
		case tr.Err != nil:
			tr.Status = StatusFailed
		default:
			tr.Status = StatusBlocked
			tr.Pending = o.registry.Pending(name)
		}
		report.Tasks = append(report.Tasks, tr)
	}
	return report
}

// Count returns the number of tasks with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// Failed returns the tasks whose command failed.
func (r *Report) Failed() []TaskReport {
	return r.filter(StatusFailed)
}

// Blocked returns the tasks that never became ready.
func (r *Report) Blocked() []TaskReport {
	return r.filter(StatusBlocked)
}

func (r *Report) filter(status Status) []TaskReport {
	var out []TaskReport
	for _, t := range r.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Succeeded reports whether every task completed.
func (r *Report) Succeeded() bool {
	return r.Count(StatusCompleted) == len(r.Tasks)
}

// Err joins the errors of every failed task.
func (r *Report) Err() error {
	var errs []error
	for _, t := range r.Failed() {
		errs = append(errs, t.Err)
	}
	return errors.Join(errs...)
}

// Table renders the per task results.
func (r *Report) Table() string {
	table := utils.NewTableFormatter("TASK", "STATUS", "RUNS", "DURATION", "DETAIL")
	for _, t := range r.Tasks {
		duration := "-"
		if t.Runs > 0 {
			duration = progress.FormatDuration(t.Duration)
		}
		table.AddRow(t.Name, string(t.Status), strconv.Itoa(t.Runs), duration, t.detail())
	}
	return table.String()
}

func (t TaskReport) detail() string {
	switch t.Status {
	case StatusFailed:
		return firstLine(t.Err.Error())
	case StatusBlocked:
		if len(t.Pending) > 0 {
			return "waiting for " + strings.Join(t.Pending, ", ")
		}
		return ""
	default:
		return firstLine(t.Output)
	}
}

// Summary renders a message box with the run totals.
func (r *Report) Summary() string {
	messageType := utils.SuccessMessage
	title := fmt.Sprintf("Plan '%s' completed", r.Plan)
	switch {
	case r.Count(StatusFailed) > 0:
		messageType = utils.ErrorMessage
		title = fmt.Sprintf("Plan '%s' failed", r.Plan)
	case r.Count(StatusBlocked) > 0:
		messageType = utils.WarningMessage
		title = fmt.Sprintf("Plan '%s' finished with blocked tasks", r.Plan)
	}

	box := utils.NewBox(messageType, title).
		AddKeyValue("Run", r.RunID).
		AddKeyValue("Completed", r.Count(StatusCompleted)).
		AddKeyValue("Failed", r.Count(StatusFailed)).
		AddKeyValue("Blocked", r.Count(StatusBlocked)).
		AddKeyValue("Duration", progress.FormatDuration(r.Duration))
	for _, t := range r.Failed() {
		box.AddBullet(fmt.Sprintf("%s: %s", t.Name, firstLine(t.Err.Error())))
	}
	return box.Render()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
