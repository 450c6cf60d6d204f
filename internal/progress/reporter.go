package progress

import (
	"fmt"
	"strings"
	"time"
)

// Phase represents a stage of a plan run
type Phase string

const (
	PhaseExecute Phase = "Execute"
	PhaseRerun   Phase = "Rerun"
)

// ProgressInfo is a snapshot of task counts during a run
type ProgressInfo struct {
	Phase        Phase
	TotalTasks   int
	Completed    int
	Failed       int
	RunningTasks []string
	Elapsed      time.Duration
}

// Pending returns the tasks that are neither finished nor running
func (p ProgressInfo) Pending() int {
	return max(p.TotalTasks-p.Completed-p.Failed-len(p.RunningTasks), 0)
}

// Reporter rate limits progress reports
type Reporter struct {
	startTime      time.Time
	lastReportTime time.Time
	reportInterval time.Duration
	now            func() time.Time
}

// NewReporter creates a reporter that reports at most once per interval
func NewReporter(interval time.Duration) *Reporter {
	return newReporter(interval, time.Now)
}

func newReporter(interval time.Duration, now func() time.Time) *Reporter {
	start := now()
	return &Reporter{
		startTime:      start,
		lastReportTime: start,
		reportInterval: interval,
		now:            now,
	}
}

// Elapsed returns the time since the reporter was created
func (r *Reporter) Elapsed() time.Duration {
	return r.now().Sub(r.startTime)
}

// ShouldReport returns true if it's time to report progress
func (r *Reporter) ShouldReport() bool {
	return r.now().Sub(r.lastReportTime) >= r.reportInterval
}

// Report generates a one or two line progress report
func (r *Reporter) Report(info ProgressInfo) string {
	r.lastReportTime = r.now()

	percentage := 0.0
	if info.TotalTasks > 0 {
		percentage = float64(info.Completed) / float64(info.TotalTasks) * 100
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Progress: %d/%d tasks completed (%.1f%%)",
		info.Completed, info.TotalTasks, percentage))
	if info.Phase != "" {
		sb.WriteString(fmt.Sprintf(" | Phase: %s", info.Phase))
	}
	if info.Failed > 0 {
		sb.WriteString(fmt.Sprintf(" | %d failed", info.Failed))
	}
	if pending := info.Pending(); pending > 0 {
		sb.WriteString(fmt.Sprintf(" | %d pending", pending))
	}
	sb.WriteString(fmt.Sprintf(" | Elapsed: %s", FormatDuration(info.Elapsed)))

	if eta := CalculateETA(info.Completed, info.TotalTasks, info.Elapsed); eta > 0 {
		sb.WriteString(fmt.Sprintf(" | ETA: %s", FormatDuration(eta)))
	}
	if len(info.RunningTasks) > 0 {
		sb.WriteString(fmt.Sprintf("\n   Running: %s", strings.Join(info.RunningTasks, ", ")))
	}
	return sb.String()
}

// CalculateETA estimates time remaining based on current progress
func CalculateETA(completed, total int, elapsed time.Duration) time.Duration {
	if completed <= 0 || total <= 0 || completed >= total {
		return 0
	}

	averageTimePerTask := elapsed / time.Duration(completed)
	remainingTasks := total - completed
	return averageTimePerTask * time.Duration(remainingTasks)
}

// FormatDuration formats a duration in a user-friendly way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
