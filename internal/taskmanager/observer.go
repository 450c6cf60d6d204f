package taskmanager

import (
	"strings"

	"github.com/maxkimambo/taskdeps/internal/logger"
	"github.com/sirupsen/logrus"
)

// Observer receives the recoverable diagnostics of a Registry.
// Implementations must be safe for concurrent use.
type Observer interface {
	// TaskMissing is called when Execute is asked to run an unregistered task.
	TaskMissing(name string)

	// DependenciesUnmet is called when Execute refuses a task whose
	// prerequisites are unregistered or not completed.
	DependenciesUnmet(name string, pending []string)

	// UnknownDependency is called by Validate for each prerequisite that
	// names no registered task.
	UnknownDependency(name, dependency string)

	// CascadeFailed is called when a task started by Finish fails.
	CascadeFailed(name string, err error)
}

// LogObserver writes diagnostics as structured warnings.
type LogObserver struct {
	log logrus.FieldLogger
}

// NewLogObserver creates an observer logging to log, or to the operational
// logger when log is nil.
func NewLogObserver(log logrus.FieldLogger) *LogObserver {
	if log == nil {
		log = logger.Op.Entry()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) TaskMissing(name string) {
	o.log.WithField("task", name).
		Warnf("Task execution failed: '%s' does not exist", name)
}

func (o *LogObserver) DependenciesUnmet(name string, pending []string) {
	o.log.WithFields(logrus.Fields{
		"task":    name,
		"pending": strings.Join(pending, ","),
	}).Warnf("Task execution failed: '%s' dependencies are not completed", name)
}

func (o *LogObserver) UnknownDependency(name, dependency string) {
	o.log.WithFields(logrus.Fields{
		"task":       name,
		"dependency": dependency,
	}).Warnf("Task '%s' depends on unregistered task '%s'", name, dependency)
}

func (o *LogObserver) CascadeFailed(name string, err error) {
	o.log.WithField("task", name).WithError(err).
		Error("Task started by cascade failed")
}
