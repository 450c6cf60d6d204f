package errors

import (
	"fmt"
	"strings"
)

// Common error codes
const (
	CodeHandlerFailed = "001"

	CodeResetFailed = "001"

	CodeGraphCycle = "001"

	CodePlanRead    = "001"
	CodePlanParse   = "002"
	CodePlanInvalid = "003"

	CodeCommandFailed  = "001"
	CodeCommandTimeout = "002"

	CodeConfigInvalid = "001"
)

// NewHandlerError wraps a failure returned by the handler of task name.
func NewHandlerError(name string, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryHandler, CodeHandlerFailed,
		fmt.Sprintf("Task '%s' failed", name),
		"Task execution").
		WithContext("task", name).
		WithOriginalError(originalErr)
}

// NewResetError wraps a failure returned by the reset hook of task name.
func NewResetError(name string, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryReset, CodeResetFailed,
		fmt.Sprintf("Reset of task '%s' failed", name),
		"Task reset").
		WithContext("task", name).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"The task keeps its completed state and its dependents were not reset",
			"Fix the reset command and reset the task again",
		)
}

// NewCycleError reports the tasks that could not be ordered because of a cycle.
func NewCycleError(unordered []string) *TaskError {
	return NewTaskError(ErrorCategoryGraph, CodeGraphCycle,
		"Task graph contains a dependency cycle",
		"Dependency ordering").
		WithContext("tasks", strings.Join(unordered, ", ")).
		WithOriginalError(ErrCyclicDependency).
		WithTroubleshooting(
			"Check the depends lists of the tasks above",
			"Run 'taskdeps graph' to print the dependency index",
		)
}

// NewPlanError creates an error for unreadable or invalid plan files
func NewPlanError(code, path, message string, originalErr error) *TaskError {
	err := NewTaskError(ErrorCategoryPlan, code, message, "Plan loading").
		WithOriginalError(originalErr)
	if path != "" {
		err = err.WithContext("file", path)
	}
	switch code {
	case CodePlanRead:
		err = err.WithTroubleshooting(
			"Verify the plan path passed with --file exists and is readable",
		)
	case CodePlanParse:
		err = err.WithTroubleshooting(
			"Check the YAML syntax of the plan",
			"Only name, workdir, env and tasks are allowed at the top level",
		)
	}
	return err
}

// NewCommandError creates an error for a task command that exited unsuccessfully
func NewCommandError(name, command string, exitCode int, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryCommand, CodeCommandFailed,
		fmt.Sprintf("Command for task '%s' exited with code %d", name, exitCode),
		"Command execution").
		WithContext("task", name).
		WithContext("command", command).
		WithContext("exit_code", exitCode).
		WithOriginalError(originalErr)
}

// NewCommandTimeoutError creates an error for a task command that ran out of time
func NewCommandTimeoutError(name, command string, originalErr error) *TaskError {
	return NewTaskError(ErrorCategoryCommand, CodeCommandTimeout,
		fmt.Sprintf("Command for task '%s' timed out", name),
		"Command execution").
		WithContext("task", name).
		WithContext("command", command).
		WithOriginalError(originalErr).
		WithTroubleshooting(
			"Increase --timeout or split the task",
		)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *TaskError {
	return NewTaskError(ErrorCategoryConfiguration, CodeConfigInvalid, message, "Configuration")
}
