package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory represents the category of error
type ErrorCategory string

const (
	// ErrorCategoryHandler represents failures returned by a task handler
	ErrorCategoryHandler ErrorCategory = "HANDLER"
	// ErrorCategoryReset represents failures returned by a task reset hook
	ErrorCategoryReset ErrorCategory = "RESET"
	// ErrorCategoryGraph represents structural problems in the dependency graph
	ErrorCategoryGraph ErrorCategory = "GRAPH"
	// ErrorCategoryPlan represents invalid or unreadable plan files
	ErrorCategoryPlan ErrorCategory = "PLAN"
	// ErrorCategoryCommand represents shell command failures
	ErrorCategoryCommand ErrorCategory = "COMMAND"
	// ErrorCategoryConfiguration represents configuration errors
	ErrorCategoryConfiguration ErrorCategory = "CONFIGURATION"
)

// ErrCyclicDependency is matched with errors.Is when a graph contains a cycle.
var ErrCyclicDependency = errors.New("cyclic dependency")

// TaskError represents a structured error with context and troubleshooting information
type TaskError struct {
	Category        ErrorCategory
	Code            string
	Message         string
	Operation       string
	Context         map[string]interface{}
	Troubleshooting []string
	OriginalError   error
}

// Error implements the error interface
func (e *TaskError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s-%s: %s", e.Category, e.Code, e.Message))

	if e.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nOperation: %s", e.Operation))
	}

	if len(e.Context) > 0 {
		sb.WriteString("\nContext:")
		for _, key := range e.contextKeys() {
			sb.WriteString(fmt.Sprintf("\n  %s: %v", key, e.Context[key]))
		}
	}

	if len(e.Troubleshooting) > 0 {
		sb.WriteString("\nTroubleshooting:")
		for i, step := range e.Troubleshooting {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nUnderlying error: %v", e.OriginalError))
	}

	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *TaskError) Unwrap() error {
	return e.OriginalError
}

func (e *TaskError) contextKeys() []string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewTaskError creates a new task error with the specified parameters
func NewTaskError(category ErrorCategory, code, message, operation string) *TaskError {
	return &TaskError{
		Category:        category,
		Code:            code,
		Message:         message,
		Operation:       operation,
		Context:         make(map[string]interface{}),
		Troubleshooting: []string{},
	}
}

// WithContext adds context information to the error
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}

// WithTroubleshooting adds troubleshooting steps to the error
func (e *TaskError) WithTroubleshooting(steps ...string) *TaskError {
	e.Troubleshooting = append(e.Troubleshooting, steps...)
	return e
}

// WithOriginalError adds the original error to the task error
func (e *TaskError) WithOriginalError(err error) *TaskError {
	e.OriginalError = err
	return e
}

// AsTaskError returns the first *TaskError in err's chain.
func AsTaskError(err error) (*TaskError, bool) {
	var taskErr *TaskError
	if errors.As(err, &taskErr) {
		return taskErr, true
	}
	return nil, false
}
