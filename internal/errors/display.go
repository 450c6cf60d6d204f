package errors

import (
	"fmt"
	"strings"
)

// DisplayError formats an error for user-friendly display
func DisplayError(err error) string {
	if taskErr, ok := AsTaskError(err); ok {
		return taskErr.Error()
	}

	return fmt.Sprintf("Error: %v", err)
}

// DisplayErrorSummary provides a brief summary of the error for logs
func DisplayErrorSummary(err error) string {
	if taskErr, ok := AsTaskError(err); ok {
		return fmt.Sprintf("%s-%s: %s", taskErr.Category, taskErr.Code, taskErr.Message)
	}

	errStr := err.Error()
	if len(errStr) > 100 {
		return errStr[:97] + "..."
	}
	return errStr
}

// FormatForCLI formats an error for command-line display with proper spacing
func FormatForCLI(err error) string {
	taskErr, ok := AsTaskError(err)
	if !ok {
		return fmt.Sprintf("\nError: %v\n", err)
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\n%s Error [%s-%s]\n",
		string(taskErr.Category), taskErr.Category, taskErr.Code))
	sb.WriteString(fmt.Sprintf("  %s\n", taskErr.Message))

	if taskErr.Operation != "" {
		sb.WriteString(fmt.Sprintf("\nFailed Operation: %s\n", taskErr.Operation))
	}

	if len(taskErr.Context) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, key := range taskErr.contextKeys() {
			sb.WriteString(fmt.Sprintf("  %s: %v\n", key, taskErr.Context[key]))
		}
	}

	if len(taskErr.Troubleshooting) > 0 {
		sb.WriteString("\nHow to resolve:\n")
		for i, step := range taskErr.Troubleshooting {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
		}
	}

	if taskErr.OriginalError != nil {
		sb.WriteString(fmt.Sprintf("\nTechnical details: %v\n", taskErr.OriginalError))
	}

	return sb.String()
}

// IsUserError determines if an error is due to user input/configuration
func IsUserError(err error) bool {
	if taskErr, ok := AsTaskError(err); ok {
		return taskErr.Category == ErrorCategoryPlan ||
			taskErr.Category == ErrorCategoryConfiguration ||
			taskErr.Category == ErrorCategoryGraph
	}
	return false
}

// GetErrorCode extracts the error code for reporting
func GetErrorCode(err error) string {
	if taskErr, ok := AsTaskError(err); ok {
		return fmt.Sprintf("%s-%s", taskErr.Category, taskErr.Code)
	}
	return "UNKNOWN"
}
