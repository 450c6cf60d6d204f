package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptForConfirmation asks the user to confirm action on the listed items.
// If autoApprove is true, it returns true without prompting. Only "y" and
// "yes" confirm; end of input declines.
func PromptForConfirmation(in io.Reader, out io.Writer, autoApprove bool, action string, items []string) (bool, error) {
	if autoApprove {
		return true, nil
	}

	box := NewBox(QuestionMessage, fmt.Sprintf("About to %s %d task(s):", action, len(items)))
	for i, item := range items {
		box.AddLine(fmt.Sprintf("%d. %s", i+1, item))
	}
	fmt.Fprintln(out, box.Render())
	fmt.Fprint(out, "Are you sure you want to continue? (yes/no): ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read user confirmation: %w", err)
	}

	input = strings.ToLower(strings.TrimSpace(input))
	return input == "yes" || input == "y", nil
}
