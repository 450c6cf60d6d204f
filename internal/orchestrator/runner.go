package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
)

const waitDelay = 500 * time.Millisecond

// Command is a shell command run on behalf of a task.
type Command struct {
	Task   string
	Script string
	Dir    string
	Env    []string
}

// CommandResult holds the captured output of a command.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs task commands.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (CommandResult, error)
}

// ShellRunner runs commands through `Shell -c`.
type ShellRunner struct {
	Shell string
}

// NewShellRunner creates a runner for the given shell, or DefaultShell when empty.
func NewShellRunner(shell string) *ShellRunner {
	if shell == "" {
		shell = DefaultShell
	}
	return &ShellRunner{Shell: shell}
}

// Run executes the command and waits for it. A non-zero exit status is
// returned as a COMMAND error carrying the exit code; a context deadline as
// a COMMAND timeout error.
func (r *ShellRunner) Run(ctx context.Context, c Command) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, r.Shell, "-c", c.Script)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	// Background children of the shell may keep the output pipes open.
	cmd.WaitDelay = waitDelay

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	runErr := cmd.Run()

	result := CommandResult{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if runErr == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, taskerrors.NewCommandTimeoutError(c.Task, c.Script, ctxErr)
		}
		return result, fmt.Errorf("command for task '%s' canceled: %w", c.Task, context.Cause(ctx))
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, taskerrors.NewCommandError(c.Task, c.Script, result.ExitCode, runErr).
			WithContext("stderr", lastLine(result.Stderr))
	}

	// The shell itself could not be started.
	result.ExitCode = -1
	return result, fmt.Errorf("task %s: run command: %w", c.Task, runErr)
}

func lastLine(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
