package orchestrator

import (
	"fmt"
	"time"

	taskerrors "github.com/maxkimambo/taskdeps/internal/errors"
)

const (
	DefaultShell            = "sh"
	DefaultConcurrency      = 4
	DefaultProgressInterval = 10 * time.Second
)

// Config holds the settings of a plan run.
type Config struct {
	PlanFile string
	// Shell runs every command as `Shell -c <command>`.
	Shell string
	// Timeout applies to tasks without their own timeout. Zero disables it.
	Timeout time.Duration
	// Concurrency bounds the number of commands running at once.
	Concurrency int
	DryRun      bool
	// Rerun lists tasks to reset and execute again after the first pass.
	Rerun []string
	// Workdir overrides the plan's working directory.
	Workdir string
	// Env is applied on top of the plan's env.
	Env         map[string]string
	FailFast    bool
	AutoApprove bool
	// ProgressInterval is how often progress is reported. Zero disables it.
	ProgressInterval time.Duration
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Shell:            DefaultShell,
		Concurrency:      DefaultConcurrency,
		ProgressInterval: DefaultProgressInterval,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Shell == "" {
		return taskerrors.NewConfigurationError("--shell cannot be empty")
	}
	if c.Concurrency < 1 {
		return taskerrors.NewConfigurationError(
			fmt.Sprintf("--concurrency must be at least 1, got %d", c.Concurrency))
	}
	if c.Timeout < 0 {
		return taskerrors.NewConfigurationError(
			fmt.Sprintf("--timeout cannot be negative, got %s", c.Timeout))
	}
	if c.ProgressInterval < 0 {
		return taskerrors.NewConfigurationError(
			fmt.Sprintf("--progress-interval cannot be negative, got %s", c.ProgressInterval))
	}
	return nil
}
