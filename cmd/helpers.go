package cmd

import (
	"github.com/maxkimambo/taskdeps/internal/orchestrator"
	"github.com/maxkimambo/taskdeps/internal/plan"
	"github.com/maxkimambo/taskdeps/internal/utils"
	"github.com/spf13/cobra"
)

func createRunConfig(cmd *cobra.Command) (*orchestrator.Config, error) {
	planFile, _ := cmd.Flags().GetString("file")
	shell, _ := cmd.Flags().GetString("shell")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	rerun, _ := cmd.Flags().GetStringSlice("rerun")
	workdir, _ := cmd.Flags().GetString("workdir")
	envFlags, _ := cmd.Flags().GetStringArray("env")
	failFast, _ := cmd.Flags().GetBool("fail-fast")
	autoApprove, _ := cmd.Flags().GetBool("yes")
	progressInterval, _ := cmd.Flags().GetDuration("progress-interval")

	env, err := utils.ParseEnvAssignments(envFlags)
	if err != nil {
		return nil, err
	}

	cfg := &orchestrator.Config{
		PlanFile:         planFile,
		Shell:            shell,
		Timeout:          timeout,
		Concurrency:      concurrency,
		DryRun:           dryRun,
		Rerun:            rerun,
		Workdir:          workdir,
		Env:              env,
		FailFast:         failFast,
		AutoApprove:      autoApprove,
		ProgressInterval: progressInterval,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadOrchestrator loads the plan named by --file and registers its tasks.
func loadOrchestrator(cfg *orchestrator.Config) (*orchestrator.Orchestrator, error) {
	p, err := plan.Load(cfg.PlanFile)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(cfg, p), nil
}

// planConfig builds a configuration for commands that only read the plan.
func planConfig(cmd *cobra.Command) *orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.PlanFile, _ = cmd.Flags().GetString("file")
	return cfg
}
