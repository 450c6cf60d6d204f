package cmd

import (
	"fmt"

	"github.com/maxkimambo/taskdeps/internal/logger"
	"github.com/maxkimambo/taskdeps/internal/orchestrator"
	"github.com/maxkimambo/taskdeps/internal/utils"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the tasks of a plan",
	Long: `Runs every task of a plan. Tasks without prerequisites start immediately and
concurrently; every other task starts once all of its prerequisites have
finished successfully. A failed task blocks everything downstream of it.

With --rerun the named tasks are reset after the first pass, running their
reset commands and those of every task downstream, and then executed again.

Example:
taskdeps run -f build.yaml
taskdeps run -f build.yaml --concurrency 8 --timeout 10m
taskdeps run -f build.yaml --rerun fetch --yes
taskdeps run -f build.yaml --env STAGE=prod --dry-run
`,
	RunE: runPlan,
}

func init() {
	runCmd.Flags().String("shell", orchestrator.DefaultShell, "Shell used to run task commands")
	runCmd.Flags().Duration("timeout", 0, "Timeout for tasks without their own timeout (0 disables)")
	runCmd.Flags().Int("concurrency", orchestrator.DefaultConcurrency, "Maximum number of commands running at once")
	runCmd.Flags().Bool("dry-run", false, "Print the execution order without running anything")
	runCmd.Flags().StringSlice("rerun", nil, "Tasks to reset and run again after the first pass")
	runCmd.Flags().String("workdir", "", "Working directory for commands (overrides the plan)")
	runCmd.Flags().StringArray("env", nil, "Environment variable KEY=value for commands (repeatable)")
	runCmd.Flags().Bool("fail-fast", false, "Cancel running tasks after the first failure")
	runCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt for --rerun")
	runCmd.Flags().Duration("progress-interval", orchestrator.DefaultProgressInterval, "How often to report progress (0 disables)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := createRunConfig(cmd)
	if err != nil {
		return err
	}

	o, err := loadOrchestrator(cfg)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		return printOrder(cmd, o)
	}

	if len(cfg.Rerun) > 0 {
		ok, err := utils.PromptForConfirmation(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.AutoApprove,
			"reset and re-run", cfg.Rerun)
		if err != nil {
			return err
		}
		if !ok {
			logger.User.Info("Run cancelled")
			return nil
		}
	}

	logger.User.Infof("Running plan %s (%s)", cfg.PlanFile, o.RunID())
	report, err := o.Run(cmd.Context())
	if report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.Table())
		fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
	}
	if err != nil {
		return err
	}

	if !report.Succeeded() {
		return fmt.Errorf("%d task(s) failed and %d task(s) were blocked",
			report.Count(orchestrator.StatusFailed), report.Count(orchestrator.StatusBlocked))
	}
	return nil
}

func printOrder(cmd *cobra.Command, o *orchestrator.Orchestrator) error {
	if err := o.Validate(); err != nil {
		return err
	}
	order, err := o.Order()
	if err != nil {
		return err
	}

	rb := utils.NewReportBuilder().Header("Execution order")
	for i, name := range order {
		rb.AddNumbered(i+1, name)
		if pending := o.Registry().Pending(name); len(pending) > 0 {
			rb.AddIndented(fmt.Sprintf("waits for %v", pending), 1)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), rb.Build())
	return nil
}
