package cmd

import (
	"fmt"

	"github.com/maxkimambo/taskdeps/internal/logger"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a plan for errors and print its execution order",
	Long: `Loads a plan and checks that every task has a unique name and a command and
that the dependency graph has no cycles. Prerequisites that name no task are
reported as warnings: such tasks are valid but never run.

Example:
taskdeps validate -f build.yaml
`,
	RunE: validatePlan,
}

func validatePlan(cmd *cobra.Command, args []string) error {
	cfg := planConfig(cmd)
	o, err := loadOrchestrator(cfg)
	if err != nil {
		return err
	}

	if err := printOrder(cmd, o); err != nil {
		return err
	}
	logger.User.Success(fmt.Sprintf("Plan %s is valid", cfg.PlanFile))
	return nil
}
