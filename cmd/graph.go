package cmd

import (
	"fmt"
	"strings"

	"github.com/maxkimambo/taskdeps/internal/utils"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print which tasks wait on each prerequisite",
	Long: `Prints the dependency index of a plan: for every prerequisite, the tasks that
start when it finishes. Prerequisites that name no task are marked.

Example:
taskdeps graph -f build.yaml
`,
	RunE: printGraph,
}

func printGraph(cmd *cobra.Command, args []string) error {
	o, err := loadOrchestrator(planConfig(cmd))
	if err != nil {
		return err
	}
	registry := o.Registry()

	table := utils.NewTableFormatter("PREREQUISITE", "DEPENDENTS")
	for _, prereq := range registry.Prerequisites() {
		name := prereq
		if !registry.Has(prereq) {
			name += " (undefined)"
		}
		table.AddRow(name, strings.Join(registry.Dependents(prereq), ", "))
	}

	if table.Len() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No task depends on another task")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), table.String())
	return nil
}
