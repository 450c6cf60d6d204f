package integration

import (
	"strings"
	"testing"

	"github.com/maxkimambo/taskdeps/integration_tests/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestErrorHandling(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tests := []struct {
		name          string
		plan          string
		args          []string
		expectedError string
	}{
		{
			name:          "unknown_field",
			plan:          "tasks:\n  - name: a\n    run: \"true\"\n    retries: 2\n",
			args:          []string{"validate"},
			expectedError: "PLAN-002",
		},
		{
			name:          "missing_run",
			plan:          "tasks:\n  - name: a\n",
			args:          []string{"validate"},
			expectedError: "has no run command",
		},
		{
			name: "cycle",
			plan: `
tasks:
  - name: a
    depends: [b]
    run: "true"
  - name: b
    depends: [a]
    run: "true"
`,
			args:          []string{"run"},
			expectedError: "dependency cycle",
		},
		{
			name:          "unknown_rerun_task",
			plan:          "tasks:\n  - name: a\n    run: \"true\"\n",
			args:          []string{"run", "--rerun", "ghost", "--yes"},
			expectedError: "unknown task 'ghost'",
		},
		{
			name:          "invalid_env_flag",
			plan:          "tasks:\n  - name: a\n    run: \"true\"\n",
			args:          []string{"run", "--env", "NOEQUALS"},
			expectedError: "expected KEY=value",
		},
		{
			name:          "failing_command",
			plan:          "tasks:\n  - name: a\n    run: exit 7\n",
			args:          []string{"run"},
			expectedError: "exited with code 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := testutil.SetupTestWorkspace(t, tt.plan)

			output, err := ws.Run(t, binary, tt.args...)

			require.Error(t, err, "Command should have failed")
			require.True(t,
				strings.Contains(strings.ToLower(output), strings.ToLower(tt.expectedError)),
				"Expected error containing '%s' but got: %s", tt.expectedError, output)
		})
	}
}
