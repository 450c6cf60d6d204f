package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Workspace is a temporary directory holding a plan file. Commands of the
// plan run inside it.
type Workspace struct {
	Dir  string
	Plan string
}

// SetupTestWorkspace writes plan to plan.yaml in a fresh directory that is
// removed when the test ends, unless PRESERVE_TEST_WORKSPACE is "true".
func SetupTestWorkspace(t *testing.T, plan string) *Workspace {
	t.Helper()

	dir, err := os.MkdirTemp("", "taskdeps-it-")
	require.NoError(t, err, "failed to create test workspace directory")

	path := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(plan), 0o644), "failed to write plan")

	t.Cleanup(func() {
		if os.Getenv("PRESERVE_TEST_WORKSPACE") == "true" {
			t.Logf("Workspace preserved in: %s", dir)
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Logf("Warning: failed to clean up workspace directory %s: %v", dir, err)
		}
	})

	return &Workspace{Dir: dir, Plan: path}
}

// Path returns the absolute path of a file inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Read returns the content of a file inside the workspace.
func (w *Workspace) Read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(w.Path(name))
	require.NoError(t, err)
	return string(data)
}

// Run executes the binary with args against the workspace plan and returns
// its combined output.
func (w *Workspace) Run(t *testing.T, binary string, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	args = append(args, "--file", w.Plan)
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	t.Logf("taskdeps %v output:\n%s", args, output)
	return string(output), err
}
