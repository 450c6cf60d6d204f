package testutil

import (
	"os"
	"path/filepath"
)

// GetBinaryPath returns the path to a prebuilt taskdeps binary, or "" if
// none is found. It checks in order:
// 1. TASKDEPS_BINARY environment variable
// 2. Parent directory (../taskdeps) - where go build puts it
// 3. bin directory (../bin/taskdeps)
func GetBinaryPath() string {
	if path := os.Getenv("TASKDEPS_BINARY"); path != "" {
		return path
	}

	for _, candidate := range []string{
		filepath.Join("..", "taskdeps"),
		filepath.Join("..", "bin", "taskdeps"),
	} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
