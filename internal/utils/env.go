package utils

import (
	"fmt"
	"strings"
)

// ParseEnvAssignment splits a KEY=value pair given on the command line.
// The value may be empty or contain further '=' characters.
//
// Input examples:
//   - "STAGE=prod" → ("STAGE", "prod")
//   - "QUERY=a=b" → ("QUERY", "a=b")
//   - "EMPTY=" → ("EMPTY", "")
func ParseEnvAssignment(assignment string) (string, string, error) {
	key, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid env assignment %q: expected KEY=value", assignment)
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("invalid env assignment %q: key cannot be empty", assignment)
	}
	if strings.ContainsAny(key, " \t") {
		return "", "", fmt.Errorf("invalid env assignment %q: key cannot contain whitespace", assignment)
	}

	return key, value, nil
}

// ParseEnvAssignments parses a list of KEY=value pairs into a map. Later
// assignments of the same key win.
func ParseEnvAssignments(assignments []string) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(assignments))
	for _, a := range assignments {
		key, value, err := ParseEnvAssignment(a)
		if err != nil {
			return nil, err
		}
		env[key] = value
	}
	return env, nil
}
