package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvAssignment(t *testing.T) {
	tests := []struct {
		name       string
		assignment string
		wantKey    string
		wantValue  string
		wantErr    bool
	}{
		{
			name:       "simple key=value",
			assignment: "STAGE=prod",
			wantKey:    "STAGE",
			wantValue:  "prod",
		},
		{
			name:       "value with spaces",
			assignment: "MESSAGE=hello world",
			wantKey:    "MESSAGE",
			wantValue:  "hello world",
		},
		{
			name:       "value containing equals",
			assignment: "QUERY=a=b",
			wantKey:    "QUERY",
			wantValue:  "a=b",
		},
		{
			name:       "empty value",
			assignment: "EMPTY=",
			wantKey:    "EMPTY",
			wantValue:  "",
		},
		{
			name:       "key with surrounding spaces trimmed",
			assignment: "  STAGE=prod",
			wantKey:    "STAGE",
			wantValue:  "prod",
		},
		{
			name:       "missing equals",
			assignment: "STAGE",
			wantErr:    true,
		},
		{
			name:       "empty key",
			assignment: "=value",
			wantErr:    true,
		},
		{
			name:       "key with inner space",
			assignment: "MY KEY=value",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, value, err := ParseEnvAssignment(tt.assignment)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestParseEnvAssignments(t *testing.T) {
	env, err := ParseEnvAssignments([]string{"A=1", "B=2", "A=3"})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "3", "B": "2"}, env)
}

func TestParseEnvAssignments_Empty(t *testing.T) {
	env, err := ParseEnvAssignments(nil)

	assert.NoError(t, err)
	assert.Nil(t, env)
}

func TestParseEnvAssignments_Invalid(t *testing.T) {
	_, err := ParseEnvAssignments([]string{"A=1", "broken"})

	assert.Error(t, err)
}
