package taskmanager

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogObserver_Diagnostics(t *testing.T) {
	log, hook := test.NewNullLogger()
	obs := NewLogObserver(log)

	tests := []struct {
		name       string
		emit       func()
		wantLevel  logrus.Level
		wantMsg    string
		wantFields logrus.Fields
	}{
		{
			name:       "missing task",
			emit:       func() { obs.TaskMissing("ghost") },
			wantLevel:  logrus.WarnLevel,
			wantMsg:    "Task execution failed: 'ghost' does not exist",
			wantFields: logrus.Fields{"task": "ghost"},
		},
		{
			name:       "unmet dependencies",
			emit:       func() { obs.DependenciesUnmet("parse", []string{"fetch", "config"}) },
			wantLevel:  logrus.WarnLevel,
			wantMsg:    "Task execution failed: 'parse' dependencies are not completed",
			wantFields: logrus.Fields{"task": "parse", "pending": "fetch,config"},
		},
		{
			name:       "unknown dependency",
			emit:       func() { obs.UnknownDependency("parse", "config") },
			wantLevel:  logrus.WarnLevel,
			wantMsg:    "Task 'parse' depends on unregistered task 'config'",
			wantFields: logrus.Fields{"task": "parse", "dependency": "config"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()

			tt.emit()

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantLevel, entry.Level)
			assert.Equal(t, tt.wantMsg, entry.Message)
			for k, v := range tt.wantFields {
				assert.Equal(t, v, entry.Data[k], k)
			}
		})
	}
}

func TestLogObserver_CascadeFailed(t *testing.T) {
	log, hook := test.NewNullLogger()
	obs := NewLogObserver(log)
	cause := errors.New("exit status 1")

	obs.CascadeFailed("parse", cause)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "parse", entry.Data["task"])
	assert.Equal(t, cause, entry.Data[logrus.ErrorKey])
}

func TestLogObserver_DefaultsToOpLogger(t *testing.T) {
	obs := NewLogObserver(nil)
	require.NotNil(t, obs.log)
	assert.NotPanics(t, func() { obs.TaskMissing("ghost") })
}

func TestRegistry_DiagnosticsReachLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := NewRegistry(NewLogObserver(log))
	r.Add("parse", Options{Depends: []string{"fetch"}})

	_, _ = r.Execute(context.Background(), "missing")
	_, _ = r.Execute(context.Background(), "parse")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Message, "does not exist")
	assert.Contains(t, entries[1].Message, "dependencies are not completed")
}
