package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerInitialization(t *testing.T) {
	assert.NotNil(t, User, "User logger should not be nil after init")
	assert.NotNil(t, Op, "Op logger should not be nil after init")
}

func TestUnifiedLoggerInitialization(t *testing.T) {
	ul := GetLogger()
	require.NotNil(t, ul)
	assert.Same(t, ul, GetLogger(), "GetLogger should return the same instance")
}

func TestLoggerSetup(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		jsonLogs  bool
		quiet     bool
		wantLevel logrus.Level
	}{
		{"Default", false, false, false, logrus.InfoLevel},
		{"Verbose", true, false, false, logrus.DebugLevel},
		{"Quiet", false, false, true, logrus.ErrorLevel},
		{"JSON", false, true, false, logrus.InfoLevel},
		{"Verbose JSON", true, true, false, logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_MODE", "")
			t.Setenv("LOG_FORMAT", "")

			Setup(tt.verbose, tt.jsonLogs, tt.quiet)

			assert.NotNil(t, User)
			assert.NotNil(t, Op)
			assert.Equal(t, tt.wantLevel, GetLogger().GetInternalLogger().GetLevel())
		})
	}
}

func TestLoggerSetup_EnvOverrides(t *testing.T) {
	t.Setenv("LOG_MODE", "quiet")
	t.Setenv("LOG_FORMAT", "json")

	Setup(true, false, false)

	internal := GetLogger().GetInternalLogger()
	assert.Equal(t, logrus.ErrorLevel, internal.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, internal.Formatter)

	t.Setenv("LOG_MODE", "")
	t.Setenv("LOG_FORMAT", "")
	Setup(false, false, false)
}

func TestUserLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&buf)
	testLogger.SetLevel(logrus.InfoLevel)

	userLogger := &UserLogger{logger: testLogger}

	userLogger.Info("test message")
	assert.Contains(t, buf.String(), "test message")

	buf.Reset()
	userLogger.Starting("fetch")
	assert.Contains(t, buf.String(), "Starting task: fetch")
	assert.Contains(t, buf.String(), MarkerStarting)

	buf.Reset()
	userLogger.Failure("parse", errors.New("exit status 1"))
	assert.Contains(t, buf.String(), "Task failed: parse - exit status 1")
}

func TestOpLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	testLogger := logrus.New()
	testLogger.SetOutput(&buf)
	testLogger.SetLevel(logrus.InfoLevel)

	opLogger := &OpLogger{logger: testLogger}

	opLogger.Info("operational message")
	assert.Contains(t, buf.String(), "operational message")

	buf.Reset()
	opLogger.WithFields(map[string]interface{}{
		"task":    "parse",
		"pending": "fetch",
	}).Info("dependencies pending")
	output := buf.String()
	assert.Contains(t, output, "dependencies pending")
	assert.Contains(t, output, "log_type=op")

	buf.Reset()
	opLogger.Debug("hidden")
	assert.Empty(t, buf.String(), "debug should be filtered at info level")
}

func TestCLIFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "dependencies are not completed",
		Data: logrus.Fields{
			"log_type": "op",
			"task":     "parse",
			"pending":  "fetch",
		},
	}

	tests := []struct {
		name      string
		formatter *CLIFormatter
		want      string
	}{
		{
			name:      "message only",
			formatter: &CLIFormatter{DisableTimestamp: true, DisableLevel: true},
			want:      "dependencies are not completed\n",
		},
		{
			name:      "level and sorted fields",
			formatter: &CLIFormatter{DisableTimestamp: true, DisableColors: true},
			want:      "WARNING: dependencies are not completed pending=fetch task=parse\n",
		},
		{
			name:      "timestamp",
			formatter: &CLIFormatter{DisableColors: true},
			want:      "10:00:00 WARNING: dependencies are not completed pending=fetch task=parse\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.formatter.Format(entry)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestOutputRouterHook(t *testing.T) {
	var userBuf, opBuf bytes.Buffer

	hook := NewOutputRouterHook()
	hook.UserWriter = &userBuf
	hook.OpWriter = &opBuf
	hook.OpFormatter = &CLIFormatter{DisableTimestamp: true, DisableColors: true}

	testLogger := logrus.New()
	testLogger.SetOutput(&bytes.Buffer{})
	testLogger.AddHook(hook)

	(&UserLogger{logger: testLogger}).Success("fetch")
	(&OpLogger{logger: testLogger}).Warn("task does not exist")

	assert.Equal(t, MarkerDone+" Task completed: fetch\n", userBuf.String())
	assert.True(t, strings.HasPrefix(opBuf.String(), "WARNING"), opBuf.String())
	assert.NotContains(t, opBuf.String(), "Task completed")
}

func TestLogTypeRouting(t *testing.T) {
	captureHook := &testHook{entries: make([]*logrus.Entry, 0)}

	ul := GetLogger()
	ul.GetInternalLogger().AddHook(captureHook)

	User.Info("user message")
	require.NotEmpty(t, captureHook.entries)

	lastEntry := captureHook.entries[len(captureHook.entries)-1]
	assert.Equal(t, string(UserLog), lastEntry.Data["log_type"])

	Op.Info("op message")
	require.Len(t, captureHook.entries, 2)

	lastEntry = captureHook.entries[len(captureHook.entries)-1]
	assert.Equal(t, string(OpLog), lastEntry.Data["log_type"])
}

// testHook is a simple hook for capturing log entries in tests
type testHook struct {
	entries []*logrus.Entry
}

func (h *testHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *testHook) Fire(entry *logrus.Entry) error {
	h.entries = append(h.entries, entry)
	return nil
}
