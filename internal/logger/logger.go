package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Status markers prefixed to user-facing task lifecycle messages
const (
	MarkerStarting = "[STARTING]"
	MarkerDone     = "[DONE]"
	MarkerFailed   = "[FAILED]"
	MarkerReset    = "[RESET]"
	MarkerSkipped  = "[SKIPPED]"
)

var (
	User *UserLogger // Clean messages for users (stdout)
	Op   *OpLogger   // Detailed operational logs (stderr)

	log *UnifiedLogger
)

// init ensures loggers are never nil
func init() {
	log = GetLogger()
	User = &UserLogger{logger: log.GetInternalLogger()}
	Op = &OpLogger{logger: log.GetInternalLogger()}
}

type UserLogger struct {
	logger *logrus.Logger
}

type OpLogger struct {
	logger *logrus.Logger
}

func (u *UserLogger) entry(marker string) *logrus.Entry {
	fields := logrus.Fields{"log_type": string(UserLog)}
	if marker != "" {
		fields["marker"] = marker
	}
	return u.logger.WithFields(fields)
}

func (u *UserLogger) Info(msg string) {
	u.entry("").Info(msg)
}

func (u *UserLogger) Infof(format string, args ...interface{}) {
	u.entry("").Infof(format, args...)
}

func (u *UserLogger) Warn(msg string) {
	u.entry("").Warn(msg)
}

func (u *UserLogger) Warnf(format string, args ...interface{}) {
	u.entry("").Warnf(format, args...)
}

func (u *UserLogger) Error(msg string) {
	u.entry(MarkerFailed).Error(msg)
}

func (u *UserLogger) Errorf(format string, args ...interface{}) {
	u.entry(MarkerFailed).Errorf(format, args...)
}

// Task lifecycle methods carry their own status marker

func (u *UserLogger) Starting(task string) {
	u.entry(MarkerStarting).WithField("task", task).Info("Starting task: " + task)
}

func (u *UserLogger) Success(task string) {
	u.entry(MarkerDone).WithField("task", task).Info("Task completed: " + task)
}

func (u *UserLogger) Failure(task string, err error) {
	u.entry(MarkerFailed).WithField("task", task).Errorf("Task failed: %s - %v", task, err)
}

func (u *UserLogger) Resetting(task string) {
	u.entry(MarkerReset).WithField("task", task).Info("Resetting task: " + task)
}

func (u *UserLogger) Skipped(task, reason string) {
	u.entry(MarkerSkipped).WithField("task", task).Warnf("Task skipped: %s (%s)", task, reason)
}

// OpLogger methods write operational logs without markers
func (o *OpLogger) Info(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Info(msg)
}

func (o *OpLogger) Infof(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Infof(format, args...)
}

func (o *OpLogger) Error(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Error(msg)
}

func (o *OpLogger) Errorf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Errorf(format, args...)
}

func (o *OpLogger) Warn(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Warn(msg)
}

func (o *OpLogger) Warnf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Warnf(format, args...)
}

func (o *OpLogger) Debug(msg string) {
	o.logger.WithField("log_type", string(OpLog)).Debug(msg)
}

func (o *OpLogger) Debugf(format string, args ...interface{}) {
	o.logger.WithField("log_type", string(OpLog)).Debugf(format, args...)
}

func (o *OpLogger) WithFields(fields map[string]interface{}) *logrus.Entry {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["log_type"] = string(OpLog)
	return o.logger.WithFields(fields)
}

// Entry returns an operational entry usable wherever a logrus.FieldLogger is expected
func (o *OpLogger) Entry() *logrus.Entry {
	return o.logger.WithField("log_type", string(OpLog))
}

// CLIFormatter provides clean output for CLI applications
type CLIFormatter struct {
	DisableTimestamp bool
	DisableLevel     bool
	DisableColors    bool
}

// routingFields are consumed by the formatter and hook, never printed
var routingFields = map[string]bool{
	"log_type": true,
	"marker":   true,
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if f.DisableLevel && f.DisableTimestamp {
		b.WriteString(entry.Message)
		b.WriteByte('\n')
		return b.Bytes(), nil
	}

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("15:04:05 "))
	}

	if !f.DisableLevel {
		levelColor := ""
		resetColor := ""
		if !f.DisableColors {
			switch entry.Level {
			case logrus.ErrorLevel:
				levelColor = "\033[31m" // Red
			case logrus.WarnLevel:
				levelColor = "\033[33m" // Yellow
			case logrus.InfoLevel:
				levelColor = "\033[36m" // Cyan
			case logrus.DebugLevel:
				levelColor = "\033[37m" // White
			}
			resetColor = "\033[0m"
		}

		b.WriteString(levelColor)
		b.WriteString(strings.ToUpper(entry.Level.String()))
		b.WriteString(resetColor)
		b.WriteString(": ")
	}

	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if !routingFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Setup configures level, format and routing of the global logger.
// LOG_MODE (quiet, verbose, debug) and LOG_FORMAT (json, text) override the flags.
func Setup(verbose bool, jsonLogs bool, quiet bool) {
	if envLogMode := os.Getenv("LOG_MODE"); envLogMode != "" {
		switch envLogMode {
		case "quiet":
			quiet = true
			verbose = false
		case "verbose", "debug":
			verbose = true
			quiet = false
		}
	}

	if envLogFormat := os.Getenv("LOG_FORMAT"); envLogFormat != "" {
		switch envLogFormat {
		case "json":
			jsonLogs = true
		case "text":
			jsonLogs = false
		}
	}

	ul := GetLogger()
	internalLogger := ul.GetInternalLogger()

	var level logrus.Level
	if quiet {
		level = logrus.ErrorLevel
	} else if verbose {
		level = logrus.DebugLevel
	} else {
		level = logrus.InfoLevel
	}

	internalLogger.Hooks = make(logrus.LevelHooks)
	internalLogger.SetOutput(io.Discard) // Output handled by hooks
	internalLogger.SetLevel(level)

	hook := NewOutputRouterHook()
	if jsonLogs {
		internalLogger.SetFormatter(&logrus.JSONFormatter{})
		hook.UserFormatter = &logrus.JSONFormatter{}
		hook.OpFormatter = &logrus.JSONFormatter{}
	} else {
		internalLogger.SetFormatter(&logrus.TextFormatter{})

		hook.UserFormatter = &CLIFormatter{
			DisableTimestamp: true,
			DisableLevel:     true,
		}
		if verbose {
			hook.OpFormatter = &logrus.TextFormatter{
				FullTimestamp: true,
				ForceColors:   isatty.IsTerminal(os.Stderr.Fd()),
			}
		} else {
			hook.OpFormatter = &CLIFormatter{
				DisableTimestamp: true,
				DisableColors:    !isatty.IsTerminal(os.Stderr.Fd()),
			}
		}
	}
	internalLogger.AddHook(hook)

	User = &UserLogger{logger: internalLogger}
	Op = &OpLogger{logger: internalLogger}
}

// L returns the unified logger instance
func L() *UnifiedLogger {
	return log
}

// Info logs an info message
func Info(msg string, fields ...Field) {
	log.Info(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...Field) {
	log.Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...Field) {
	log.Error(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...Field) {
	log.Debug(msg, fields...)
}

// WithField creates an entry with a single field
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}
