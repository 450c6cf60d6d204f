package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogType represents the type of log message
type LogType string

const (
	UserLog LogType = "user"
	OpLog   LogType = "op"
)

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value interface{}
}

// UnifiedLogger is the main logger interface
type UnifiedLogger struct {
	mu     sync.RWMutex
	logger *logrus.Logger
}

var (
	unifiedLog *UnifiedLogger
	once       sync.Once
)

// GetLogger returns the global logger instance, initializing it if necessary
func GetLogger() *UnifiedLogger {
	once.Do(func() {
		initDefaultLogger()
	})
	return unifiedLog
}

func initDefaultLogger() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&CLIFormatter{
		DisableTimestamp: true,
		DisableLevel:     true,
		DisableColors:    false,
	})

	unifiedLog = &UnifiedLogger{
		logger: logger,
	}
}

// WithLogType creates a field for the log type
func WithLogType(logType LogType) Field {
	return Field{Key: "log_type", Value: string(logType)}
}

// WithMarker creates a field carrying a status marker such as "[DONE]"
func WithMarker(marker string) Field {
	return Field{Key: "marker", Value: marker}
}

// WithTask creates a field naming the task a message is about
func WithTask(name string) Field {
	return Field{Key: "task", Value: name}
}

// WithFields creates fields from a map
func WithFields(fields map[string]interface{}) []Field {
	result := make([]Field, 0, len(fields))
	for k, v := range fields {
		result = append(result, Field{Key: k, Value: v})
	}
	return result
}

func (l *UnifiedLogger) entry(fields ...Field) *logrus.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	logFields := make(logrus.Fields)
	for _, field := range fields {
		logFields[field.Key] = field.Value
	}

	return l.logger.WithFields(logFields)
}

// Info logs an info message
func (l *UnifiedLogger) Info(msg string, fields ...Field) {
	l.entry(fields...).Info(msg)
}

// Infof logs a formatted info message
func (l *UnifiedLogger) Infof(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

// Error logs an error message
func (l *UnifiedLogger) Error(msg string, fields ...Field) {
	l.entry(fields...).Error(msg)
}

// Errorf logs a formatted error message
func (l *UnifiedLogger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

// Warn logs a warning message
func (l *UnifiedLogger) Warn(msg string, fields ...Field) {
	l.entry(fields...).Warn(msg)
}

// Warnf logs a formatted warning message
func (l *UnifiedLogger) Warnf(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

// Debug logs a debug message
func (l *UnifiedLogger) Debug(msg string, fields ...Field) {
	l.entry(fields...).Debug(msg)
}

// Debugf logs a formatted debug message
func (l *UnifiedLogger) Debugf(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

// WithField creates an entry with a single field
func (l *UnifiedLogger) WithField(key string, value interface{}) *logrus.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger.WithField(key, value)
}

// WithFieldsMap creates an entry with fields from a map
func (l *UnifiedLogger) WithFieldsMap(fields map[string]interface{}) *logrus.Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger.WithFields(fields)
}

// Configure updates the logger configuration
func (l *UnifiedLogger) Configure(output io.Writer, level logrus.Level, formatter logrus.Formatter) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logger.SetOutput(output)
	l.logger.SetLevel(level)
	l.logger.SetFormatter(formatter)
}

// GetInternalLogger returns the underlying logrus logger (use with caution)
func (l *UnifiedLogger) GetInternalLogger() *logrus.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logger
}

// Task lifecycle messages for users

// Starting logs that a task started running
func (l *UnifiedLogger) Starting(task string) {
	l.Info("Starting task: "+task, WithLogType(UserLog), WithMarker(MarkerStarting), WithTask(task))
}

// Success logs that a task completed
func (l *UnifiedLogger) Success(task string) {
	l.Info("Task completed: "+task, WithLogType(UserLog), WithMarker(MarkerDone), WithTask(task))
}

// Failure logs that a task failed
func (l *UnifiedLogger) Failure(task string, err error) {
	l.entry(WithLogType(UserLog), WithMarker(MarkerFailed), WithTask(task)).
		Errorf("Task failed: %s - %v", task, err)
}

// Resetting logs that a task is being reset
func (l *UnifiedLogger) Resetting(task string) {
	l.Info("Resetting task: "+task, WithLogType(UserLog), WithMarker(MarkerReset), WithTask(task))
}

// Skipped logs that a task never became runnable
func (l *UnifiedLogger) Skipped(task string, reason string) {
	l.entry(WithLogType(UserLog), WithMarker(MarkerSkipped), WithTask(task)).
		Warnf("Task skipped: %s (%s)", task, reason)
}
