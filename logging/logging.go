// Package logging provides the shared structured logger.
package logging

import (
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// Init installs a development logger. Call once at startup when verbose
// output is wanted; the default is a no-op logger so library code can log
// unconditionally.
func Init(debug bool) {
	if !debug {
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	logger = l
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the global logger.
func Logger() *zap.Logger {
	return logger
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	logger.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	logger.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	logger.Error(msg, fields...)
}

// Sync flushes any buffered log entries.
func Sync() error {
	return logger.Sync()
}
