// Package logger is a thin package-level facade over zap so the rest of the
// code can log key-value pairs without threading a logger through every
// constructor.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log = zap.NewNop().Sugar()

// Init configures the global logger with a console encoder at the given
// level ("debug", "info", "warn", "error"). Safe to call once at startup;
// before Init all logging is a no-op.
func Init(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	log = l.Sugar()
	return nil
}

// Debug logs a debug message with key-value pairs
func Debug(msg string, kv ...interface{}) { log.Debugw(msg, kv...) }

// Info logs an info message with key-value pairs
func Info(msg string, kv ...interface{}) { log.Infow(msg, kv...) }

// Warn logs a warning with key-value pairs
func Warn(msg string, kv ...interface{}) { log.Warnw(msg, kv...) }

// Error logs an error with key-value pairs
func Error(msg string, kv ...interface{}) { log.Errorw(msg, kv...) }

// Sync flushes buffered log entries; call on shutdown
func Sync() {
	_ = log.Sync()
}
