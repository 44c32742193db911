// Package logging provides the process-wide structured logger. Every
// subsystem logs through the package-level Sugar() rather than the
// standard library "log" package, matching the structured-logging
// convention the rest of the corpus converges on for this domain.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger = mustBuild()

func mustBuild() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Falling back to a no-op logger would hide configuration errors;
		// a logger is cheap enough to construct that a failure here means
		// the process environment is broken.
		panic(err)
	}
	return l
}

// Replace swaps the global logger, used once at startup after config has
// been parsed (log level, log file target).
func Replace(l *zap.Logger) {
	logger = l
}

// L returns the raw structured logger for call sites that want fields.
func L() *zap.Logger {
	return logger
}

// Sync flushes buffered log entries; call before process exit.
func Sync() {
	_ = logger.Sync()
}

// S returns a sugared logger for call sites migrated from log.Printf-style
// formatting.
func S() *zap.SugaredLogger {
	return logger.Sugar()
}
