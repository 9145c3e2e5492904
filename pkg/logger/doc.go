// Package logger provides the structured logging interface used across
// unliker.
//
// It wraps zerolog with a small API:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output on stderr, optional file output
// - A global logger for command wiring
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("Browser launched")
//	logger.WithField("driver", "rod").Info("Page ready")
//
// When a full-screen UI owns the terminal, route console output away:
//
//	logger.InitializeWithWriter(cfg, io.Discard)
//
// Tests can capture output with NewTestLogger or silence it with NewNopLogger.
package logger
