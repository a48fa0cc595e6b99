// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package observability provides the leveled, structured diagnostic
// channel used across the chatin client. Background failures (history
// fetch, transcript load) are deliberately silent in the UI; this logger
// is where that diagnostic information goes instead.
package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the diagnostic collaborator injected into the backend
// client, the auth session, the history store, and the conversation
// controller. Fields are alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, kv ...any) { l.s.Debugw(msg, kv...) }
func (l zapLogger) Info(msg string, kv ...any)  { l.s.Infow(msg, kv...) }
func (l zapLogger) Error(msg string, kv ...any) { l.s.Errorw(msg, kv...) }
func (l zapLogger) With(kv ...any) Logger       { return zapLogger{s: l.s.With(kv...)} }

// New creates a file-backed logger. The TUI owns stdout, so diagnostics
// go to a log file under the config directory.
func New(path string, level string) (Logger, func(), error) {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "info", "":
		lvl = zapcore.InfoLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		return nil, nil, fmt.Errorf("unknown log level %q", level)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	zl, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}

	flush := func() { _ = zl.Sync() }
	return zapLogger{s: zl.Sugar()}, flush, nil
}

// FromZap wraps an existing zap logger; tests use this with zaptest or
// an observer core to assert on the diagnostic side channel.
func FromZap(zl *zap.Logger) Logger {
	return zapLogger{s: zl.Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return zapLogger{s: zap.NewNop().Sugar()}
}
