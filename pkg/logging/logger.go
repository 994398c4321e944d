// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for the prompt generator.
//
// Built on the standard library slog package. Default output is stderr in
// text format, following Unix CLI conventions; an optional log directory
// adds a JSON file destination named {service}_{date}.log.
//
// The selection engine itself stays log-free: it is a pure, deterministic
// library. Logging belongs to the boundaries, table loading and the CLI.
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("tables loaded", "genres", n)
//
// # File Logging
//
//	logger, err := logging.New(logging.Config{
//	    Level:   logging.LevelDebug,
//	    LogDir:  "~/.promptgen/logs",
//	    Service: "promptgen",
//	})
//	defer logger.Close()
//
// # Thread Safety
//
// Logger is safe for concurrent use.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for recoverable, unexpected situations.
	LevelWarn

	// LevelError is for failed operations the process survives.
	LevelError
)

// String returns "DEBUG", "INFO", "WARN", or "ERROR".
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel bridges our Level to the standard library.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger. The zero value logs Info+ to stderr as text.
type Config struct {
	// Level is the minimum severity to emit. Default: LevelInfo.
	Level Level

	// LogDir, when set, adds a JSON file destination. Supports a leading
	// ~ for home directory expansion. Created with 0755 if missing.
	LogDir string

	// Service is attached to every entry as the "service" attribute and
	// names the log file. Default: "promptgen".
	Service string

	// JSON switches the stderr destination to JSON format. File logs are
	// always JSON regardless.
	JSON bool

	// Stderr overrides the stderr writer. Tests use this.
	Stderr io.Writer
}

// Logger wraps a slog.Logger with an optional file destination.
type Logger struct {
	*slog.Logger
	file *os.File
}

// Default returns a stderr-only Logger at Info level.
func Default() *Logger {
	l, err := New(Config{})
	if err != nil {
		// Unreachable: the file path is the only failure mode and the
		// zero config has none.
		panic(err)
	}
	return l
}

// New creates a Logger from config.
//
// The only failure mode is the file destination: a bad LogDir returns an
// error rather than silently dropping logs.
func New(cfg Config) (*Logger, error) {
	stderr := cfg.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	service := cfg.Service
	if service == "" {
		service = "promptgen"
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	var stderrHandler slog.Handler
	if cfg.JSON {
		stderrHandler = slog.NewJSONHandler(stderr, opts)
	} else {
		stderrHandler = slog.NewTextHandler(stderr, opts)
	}

	out := &Logger{}
	if cfg.LogDir == "" {
		out.Logger = slog.New(stderrHandler).With("service", service)
		return out, nil
	}

	dir, err := expandHome(cfg.LogDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	fileHandler := slog.NewJSONHandler(f, opts)
	out.Logger = slog.New(multiHandler{stderrHandler, fileHandler}).With("service", service)
	out.file = f
	return out, nil
}

// Close closes the file destination, if any. Safe on nil.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// expandHome resolves a leading ~ in a path.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("logging: resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// multiHandler fans one record out to every destination handler.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
