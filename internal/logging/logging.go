// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the slog loggers used by each wrench entry point.
//
// The TUI owns the terminal, so it logs to a file. CLI commands log to
// stderr and stay quiet unless asked. The dev server logs JSON to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Mode selects where and how a process logs.
type Mode int

const (
	// ModeTUI writes text records to the log file.
	ModeTUI Mode = iota
	// ModeCLI writes text records to stderr at warn or above.
	ModeCLI
	// ModeServer writes JSON records to stderr.
	ModeServer
)

// Options configures Setup.
type Options struct {
	Mode    Mode
	Level   string // debug, info, warn, error
	File    string // used by ModeTUI
	Verbose bool   // ModeCLI: lower the threshold to debug
	Quiet   bool   // ModeCLI: raise the threshold to error
	Stderr  io.Writer
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Setup builds the logger for a mode and installs it as the slog default.
// The returned close function releases the log file, if one was opened.
func Setup(opts Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var logger *slog.Logger
	closeFn := noop

	switch opts.Mode {
	case ModeTUI:
		f, err := OpenFile(opts.File)
		if err != nil {
			return Discard(), noop, err
		}
		logger = New(f, ParseLevel(opts.Level), false)
		closeFn = f.Close

	case ModeCLI:
		level := slog.LevelWarn
		switch {
		case opts.Verbose:
			level = slog.LevelDebug
		case opts.Quiet:
			level = slog.LevelError
		}
		logger = New(stderr, level, false)

	case ModeServer:
		logger = New(stderr, ParseLevel(opts.Level), true)

	default:
		return Discard(), noop, fmt.Errorf("unknown log mode %d", opts.Mode)
	}

	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// OpenFile opens path for appending, creating its directory first.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
