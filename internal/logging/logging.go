// Package logging provides utilities for structured logging.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup builds the process logger. Verbosity counts -v flags: 0 logs
// warnings only, 1 adds info, 2 or more adds debug.
func Setup(verbosity int) *slog.Logger {
	return New(os.Stderr, verbosity)
}

// New builds a logger writing to w at the level the verbosity selects.
func New(w io.Writer, verbosity int) *slog.Logger {
	var level slog.Level
	switch {
	case verbosity <= 0:
		level = slog.LevelWarn
	case verbosity == 1:
		level = slog.LevelInfo
	default:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
