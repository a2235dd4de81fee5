package logging

import (
	"log/slog"
	"os"
)

// New builds the process logger. Text output for interactive use, JSON when
// the SLIPWAY_LOG_FORMAT environment variable says so.
func New(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if os.Getenv("SLIPWAY_LOG_FORMAT") == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h)
}
