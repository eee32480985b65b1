package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog.
// The level defaults to info and can be lowered via DOCAUTH_LOG_LEVEL=debug.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("DOCAUTH_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
