package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger writing to stdout. Token contents and
// secrets must never be passed as attributes.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
