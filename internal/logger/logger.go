// Package logger configures the process-wide slog logger. Output goes to a
// file because the TUI owns stdout.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init opens the log file and installs a JSON handler as the slog default.
// The returned closer flushes the file on shutdown.
func Init(path, level string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	slog.SetDefault(slog.New(handler))
	return f, nil
}

// Silence routes the default logger to io.Discard. Used by tests.
func Silence() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
