// Package logger builds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"projecthub/internal/config"
)

// Setup creates the logger described by cfg, writing to stdout, and makes
// it the slog default.
func Setup(cfg config.ServerConfig) *slog.Logger {
	log := New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	return log
}

// New builds a logger writing to w. Unknown levels fall back to info; any
// format other than "text" produces JSON.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a case-insensitive level name to a slog level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
