// Package observability constructs the process-wide structured logger.
package observability

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/lidar-rws-analysis/internal/config"
)

// NewLogger builds a slog.Logger honoring the configured level and format.
// Logs go to stderr so stdout stays clean for tool output.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
