package cli

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"quiz-progress-service/internal/config"
)

// newLogger builds the process logger from config and installs it as the slog default.
// Format "json" is meant for production; anything else gets the text handler with source info.
func newLogger(cfg config.LogConfig) *slog.Logger {
	logger := buildLogger(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func buildLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !strings.EqualFold(cfg.Format, "json"),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
