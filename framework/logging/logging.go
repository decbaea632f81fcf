// Package logging builds the slog loggers used across goboot.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/km-arc/goboot/framework/config"
)

// New creates a slog.Logger writing to w. It does not touch the global
// logger, so tests and embedded applications can hold isolated instances.
//
// level is one of debug, info, warn or error (anything else means info);
// format "json" selects the JSON handler, anything else the text handler.
func New(level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// FromConfig is New driven by the LOG_* settings.
func FromConfig(cfg config.LogConfig, w io.Writer) *slog.Logger {
	return New(cfg.Level, cfg.Format, w)
}

// ParseLevel maps a level name onto a slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
