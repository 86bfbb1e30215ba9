// Package logging provides structured logging for ontora-ai pipeline
// components.
//
// It is built on Go's standard library slog package. The default
// configuration writes human-readable output to stderr, following Unix CLI
// conventions; JSON output is available for runs whose logs are collected
// by the host platform.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output encoding.
type Format string

const (
	// FormatText is human-readable key=value output (default for CLIs).
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON output.
	FormatJSON Format = "json"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum level emitted ("debug", "info", "warn", "error").
	// Defaults to "info".
	Level string

	// Format selects text or json output. Defaults to text.
	Format Format

	// Service is attached to every record as the "service" attribute.
	Service string

	// Output overrides the destination. Defaults to stderr.
	Output io.Writer
}

// New creates a logger from the config.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return logger
}

// Default returns a stderr text logger at info level.
func Default() *slog.Logger {
	return New(Config{})
}

// Discard returns a logger that drops everything (used by tests).
func Discard() *slog.Logger {
	return New(Config{Output: io.Discard})
}

func parseLevel(level string) slog.Level {
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
