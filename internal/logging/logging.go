// Package logging provides structured logging using Go's log/slog.
//
// Configuration is controlled via environment variables:
//   - SMARTCONTEXT_LOG_LEVEL: debug, info, warn, error (default: info)
//   - SMARTCONTEXT_LOG_FORMAT: text, json (default: text)
//
// All logging goes to stderr so stdout stays clean for skeleton output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logging configuration
type Config struct {
	Level  slog.Level
	Format string    // "text" or "json"
	Output io.Writer // defaults to os.Stderr
	Source string    // component name for context
}

// DefaultConfig returns sensible defaults for the given source component.
func DefaultConfig(source string) Config {
	return Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
		Source: source,
	}
}

// LoadConfigFromEnv reads logging config from environment variables,
// returning defaults with any overrides applied.
func LoadConfigFromEnv(source string) Config {
	cfg := DefaultConfig(source)

	if level := os.Getenv("SMARTCONTEXT_LOG_LEVEL"); level != "" {
		switch strings.ToLower(level) {
		case "debug":
			cfg.Level = slog.LevelDebug
		case "info":
			cfg.Level = slog.LevelInfo
		case "warn", "warning":
			cfg.Level = slog.LevelWarn
		case "error":
			cfg.Level = slog.LevelError
		}
	}

	if format := os.Getenv("SMARTCONTEXT_LOG_FORMAT"); format != "" {
		cfg.Format = strings.ToLower(format)
	}

	return cfg
}

// New creates a configured slog.Logger.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	return slog.New(handler).With("source", cfg.Source)
}

// Default returns a logger with configuration loaded from environment.
// This is the recommended way to create a logger in CLI entry points.
func Default(source string) *slog.Logger {
	return New(LoadConfigFromEnv(source))
}

// Nop returns a logger that discards all output.
// Useful for tests or when logging should be suppressed.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
