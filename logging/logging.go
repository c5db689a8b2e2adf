// Package logging builds a structured slog.Handler from a small,
// flag-friendly Config, the same shape as go.jacobcolvin.com/x's log
// package (Config{Level, Format} -> slog.Handler) in the example pack.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format selects the slog handler's output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatLogfmt  Format = "logfmt"
)

var (
	ErrUnknownLevel  = errors.New("unknown log level")
	ErrUnknownFormat = errors.New("unknown log format")
)

// Config holds the two logging knobs, level and format. cmd/docustore
// registers no flags for them and does not build a handler from it.
type Config struct {
	Level  string
	Format string
}

// DefaultConfig returns the default "info"/"logfmt" configuration.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "logfmt"}
}

// NewHandler builds an slog.Handler writing to w per c. An invalid level
// or format string is an error wrapping ErrUnknownLevel/ErrUnknownFormat.
func (c Config) NewHandler(w io.Writer) (slog.Handler, error) {
	level, err := ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("log config: %w", err)
	}
	format, err := ParseFormat(c.Format)
	if err != nil {
		return nil, fmt.Errorf("log config: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatJSON {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}

// ParseLevel parses a log level string case-insensitively.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}

// ParseFormat parses a log format string case-insensitively.
func ParseFormat(format string) (Format, error) {
	switch strings.ToLower(format) {
	case "json":
		return FormatJSON, nil
	case "logfmt", "":
		return FormatLogfmt, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
