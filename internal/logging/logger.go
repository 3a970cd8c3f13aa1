// Package logging builds the structured logger used by the server and CLI.
//
// Output always goes to stderr (or a supplied writer); stdout is reserved
// for the JSON-RPC protocol.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel parses a log level string into a slog.Level.
// Returns slog.LevelInfo if the string is not recognized.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a text logger at the given level.
// If output is nil, os.Stderr is used.
func New(level slog.Level, output io.Writer) *slog.Logger {
	if output == nil {
		output = os.Stderr
	}
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
}

// NewFromString creates a logger from a level string.
func NewFromString(levelStr string, output io.Writer) *slog.Logger {
	return New(ParseLevel(levelStr), output)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
