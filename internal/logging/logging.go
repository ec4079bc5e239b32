// Package logging builds the leveled structured logger shared by the
// daemon, MCP server, and one-shot index CLI mode. Daemon/MCP mode must
// never write to stdout — that stream carries the wire protocol — so
// both handlers write to stderr; what differs is format: JSON for
// machine-consumed daemon/MCP logs, text for a human watching the
// one-shot `index` command.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Mode selects the log record format.
type Mode int

const (
	// ModeText renders human-readable lines, used by the one-shot index command.
	ModeText Mode = iota
	// ModeJSON renders one JSON object per line, used by daemon/MCP mode.
	ModeJSON
)

// ParseLevel maps a --log-level flag value to a slog.Level, defaulting to
// Info on an unrecognized string.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

// New builds a logger writing to w at the given mode and level. Callers in
// daemon/MCP mode must pass os.Stderr for w, never os.Stdout.
func New(w io.Writer, mode Mode, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if mode == ModeJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
