// Package logger builds the process logger for the shape-scrub command.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name. Unknown or empty values mean info.
	Level string
	// Out receives log lines. Default: os.Stderr
	Out io.Writer
	// RunID tags every line. Empty means a fresh random ID.
	RunID string
}

// New returns a logger writing to cfg.Out. Terminals get the human-readable
// console format, anything else gets one JSON object per line.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if IsTerminal(out) {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	runID := cfg.RunID
	if runID == "" {
		runID = NewRunID()
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// NewRunID returns a random identifier for one invocation.
func NewRunID() string {
	return uuid.NewString()
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
