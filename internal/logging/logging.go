// Package logging builds the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Options configures New.
type Options struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string
	// Format is text (colored console output) or json. Empty means text.
	Format string
	// Prefix labels text output, e.g. "taskmaster".
	Prefix string
	// Timestamps adds a time to each text line. JSON always has one.
	Timestamps bool
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// New returns a logger writing to w. Text output goes through
// charmbracelet/log acting as the slog handler.
func New(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(opts.Format) {
	case "", "text":
		return slog.New(log.NewWithOptions(w, log.Options{
			Level:           log.Level(level),
			Formatter:       log.TextFormatter,
			ReportTimestamp: opts.Timestamps,
			TimeFormat:      time.DateTime,
			Prefix:          opts.Prefix,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	}
	return nil, fmt.Errorf("unknown log format %q", opts.Format)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
