// Package logging provides the structured logger used across the engine
// and its host binaries. It wraps charmbracelet/log so every component
// logs key/value pairs through one configurable sink instead of reaching
// for the standard library's log package ad hoc.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Level is a logging severity; re-exported so callers need not import
// charmbracelet/log directly.
type Level = log.Level

const (
	DebugLevel = log.DebugLevel
	InfoLevel  = log.InfoLevel
	WarnLevel  = log.WarnLevel
	ErrorLevel = log.ErrorLevel
)

// Logger is the engine's structured logger. It embeds *log.Logger so every
// charmbracelet/log method (Debug, Info, With, ...) is usable directly.
type Logger struct {
	*log.Logger
}

// Config configures a Logger.
type Config struct {
	Level  string    // "debug", "info", "warn", "error"
	Prefix string    // component name, e.g. "generator" or "store"
	Output io.Writer // defaults to os.Stderr
}

// DefaultConfig returns the engine's default logging configuration: info
// level, no prefix, stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: os.Stderr,
	}
}

// New builds a Logger from cfg.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	l := log.NewWithOptions(output, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          cfg.Prefix,
	})
	l.SetLevel(ParseLevel(cfg.Level))

	return &Logger{Logger: l}
}

// ParseLevel parses a level name, defaulting to InfoLevel for unrecognized
// input rather than failing - logging configuration should never be able to
// crash the engine it instruments.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// With returns a child logger with keyvals attached to every subsequent
// entry. Used to scope a logger to one mint's kind, e.g.
// logger.With("kind", k).
func (l *Logger) With(keyvals ...interface{}) *Logger {
	return &Logger{Logger: l.Logger.With(keyvals...)}
}
