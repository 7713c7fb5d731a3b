// Package logging builds the slog loggers used by the binaries.
package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
)

// Options controls logger construction.
type Options struct {
	// Level is a level name understood by charmbracelet/log ("debug", "info", ...).
	// Unknown or empty names fall back to info.
	Level string
	// Environment "production" switches to JSON output.
	Environment string
	// Prefix is printed before every message, e.g. the binary name.
	Prefix string
}

// NewCharm creates the underlying charmbracelet logger.
func NewCharm(w io.Writer, opts Options) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = log.InfoLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          opts.Prefix,
	})
	if opts.Environment == "production" {
		logger.SetFormatter(log.JSONFormatter)
	}
	return logger
}

// New creates a slog.Logger backed by charmbracelet/log.
func New(w io.Writer, opts Options) *slog.Logger {
	return slog.New(NewCharm(w, opts))
}

// SetDefault installs a logger built from opts as the slog default and returns it.
func SetDefault(w io.Writer, opts Options) *slog.Logger {
	logger := New(w, opts)
	slog.SetDefault(logger)
	return logger
}
