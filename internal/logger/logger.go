// Package logger provides charmbracelet/log factories with shared defaults.
package logger

import (
	"os"

	"github.com/charmbracelet/log"
)

// Default creates a logger with the given prefix that respects the global
// log level. Output goes to stderr so completion text on stdout stays clean.
func Default(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// WithLevel creates a logger with the given prefix and explicit level.
func WithLevel(prefix string, level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: false,
		Formatter:       log.TextFormatter,
		Level:           level,
	})
}
