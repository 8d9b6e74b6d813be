// ABOUTME: Structured logger construction on top of charmbracelet/log
// ABOUTME: Text or JSON output to stderr with a configurable level

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Config controls basic logger behaviour.
type Config struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // text or json
}

// New constructs a logger writing to stderr.
func New(cfg Config) *log.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter constructs a logger writing to w.
func NewWithWriter(w io.Writer, cfg Config) *log.Logger {
	opts := log.Options{
		Level:           parseLevel(cfg.Level),
		Prefix:          "acreage",
		ReportTimestamp: true,
	}
	if strings.EqualFold(cfg.Format, "json") {
		opts.Formatter = log.JSONFormatter
	}
	return log.NewWithOptions(w, opts)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
