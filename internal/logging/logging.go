// Package logging builds the slog loggers used for diagnostics.
//
// Findings never go through a logger; they go through a report.Reporter.
// Loggers carry progress and tool failures, on stderr, at debug level
// unless the run is verbose.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the level and format of a logger.
type Config struct {
	Debug  bool
	JSON   bool
	Writer io.Writer
}

// New returns a logger for cfg. A nil Writer means stderr.
func New(cfg Config) *slog.Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// DebugFromEnv reports whether SCAME_DEBUG asks for debug output.
func DebugFromEnv() bool {
	switch strings.ToLower(os.Getenv("SCAME_DEBUG")) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type ctxKey struct{}

// WithLogger returns a context carrying l.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger carried by ctx, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// Scoped returns a child of the context logger tagged with component.
func Scoped(ctx context.Context, component string) *slog.Logger {
	return FromContext(ctx).With("component", component)
}
