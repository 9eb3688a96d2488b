// Package logging configures log/slog for beadinspect.
//
// Loggers are looked up from the context. A validation run attaches a logger
// carrying its run_id and stamp, so sinks and helpers called with the run's
// context log under the same fields. Outside a run, the chi request id is
// added when present.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

type loggerKey struct{}

// Setup installs the default logger.
//
// Level values: "debug", "info", "warn", "error", or an offset such as
// "debug+2" (default: "info"). Format values: "text", "json" (default: "text").
//
// Logs go to stderr so the CLI's stdout carries only the run summary.
func Setup(level, format string) {
	slog.SetDefault(New(os.Stderr, level, format))
}

// New builds a logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// parseLevel accepts slog level names plus "warning". Anything else is info.
func parseLevel(level string) slog.Level {
	if strings.EqualFold(level, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// FromContext returns the logger attached to ctx, or the default logger with
// the chi request id when one is set.
//
//	logger := logging.FromContext(r.Context())
//	logger.Info("reading issue log", "stamp", stamp)
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// WithFields returns the context's logger with extra fields. The context is
// not changed.
//
//	logging.WithFields(ctx, "format", "challenges", "file", path).
//	    Warn("data file failed to load")
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

// WithRun attaches a run logger to ctx. Everything logged through the
// returned context carries run_id and stamp.
func WithRun(ctx context.Context, runID, stamp string) (context.Context, *slog.Logger) {
	logger := WithFields(ctx, "run_id", runID, "stamp", stamp)
	return context.WithValue(ctx, loggerKey{}, logger), logger
}
