package telemetry

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LogLevel parses a level name. Accepted values: DEBUG, INFO, WARN, ERROR
// (any case). Anything else yields INFO.
func LogLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogOptions selects the handler built by NewLogger.
type LogOptions struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // "text" (default) or "json"
}

// NewLogger builds a logger writing to w.
//
// Format:
//   - "json": one JSON object per line, for piping into log tooling
//   - anything else: human-readable key=value lines
func NewLogger(w io.Writer, opts LogOptions) *slog.Logger {
	level := LogLevel(opts.Level)
	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}

// SetupLogger builds a logger writing to w and installs it as the default.
func SetupLogger(w io.Writer, opts LogOptions) *slog.Logger {
	logger := NewLogger(w, opts)
	slog.SetDefault(logger)
	return logger
}

type ctxKey string

const (
	// CtxLogger is the context key for the logger.
	CtxLogger ctxKey = "logger"
)

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRunID returns logger with a run_id attribute.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With("run_id", runID)
}

// WithCell returns logger with a cell attribute.
func WithCell(logger *slog.Logger, cell string) *slog.Logger {
	return logger.With("cell", cell)
}
