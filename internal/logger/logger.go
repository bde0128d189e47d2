package logger

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogctx "github.com/veqryn/slog-context"
)

// New builds a logger writing to w. Format "json" selects the JSON handler;
// anything else uses a tint text handler.
func New(w io.Writer, level string, format string) *slog.Logger {
	lvl := ParseLevel(level)

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
			NoColor:    format == "plain",
		})
	}
	return slog.New(handler)
}

// Setup installs a logger as the process default and returns a context carrying it.
func Setup(ctx context.Context, w io.Writer, level string, format string) context.Context {
	l := New(w, level, format)
	slog.SetDefault(l)
	return slogctx.NewCtx(ctx, l)
}

// WithComponent returns a context whose logger tags every record with component.
func WithComponent(ctx context.Context, component string) context.Context {
	return slogctx.With(ctx, "component", component)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
