// Package obs is the ambient logging/metrics stack for a single scan run:
// structured, colorized stderr logging and a small set of pull-based
// Prometheus instruments for a one-shot batch CLI — no trace-context
// injection, no OTLP push exporters.
package obs

import (
	"context"
	"log/slog"
	"os"

	"github.com/fatih/color"
)

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgHiBlack),
	slog.LevelInfo:  color.New(color.FgCyan),
	slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
	slog.LevelError: color.New(color.FgRed, color.Bold),
}

// colorHandler wraps an [slog.Handler], colorizing the level field before
// delegating to the inner handler.
type colorHandler struct {
	inner slog.Handler
}

// NewLogger builds the run's logger. JSON output bypasses colorization
// (machine consumers don't want ANSI codes); text output gets a
// level-colored message prefix unless color.NoColor is set (e.g. by
// --no-color, NO_COLOR, non-tty stderr).
func NewLogger(level slog.Level, jsonOutput bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	if jsonOutput {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}

	return slog.New(&colorHandler{inner: slog.NewTextHandler(os.Stderr, opts)})
}

func (h *colorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *colorHandler) Handle(ctx context.Context, record slog.Record) error {
	if c, ok := levelColors[record.Level]; ok && !color.NoColor {
		record.Message = c.Sprint(record.Level.String()) + " " + record.Message
	}

	return h.inner.Handle(ctx, record) //nolint:wrapcheck // pass-through delegate
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return &colorHandler{inner: h.inner.WithGroup(name)}
}
