package logger

import (
	"context"
	"io"
	"log/slog"
)

const ansiReset = "\033[0m"

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[36m", // cyan
	slog.LevelInfo:  "\033[32m", // green
	slog.LevelWarn:  "\033[33m", // yellow
	slog.LevelError: "\033[31m", // red
}

// ColorTextHandler wraps slog.TextHandler and prefixes each message with the
// colorized level name. With colored=false it degrades to a plain level prefix.
type ColorTextHandler struct {
	*slog.TextHandler
	colored bool
}

func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, colored bool) *ColorTextHandler {
	return &ColorTextHandler{
		TextHandler: slog.NewTextHandler(w, opts),
		colored:     colored,
	}
}

// Handle implements slog.Handler.
func (h *ColorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	prefix := r.Level.String()
	if h.colored {
		if c, ok := levelColors[r.Level]; ok {
			prefix = c + prefix + ansiReset
		}
	}
	r.Message = prefix + "  " + r.Message
	return h.TextHandler.Handle(ctx, r)
}
