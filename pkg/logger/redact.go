package logger

import (
	"context"
	"log/slog"
)

// sensitiveKeys lists attribute keys whose values are replaced with a fixed
// placeholder before a record reaches the output handler. Matching is
// case-sensitive and exact on the attribute key; it is a fixed list, not a
// general PII scan.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"authorization": true,
	"secret":        true,
	"api_key":       true,
	"email":         true,
	"cc":            true,
}

const redactedPlaceholder = "[REDACTED]"

// RedactHandler replaces the value of known-sensitive attributes with a fixed
// placeholder before delegating to the wrapped handler.
type RedactHandler struct {
	next slog.Handler
}

// NewRedactHandler wraps next with sensitive-attribute redaction.
func NewRedactHandler(next slog.Handler) *RedactHandler {
	return &RedactHandler{next: next}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, redacted)
}

func redactAttr(a slog.Attr) slog.Attr {
	if sensitiveKeys[a.Key] {
		return slog.String(a.Key, redactedPlaceholder)
	}
	return a
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactHandler{next: h.next.WithAttrs(redacted)}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{next: h.next.WithGroup(name)}
}
