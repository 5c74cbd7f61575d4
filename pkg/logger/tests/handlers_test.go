package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactHandler_RedactsKnownKeys(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewRedactHandler(slog.NewJSONHandler(&buf, nil))
	l := slog.New(h)

	l.Info("login", "email", "user@example.com", "action", "login")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "[REDACTED]", decoded["email"])
	assert.Equal(t, "login", decoded["action"])
}

func TestSamplingHandler_AlwaysKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewSamplingHandler(slog.NewJSONHandler(&buf, nil), 0.0)
	l := slog.New(h)

	l.Warn("degraded")

	assert.Contains(t, buf.String(), "degraded")
}

func TestSamplingHandler_DropsAtZeroRate(t *testing.T) {
	var buf bytes.Buffer
	h := logger.NewSamplingHandler(slog.NewJSONHandler(&buf, nil), 0.0)
	l := slog.New(h)

	for i := 0; i < 20; i++ {
		l.Info("routine")
	}

	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestAsyncHandler_DeliversEventually(t *testing.T) {
	var buf bytes.Buffer
	async := logger.NewAsyncHandler(slog.NewJSONHandler(&buf, nil), 8, false)
	l := slog.New(async)

	l.InfoContext(context.Background(), "queued")
	async.Close()

	assert.Contains(t, buf.String(), "queued")
}

func TestAsyncHandler_DropsOnFullBuffer(t *testing.T) {
	blocking := make(chan struct{})
	slowNext := slowHandlerFunc(func() { <-blocking })
	async := logger.NewAsyncHandler(slowNext, 1, true)

	for i := 0; i < 10; i++ {
		_ = async.Handle(context.Background(), slog.Record{Time: time.Now(), Message: "x"})
	}

	close(blocking)
	async.Close()
}

// slowHandlerFunc adapts a plain func into a minimal slog.Handler whose Handle
// blocks on the given hook, used to exercise the drop-on-full path without
// racing on real I/O.
type slowHandlerFunc func()

func (f slowHandlerFunc) Enabled(context.Context, slog.Level) bool { return true }
func (f slowHandlerFunc) Handle(context.Context, slog.Record) error {
	f()
	return nil
}
func (f slowHandlerFunc) WithAttrs([]slog.Attr) slog.Handler { return f }
func (f slowHandlerFunc) WithGroup(string) slog.Handler      { return f }
