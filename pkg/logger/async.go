package logger

import (
	"context"
	"log/slog"
	"sync"
)

// AsyncHandler buffers records on a channel and hands them to the wrapped
// handler from a single background goroutine, so callers never block on the
// underlying writer.
type AsyncHandler struct {
	next       slog.Handler
	jobs       chan func()
	dropOnFull bool
	closeOnce  sync.Once
	done       chan struct{}
}

// NewAsyncHandler starts the background drain goroutine and returns a handler
// that queues onto a channel of the given capacity. When dropOnFull is true,
// records are discarded rather than blocking the caller once the buffer fills;
// otherwise Handle blocks until space is available.
func NewAsyncHandler(next slog.Handler, bufferSize int, dropOnFull bool) *AsyncHandler {
	h := &AsyncHandler{
		next:       next,
		jobs:       make(chan func(), bufferSize),
		dropOnFull: dropOnFull,
		done:       make(chan struct{}),
	}
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	defer close(h.done)
	for job := range h.jobs {
		job()
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	next := h.next
	job := func() { _ = next.Handle(ctx, r) }

	if h.dropOnFull {
		select {
		case h.jobs <- job:
		default:
			// buffer full: drop rather than stall the caller.
		}
		return nil
	}

	h.jobs <- job
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), jobs: h.jobs, dropOnFull: h.dropOnFull, done: h.done}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), jobs: h.jobs, dropOnFull: h.dropOnFull, done: h.done}
}

// Close stops accepting new records and waits for the buffer to drain.
func (h *AsyncHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.jobs)
	})
	<-h.done
}
