// Package memory provides an in-process implementation of events.Bus.
package memory

import (
	"context"
	"sync"

	"github.com/samir-okafor/quotaguard/pkg/events"
)

// Bus is a goroutine-safe, in-process events.Bus. Subscribers on a topic are
// invoked synchronously, in subscription order, from Publish's calling
// goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]events.Handler
	closed   bool
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{handlers: make(map[string][]events.Handler)}
}

// Publish invokes every handler subscribed to topic, in order, stopping at
// the first error.
func (b *Bus) Publish(ctx context.Context, topic string, event events.Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return errClosed
	}
	handlers := make([]events.Handler, len(b.handlers[topic]))
	copy(handlers, b.handlers[topic])
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers handler to run on every future Publish to topic.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler events.Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errClosed
	}
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}

// Close marks the bus closed; subsequent Publish/Subscribe calls fail.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}

var errClosed = busClosedError{}

type busClosedError struct{}

func (busClosedError) Error() string { return "events: bus is closed" }
