package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samir-okafor/quotaguard/pkg/events"
	"github.com/samir-okafor/quotaguard/pkg/events/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishDeliversToSubscribers(t *testing.T) {
	bus := memory.New()
	var got events.Event

	require.NoError(t, bus.Subscribe(context.Background(), "shutdown", func(ctx context.Context, e events.Event) error {
		got = e
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), "shutdown", events.Event{Type: "shutdown.requested"}))
	assert.Equal(t, "shutdown.requested", got.Type)
}

func TestBus_PublishStopsAtFirstError(t *testing.T) {
	bus := memory.New()
	calls := 0
	boom := errors.New("boom")

	require.NoError(t, bus.Subscribe(context.Background(), "t", func(ctx context.Context, e events.Event) error {
		calls++
		return boom
	}))
	require.NoError(t, bus.Subscribe(context.Background(), "t", func(ctx context.Context, e events.Event) error {
		calls++
		return nil
	}))

	err := bus.Publish(context.Background(), "t", events.Event{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestBus_ClosedRejectsCalls(t *testing.T) {
	bus := memory.New()
	require.NoError(t, bus.Close())

	assert.Error(t, bus.Subscribe(context.Background(), "t", func(ctx context.Context, e events.Event) error { return nil }))
	assert.Error(t, bus.Publish(context.Background(), "t", events.Event{}))
}
