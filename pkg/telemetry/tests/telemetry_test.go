package tests

import (
	"context"
	"testing"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/telemetry"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	cfg := telemetry.Config{
		ServiceName: "test-service",
		Endpoint:    "localhost:4317", // no listener needed for setup
	}

	shutdown, err := telemetry.Init(cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	// Shutdown may error (connection refused, no collector running); it must
	// not hang or panic.
	_ = shutdown(ctx)
}
