package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ChargeBucket_UnderLimit(t *testing.T) {
	now := time.Now()
	s := memory.NewWithClock(func() time.Time { return now })

	out, err := s.ChargeBucket(context.Background(), store.ChargeInput{
		WindowKey: "a", BlockKey: "blocked::a",
		WindowStartMs: now.Add(-time.Minute).UnixMilli(),
		MaxCount:      10,
		NowMs:         now.UnixMilli(),
		Cost:          3,
	})
	require.NoError(t, err)
	assert.False(t, out.IsBlocked)
	assert.True(t, out.ChargeSuccess)
	assert.Equal(t, uint32(3), out.TotalAfter)
}

func TestStore_ChargeBucket_OverLimitBlocksThenEscalates(t *testing.T) {
	now := time.Now()
	s := memory.NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	in := store.ChargeInput{
		WindowKey: "a", BlockKey: "blocked::a",
		WindowStartMs:    now.Add(-time.Minute).UnixMilli(),
		MaxCount:         5,
		NowMs:            now.UnixMilli(),
		Cost:             6,
		ShortTimeoutSecs: 5,
		LongTimeoutSecs:  60,
	}
	out, err := s.ChargeBucket(ctx, in)
	require.NoError(t, err)
	assert.True(t, out.IsBlocked)
	assert.Equal(t, uint32(5), out.BlockRemainingSecs)

	out, err = s.ChargeBucket(ctx, in)
	require.NoError(t, err)
	assert.True(t, out.IsBlocked)
	assert.False(t, out.ChargeSuccess)
	assert.Equal(t, uint32(60), out.BlockRemainingSecs)
}

func TestStore_TrimExpired(t *testing.T) {
	now := time.Now()
	s := memory.NewWithClock(func() time.Time { return now })
	ctx := context.Background()

	_, err := s.ChargeBucket(ctx, store.ChargeInput{
		WindowKey: "a", BlockKey: "blocked::a",
		WindowStartMs: now.Add(-time.Minute).UnixMilli(),
		MaxCount:      100,
		NowMs:         now.UnixMilli(),
		Cost:          4,
	})
	require.NoError(t, err)

	err = s.TrimExpired(ctx, []store.TrimInput{{WindowKey: "a", WindowStartMs: now.Add(time.Second).UnixMilli()}})
	require.NoError(t, err)

	out, err := s.ChargeBucket(ctx, store.ChargeInput{
		WindowKey: "a", BlockKey: "blocked::a",
		WindowStartMs: now.Add(-time.Minute).UnixMilli(),
		MaxCount:      100,
		NowMs:         now.UnixMilli(),
		Cost:          1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), out.TotalAfter)
}
