package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/ratelimit"
	memstore "github.com/samir-okafor/quotaguard/pkg/ratelimit/store/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_Period(t *testing.T) {
	cases := map[ratelimit.Unit]time.Duration{
		ratelimit.Secondly: time.Second,
		ratelimit.Minutely: time.Minute,
		ratelimit.Hourly:   time.Hour,
		ratelimit.Daily:    24 * time.Hour,
		ratelimit.Weekly:   7 * 24 * time.Hour,
		ratelimit.Monthly:  30 * 24 * time.Hour,
	}
	for unit, want := range cases {
		assert.Equal(t, want, unit.Period(), "unit %s", unit)
	}
}

func TestFrequency_ZeroCountMeansNeverPermit(t *testing.T) {
	f := ratelimit.Frequency{Unit: ratelimit.Minutely, Count: 0}
	assert.Equal(t, time.Minute, f.Period())
	assert.Equal(t, uint32(0), f.Count)

	catalog := ratelimit.NewCatalog([]ratelimit.LimitView{{Bucket: "z", Freq: f}})
	engine := ratelimit.NewEngine(catalog, memstore.New(), ratelimit.NewStaticBlockPolicy(5*time.Second, 60*time.Second))
	result, err := engine.Charge(context.Background(), "z", 1)
	require.NoError(t, err)
	assert.True(t, result.Blocked)
	assert.Equal(t, ratelimit.DecisionBlock, result.Derive())
}
