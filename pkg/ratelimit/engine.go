package ratelimit

import (
	"context"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store"
)

// Engine orchestrates a single charge: resolving bucket configuration,
// invoking the atomic store operation, and translating its raw result into
// a typed ChargeResult. The engine keeps no bucket-keyed mutable state;
// per-bucket serialization is entirely the store's responsibility.
type Engine struct {
	catalog *Catalog
	store   store.Store
	policy  BlockPolicy

	// Clock is overridable in tests; defaults to time.Now.
	Clock func() time.Time
}

// NewEngine builds an Engine over catalog and st, using policy to resolve
// block keys and timeouts.
func NewEngine(catalog *Catalog, st store.Store, policy BlockPolicy) *Engine {
	return &Engine{catalog: catalog, store: st, policy: policy, Clock: time.Now}
}

// Charge runs a single charge-and-decide operation for bucket.
func (e *Engine) Charge(ctx context.Context, bucket string, cost uint32) (ChargeResult, error) {
	freq, ok := e.catalog.BucketConfig(bucket)
	if !ok {
		return ChargeResult{}, ErrUnknownBucket(bucket)
	}
	if cost > maxCost {
		return ChargeResult{}, ErrUnreasonableCost(cost)
	}

	period := freq.Period()
	now := e.Clock()
	nowMs := now.UnixMilli()
	windowStartMs := now.Add(-period).UnixMilli()
	windowEndMs := now.Add(period).UnixMilli()

	bp := e.policy.PolicyFor(bucket)

	out, err := e.store.ChargeBucket(ctx, store.ChargeInput{
		WindowKey:        bucket,
		BlockKey:         bp.BlockKey,
		WindowStartMs:    windowStartMs,
		MaxCount:         freq.Count,
		NowMs:            nowMs,
		Cost:             cost,
		ShortTimeoutSecs: uint32(bp.ShortTimeout.Seconds()),
		LongTimeoutSecs:  uint32(bp.LongTimeout.Seconds()),
	})
	if err != nil {
		return ChargeResult{}, err
	}

	result := ChargeResult{
		Bucket:           bucket,
		Blocked:          out.IsBlocked,
		ChargeSuccess:    out.ChargeSuccess,
		MaxQuota:         freq.Count,
		AsOfMs:           nowMs,
		WindowStartMs:    windowStartMs,
		WindowEndMs:      windowEndMs,
		WindowLengthSecs: uint32(period.Seconds()),
	}
	if out.IsBlocked {
		result.BlockedSecs = out.BlockRemainingSecs
	} else {
		result.CurrentCount = out.TotalAfter
		result.HasCurrentCount = true
	}
	return result, nil
}
