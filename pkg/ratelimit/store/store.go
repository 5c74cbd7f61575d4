// Package store defines the atomic backend contract the decision engine
// depends on: one scripted charge-and-decide operation, serialized per
// bucket by the backend itself, plus a bulk trim for the cleanup worker.
package store

import "context"

// ChargeInput is the positional argument set the atomic script consumes.
type ChargeInput struct {
	WindowKey        string
	BlockKey         string
	WindowStartMs    int64
	MaxCount         uint32
	NowMs            int64
	Cost             uint32
	ShortTimeoutSecs uint32
	LongTimeoutSecs  uint32
}

// ChargeOutput is the raw result of the atomic script, before the engine
// assembles it into a ratelimit.ChargeResult.
type ChargeOutput struct {
	IsBlocked          bool
	ChargeSuccess      bool
	TotalAfter         uint32
	BlockRemainingSecs uint32
}

// TrimInput names a bucket's window key and the cutoff before which entries
// are expired.
type TrimInput struct {
	WindowKey     string
	WindowStartMs int64
}

// Store is the contract a backend must satisfy: one atomic scripted
// operation per charge, and a best-effort batched trim. Implementations
// MUST NOT read-then-write outside the atomic script, or the block state
// machine races across concurrent callers on the same bucket.
type Store interface {
	// ChargeBucket runs the atomic charge-and-decide operation for a single
	// bucket and returns its raw outcome.
	ChargeBucket(ctx context.Context, in ChargeInput) (ChargeOutput, error)

	// TrimExpired removes window entries older than each input's
	// WindowStartMs. Non-atomic; a space reclaim only, never authoritative
	// for the count.
	TrimExpired(ctx context.Context, inputs []TrimInput) error

	// Close releases any pooled resources.
	Close() error
}
