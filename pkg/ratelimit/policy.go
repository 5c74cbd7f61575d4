package ratelimit

import "time"

// BlockPolicy resolves a bucket name to the key and timeouts the store uses
// to implement the block/unblock state machine. It is injected into the
// decision path so escalation semantics are configurable without changing
// the store script.
type BlockPolicy interface {
	PolicyFor(bucket string) BlockConfig
}

// BlockConfig names the store key and TTLs a bucket's block marker uses.
type BlockConfig struct {
	BlockKey     string
	ShortTimeout time.Duration
	LongTimeout  time.Duration
}

// StaticBlockPolicy applies the same short/long timeout pair to every
// bucket, keying each bucket's block marker as "blocked::" + bucket. The key
// scheme is part of the store contract and must stay stable.
type StaticBlockPolicy struct {
	ShortTimeout time.Duration
	LongTimeout  time.Duration
}

// NewStaticBlockPolicy returns a policy whose LongTimeout is never shorter
// than ShortTimeout: a shorter long timeout is raised to the short one,
// since the escalation rule depends on it.
func NewStaticBlockPolicy(short, long time.Duration) StaticBlockPolicy {
	if long < short {
		long = short
	}
	return StaticBlockPolicy{ShortTimeout: short, LongTimeout: long}
}

func (p StaticBlockPolicy) PolicyFor(bucket string) BlockConfig {
	return BlockConfig{
		BlockKey:     "blocked::" + bucket,
		ShortTimeout: p.ShortTimeout,
		LongTimeout:  p.LongTimeout,
	}
}

var _ BlockPolicy = StaticBlockPolicy{}
