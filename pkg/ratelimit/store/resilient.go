package store

import (
	"context"

	"github.com/samir-okafor/quotaguard/pkg/resilience"
)

// ResilientStore wraps a Store with a circuit breaker, so a flapping backend
// fails fast instead of piling up latency on every caller.
//
// ChargeBucket is never retried here: a charge is not idempotent (a retried
// call against a backend that actually applied the first one would debit
// the window twice), and the engine's own error-handling policy reports
// store errors to the caller as-is rather than retrying them locally. Only
// TrimExpired, whose repetition is a documented no-op, goes through the
// retry policy as well as the breaker.
type ResilientStore struct {
	next  Store
	cb    *resilience.CircuitBreaker
	retry resilience.RetryConfig
}

// Resilient wraps next with cbCfg's circuit breaker and retryCfg's retry
// policy (retry applies to TrimExpired only).
func Resilient(next Store, cbCfg resilience.CircuitBreakerConfig, retryCfg resilience.RetryConfig) *ResilientStore {
	return &ResilientStore{
		next:  next,
		cb:    resilience.NewCircuitBreaker(cbCfg),
		retry: retryCfg,
	}
}

func (s *ResilientStore) ChargeBucket(ctx context.Context, in ChargeInput) (ChargeOutput, error) {
	var out ChargeOutput
	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.next.ChargeBucket(ctx, in)
		return err
	})
	return out, err
}

func (s *ResilientStore) TrimExpired(ctx context.Context, inputs []TrimInput) error {
	return resilience.RetryWithCircuitBreaker(ctx, s.cb, s.retry, func(ctx context.Context) error {
		return s.next.TrimExpired(ctx, inputs)
	})
}

func (s *ResilientStore) Close() error { return s.next.Close() }

var _ Store = (*ResilientStore)(nil)
