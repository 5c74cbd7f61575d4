// Package memory implements the ratelimit store contract in-process, for
// tests and local development. It is not suitable for horizontal scaling:
// per-bucket serialization is a mutex, not a shared backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store"
)

type windowEntry struct {
	timestampMs int64
}

type bucketState struct {
	mu       sync.Mutex
	entries  []windowEntry
	blockUTC time.Time
	blocked  bool
}

// Store is an in-memory store.Store. Zero value is not usable; use New.
type Store struct {
	mu      sync.Mutex
	buckets map[string]*bucketState
	now     func() time.Time
}

// New returns an empty Store using the real wall clock.
func New() *Store {
	return &Store{buckets: make(map[string]*bucketState), now: time.Now}
}

// NewWithClock returns an empty Store using now for block-expiry checks,
// letting tests control time deterministically.
func NewWithClock(now func() time.Time) *Store {
	return &Store{buckets: make(map[string]*bucketState), now: now}
}

func (s *Store) bucketFor(key string) *bucketState {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[key]
	if !ok {
		b = &bucketState{}
		s.buckets[key] = b
	}
	return b
}

// ChargeBucket reproduces the atomic script's algorithm under a per-bucket
// mutex, giving the same externally observable semantics as the Redis
// adapter without requiring a Redis server.
func (s *Store) ChargeBucket(ctx context.Context, in store.ChargeInput) (store.ChargeOutput, error) {
	b := s.bucketFor(in.WindowKey)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := s.now()

	if b.blocked && b.blockUTC.After(now) {
		b.blockUTC = now.Add(time.Duration(in.LongTimeoutSecs) * time.Second)
		return store.ChargeOutput{
			IsBlocked:          true,
			ChargeSuccess:      false,
			TotalAfter:         0,
			BlockRemainingSecs: in.LongTimeoutSecs,
		}, nil
	}
	b.blocked = false

	for i := uint32(0); i < in.Cost; i++ {
		b.entries = append(b.entries, windowEntry{timestampMs: in.NowMs})
	}

	b.entries = trim(b.entries, in.WindowStartMs)

	total := uint32(len(b.entries))

	if total > in.MaxCount {
		b.blocked = true
		b.blockUTC = now.Add(time.Duration(in.ShortTimeoutSecs) * time.Second)
		return store.ChargeOutput{
			IsBlocked:          true,
			ChargeSuccess:      true,
			TotalAfter:         total,
			BlockRemainingSecs: in.ShortTimeoutSecs,
		}, nil
	}

	return store.ChargeOutput{
		IsBlocked:     false,
		ChargeSuccess: true,
		TotalAfter:    total,
	}, nil
}

// TrimExpired removes expired entries from every named bucket.
func (s *Store) TrimExpired(ctx context.Context, inputs []store.TrimInput) error {
	for _, in := range inputs {
		b := s.bucketFor(in.WindowKey)
		b.mu.Lock()
		b.entries = trim(b.entries, in.WindowStartMs)
		b.mu.Unlock()
	}
	return nil
}

// Close is a no-op; Store holds no external resources.
func (s *Store) Close() error { return nil }

func trim(entries []windowEntry, windowStartMs int64) []windowEntry {
	idx := sort.Search(len(entries), func(i int) bool {
		return entries[i].timestampMs >= windowStartMs
	})
	if idx == 0 {
		return entries
	}
	remaining := make([]windowEntry, len(entries)-idx)
	copy(remaining, entries[idx:])
	return remaining
}

var _ store.Store = (*Store)(nil)
