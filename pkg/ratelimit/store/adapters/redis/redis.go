// Package redis implements the ratelimit store contract against Redis.
//
// Window entries are realized as one sorted-set member per unit of cost, so
// that ZCARD after trimming directly yields the summed cost still inside
// the window without a separate running counter. The block marker is a
// plain string key with a TTL; its presence is the signal, its TTL is the
// remaining block duration.
package redis

import (
	"context"
	"fmt"

	"github.com/samir-okafor/quotaguard/pkg/errors"
	"github.com/samir-okafor/quotaguard/pkg/ratelimit/store"
	goredis "github.com/redis/go-redis/v9"
)

// chargeBucketScript is uploaded once (by name, via go-redis's transparent
// EVALSHA/EVAL fallback) and invoked for every charge thereafter.
//
// KEYS[1] = window_key, KEYS[2] = block_key
// ARGV[1] = window_start_ms, ARGV[2] = max_count, ARGV[3] = now_ms,
// ARGV[4] = cost, ARGV[5] = short_timeout_secs, ARGV[6] = long_timeout_secs
//
// Returns {is_blocked, charge_success, total_after, block_remaining_secs}.
var chargeBucketScript = goredis.NewScript(`
local window_key = KEYS[1]
local block_key = KEYS[2]
local window_start_ms = tonumber(ARGV[1])
local max_count = tonumber(ARGV[2])
local now_ms = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])
local short_timeout = tonumber(ARGV[5])
local long_timeout = tonumber(ARGV[6])

local block_ttl = redis.call('TTL', block_key)
if block_ttl and block_ttl > 0 then
    redis.call('EXPIRE', block_key, long_timeout)
    return {1, 0, 0, long_timeout}
end

local period_secs = math.ceil((now_ms - window_start_ms) / 1000)
if period_secs < 1 then
    period_secs = 1
end

if cost > 0 then
    local seq_key = window_key .. ':seq'
    for i = 1, cost do
        local seq = redis.call('INCR', seq_key)
        redis.call('ZADD', window_key, now_ms, now_ms .. ':' .. seq)
    end
    redis.call('EXPIRE', seq_key, period_secs * 2)
end

redis.call('ZREMRANGEBYSCORE', window_key, '-inf', window_start_ms - 1)
redis.call('EXPIRE', window_key, period_secs * 2)

local total_after = redis.call('ZCARD', window_key)

if total_after > max_count then
    redis.call('SET', block_key, '1', 'EX', short_timeout)
    return {1, 1, total_after, short_timeout}
end

return {0, 1, total_after, 0}
`)

const maxUint32 = 1<<32 - 1

// Store implements store.Store against a Redis (or compatible) Cmdable.
type Store struct {
	client goredis.UniversalClient
}

// New returns a Store bound to client. The charge script is loaded lazily on
// first invocation; go-redis retries as EVAL if the server hasn't cached it.
func New(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

// ChargeBucket runs the atomic charge-and-decide script for a single bucket.
func (s *Store) ChargeBucket(ctx context.Context, in store.ChargeInput) (store.ChargeOutput, error) {
	res, err := chargeBucketScript.Run(ctx, s.client,
		[]string{in.WindowKey, in.BlockKey},
		in.WindowStartMs, in.MaxCount, in.NowMs, in.Cost, in.ShortTimeoutSecs, in.LongTimeoutSecs,
	).Int64Slice()
	if err != nil {
		return store.ChargeOutput{}, errors.Internal("charge_bucket script failed", err)
	}
	if len(res) != 4 {
		return store.ChargeOutput{}, errors.Internal(fmt.Sprintf("charge_bucket returned %d fields, want 4", len(res)), nil)
	}

	total := res[2]
	if total < 0 {
		total = 0
	}
	if total > maxUint32 {
		total = maxUint32
	}

	return store.ChargeOutput{
		IsBlocked:          res[0] == 1,
		ChargeSuccess:      res[1] == 1,
		TotalAfter:         uint32(total),
		BlockRemainingSecs: uint32(clampUint32(res[3])),
	}, nil
}

// TrimExpired issues a ZREMRANGEBYSCORE per input in one pipeline. Failures
// are returned as a single aggregate error; callers (the cleanup worker)
// treat any error as fatal.
func (s *Store) TrimExpired(ctx context.Context, inputs []store.TrimInput) error {
	if len(inputs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, in := range inputs {
		pipe.ZRemRangeByScore(ctx, in.WindowKey, "-inf", fmt.Sprintf("(%d", in.WindowStartMs))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Internal("trim pipeline failed", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func clampUint32(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > maxUint32 {
		return maxUint32
	}
	return v
}

var _ store.Store = (*Store)(nil)
