package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/spendtrack/internal/domain"
)

// slidingWindowScript keeps one sorted-set member per admitted request, scored
// by its arrival time in milliseconds. Entries at or before now-window are
// dropped before counting, so a request exactly one window after the oldest
// admitted one is allowed again.
//
// Returns {allowed, count, oldestScore}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, count, tonumber(oldest[2])}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)

return {1, count + 1, 0}
`)

// SlidingWindowLimiter implements usecase.RateLimiter over a Redis sorted set.
// All instances sharing a Redis see the same counters.
type SlidingWindowLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// LimiterOption configures a SlidingWindowLimiter.
type LimiterOption func(*SlidingWindowLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *SlidingWindowLimiter) { l.now = now }
}

// WithPrefix namespaces limiter keys.
func WithPrefix(prefix string) LimiterOption {
	return func(l *SlidingWindowLimiter) { l.prefix = prefix }
}

// NewSlidingWindowLimiter allows at most limit requests per key in any window.
func NewSlidingWindowLimiter(client *redis.Client, limit int, window time.Duration, opts ...LimiterOption) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow records a request for key and reports whether it fits in the window.
// Rejected requests are not recorded.
func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (domain.RateLimitDecision, error) {
	now := l.now()
	nowMs := now.UnixMilli()
	windowMs := l.window.Milliseconds()

	// members only need to be unique; the score carries the time
	member := ulid.Make()

	res, err := slidingWindowScript.Run(ctx, l.client, []string{l.prefix + key},
		nowMs, windowMs, l.limit, member.String()).Int64Slice()
	if err != nil {
		return domain.RateLimitDecision{}, fmt.Errorf("%w: %w", domain.ErrRateLimiterUnavailable, err)
	}
	if len(res) != 3 {
		return domain.RateLimitDecision{}, fmt.Errorf("%w: unexpected script reply %v", domain.ErrRateLimiterUnavailable, res)
	}

	decision := domain.RateLimitDecision{
		Allowed:   res[0] == 1,
		Limit:     l.limit,
		Remaining: max(l.limit-int(res[1]), 0),
	}

	if !decision.Allowed {
		retry := time.Duration(res[2]+windowMs-nowMs) * time.Millisecond
		decision.RetryAfter = max(retry, time.Millisecond)
	}

	return decision, nil
}
