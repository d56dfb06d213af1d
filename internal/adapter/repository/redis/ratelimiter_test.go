package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/spendtrack/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*SlidingWindowLimiter, *fakeClock) {
	t.Helper()

	client, _ := newTestRedisClient(t)
	clock := &fakeClock{now: time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)}

	return NewSlidingWindowLimiter(client, limit, window, WithClock(clock.Now)), clock
}

func TestSlidingWindowLimiter_AllowsUpToLimit(t *testing.T) {
	limiter, clock := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "ip:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d", i+1)
		assert.Equal(t, 3, d.Limit)
		assert.Equal(t, 2-i, d.Remaining)
		clock.Advance(time.Second)
	}

	d, err := limiter.Allow(ctx, "ip:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	// oldest entry was 3s ago, so it leaves the window in 57s
	assert.Equal(t, 57*time.Second, d.RetryAfter)
}

func TestSlidingWindowLimiter_RejectedRequestsAreNotCounted(t *testing.T) {
	limiter, clock := newTestLimiter(t, 1, 10*time.Second)
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		d, err = limiter.Allow(ctx, "k")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
	}

	clock.Advance(5 * time.Second)
	d, err = limiter.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "first request after a full window must be admitted")
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(t, 2, time.Minute)
	ctx := context.Background()

	allow := func() bool {
		d, err := limiter.Allow(ctx, "user:u1")
		require.NoError(t, err)
		return d.Allowed
	}

	assert.True(t, allow())
	clock.Advance(30 * time.Second)
	assert.True(t, allow())
	clock.Advance(20 * time.Second)
	assert.False(t, allow())

	// t=60: the first entry leaves the window, the one from t=30 stays
	clock.Advance(10 * time.Second)
	assert.True(t, allow())
	assert.False(t, allow())

	clock.Advance(30 * time.Second)
	assert.True(t, allow())
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "ip:10.0.0.2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "ip:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestSlidingWindowLimiter_SameMillisecond(t *testing.T) {
	limiter, _ := newTestLimiter(t, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Allow(ctx, "burst")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, "burst")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
}

func TestSlidingWindowLimiter_UsesPrefix(t *testing.T) {
	client, mr := newTestRedisClient(t)
	limiter := NewSlidingWindowLimiter(client, 5, time.Minute, WithPrefix("rl:"))

	_, err := limiter.Allow(context.Background(), "ip:1.1.1.1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("rl:ip:1.1.1.1"))
}

func TestSlidingWindowLimiter_Unavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	limiter := NewSlidingWindowLimiter(client, 5, time.Minute)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "k")
	assert.ErrorIs(t, err, domain.ErrRateLimiterUnavailable)
}
