package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(t *testing.T, capacity int, refill time.Duration) (*MemoryLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	limiter := NewMemoryLimiter(capacity, refill)
	limiter.now = clock.Now
	t.Cleanup(func() { _ = limiter.Close() })
	return limiter, clock
}

func TestMemoryLimiterExhaustsAndRefills(t *testing.T) {
	limiter, clock := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}
	ok, _ := limiter.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "fourth request within the window is denied")

	other, _ := limiter.Allow(ctx, "10.0.0.2")
	assert.True(t, other, "clients are limited independently")

	clock.Advance(59 * time.Second)
	ok, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.False(t, ok, "no partial refill")

	clock.Advance(time.Second)
	ok, _ = limiter.Allow(ctx, "10.0.0.1")
	assert.True(t, ok, "refilled after the window")
}

func TestMemoryLimiterZeroCapacityDeniesAll(t *testing.T) {
	limiter, _ := newTestLimiter(t, 0, time.Minute)
	ok, err := limiter.Allow(context.Background(), "client")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLimiterCleanupDropsIdleClients(t *testing.T) {
	limiter, clock := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	_, _ = limiter.Allow(ctx, "idle")
	clock.Advance(30 * time.Minute)
	_, _ = limiter.Allow(ctx, "active")
	clock.Advance(31 * time.Minute)

	limiter.cleanup()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.clients, "idle")
	assert.Contains(t, limiter.clients, "active")
}

func TestMemoryLimiterConcurrentAllow(t *testing.T) {
	limiter, _ := newTestLimiter(t, 50, time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow(context.Background(), "shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestMemoryLimiterCloseIsIdempotent(t *testing.T) {
	limiter := NewMemoryLimiter(1, time.Second)
	assert.NoError(t, limiter.Close())
	assert.NoError(t, limiter.Close())
}

func TestRedisLimiterWindowKey(t *testing.T) {
	limiter := NewRedisLimiter(RedisOptions{Address: "127.0.0.1:6379"}, 10, time.Minute)
	defer func() { _ = limiter.Close() }()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	first := limiter.windowKey("10.0.0.1", start)

	assert.Equal(t, first, limiter.windowKey("10.0.0.1", start.Add(59*time.Second)))
	assert.NotEqual(t, first, limiter.windowKey("10.0.0.1", start.Add(time.Minute)))
	assert.NotEqual(t, first, limiter.windowKey("10.0.0.2", start))
	assert.Contains(t, first, "vehicle-finance:ratelimit:10.0.0.1:")
}

func TestRedisLimiterUnreachableServer(t *testing.T) {
	limiter := NewRedisLimiter(RedisOptions{Address: "127.0.0.1:1"}, 10, time.Minute)
	defer func() { _ = limiter.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := limiter.Allow(ctx, "client")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, limiter.Ping(ctx))
}

func newTestRedisLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis, *fakeClock) {
	t.Helper()
	server := miniredis.RunT(t)
	limiter := NewRedisLimiter(RedisOptions{Address: server.Addr()}, limit, window)
	t.Cleanup(func() { _ = limiter.Close() })

	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	limiter.now = clock.Now
	return limiter, server, clock
}

func TestRedisLimiterCountsWithinWindow(t *testing.T) {
	limiter, server, clock := newTestRedisLimiter(t, 3, time.Minute)
	ctx := context.Background()
	require.NoError(t, limiter.Ping(ctx))

	var results []bool
	for i := 0; i < 5; i++ {
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		results = append(results, ok)
	}
	assert.Equal(t, []bool{true, true, true, false, false}, results)

	key := limiter.windowKey("10.0.0.1", clock.Now())
	count, err := server.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "5", count)

	ok, err := limiter.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "clients are counted separately")
}

func TestRedisLimiterExpirySetOnFirstHit(t *testing.T) {
	limiter, server, clock := newTestRedisLimiter(t, 10, time.Minute)
	ctx := context.Background()
	key := limiter.windowKey("client", clock.Now())

	_, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, server.TTL(key))

	server.FastForward(20 * time.Second)
	_, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.Equal(t, 40*time.Second, server.TTL(key), "later hits keep the original expiry")

	server.FastForward(40 * time.Second)
	assert.False(t, server.Exists(key))
}

func TestRedisLimiterNextWindowAllowsAgain(t *testing.T) {
	limiter, _, clock := newTestRedisLimiter(t, 1, time.Minute)
	ctx := context.Background()

	ok, err := limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.False(t, ok)

	clock.Advance(time.Minute)
	ok, err = limiter.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, ok)
}
