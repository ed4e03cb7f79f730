package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "vehicle-finance:ratelimit:"

// RedisLimiter is a fixed-window counter shared by every server process that
// points at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// RedisOptions locates the Redis server.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

// NewRedisLimiter connects lazily; the first Allow surfaces connection errors.
func NewRedisLimiter(opts RedisOptions, limit int, window time.Duration) *RedisLimiter {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// windowKey names the counter for key in the window containing t.
func (r *RedisLimiter) windowKey(key string, t time.Time) string {
	return fmt.Sprintf("%s%s:%d", keyPrefix, key, t.UnixNano()/int64(r.window))
}

// Allow increments the counter for the current window and reports whether it
// is still within the limit.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := r.windowKey(key, r.now())

	count, err := r.client.Incr(ctx, windowKey).Result()
	if err != nil {
		return false, fmt.Errorf("incrementing rate limit counter: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, windowKey, r.window).Err(); err != nil {
			return false, fmt.Errorf("setting rate limit expiry: %w", err)
		}
	}
	return count <= r.limit, nil
}

// Ping checks the connection.
func (r *RedisLimiter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (r *RedisLimiter) Close() error {
	return r.client.Close()
}
