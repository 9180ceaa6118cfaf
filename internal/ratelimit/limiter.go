package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config defines how many requests a caller may make within a window.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultConfig allows 30 requests per minute per caller, generous enough
// for one active assessment session.
func DefaultConfig() Config {
	return Config{
		MaxRequests: 30,
		Window:      time.Minute,
	}
}

// Limiter counts requests per caller in Redis using a fixed window.
type Limiter struct {
	rdb    *redis.Client
	config Config
}

func NewLimiter(config Config) *Limiter {
	return &Limiter{
		rdb:    GetRedisClient(),
		config: config,
	}
}

// Allow records one request for the caller and reports whether it fits the
// window. When it does not, retryAfter holds how long the caller should
// wait before trying again.
func (l *Limiter) Allow(ctx context.Context, callerID string) (bool, time.Duration, error) {
	if l == nil || l.rdb == nil {
		return false, 0, fmt.Errorf("Redis client not available")
	}

	key := fmt.Sprintf("rate:api:%s", callerID)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	// Set expiration if first time
	if count == 1 {
		l.rdb.Expire(ctx, key, l.config.Window)
	}

	if count > int64(l.config.MaxRequests) {
		ttl, err := l.rdb.TTL(ctx, key).Result()
		if err != nil || ttl < 0 {
			ttl = l.config.Window
		}
		return false, ttl, nil
	}

	return true, 0, nil
}
