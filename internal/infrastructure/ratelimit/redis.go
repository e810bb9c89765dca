package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Ensure RedisLimiter implements Limiter
var _ Limiter = (*RedisLimiter)(nil)

// RedisLimiter counts requests per key in Redis so the limit holds across
// server instances. On Redis failure it fails open: losing rate limiting is
// preferable to dropping legitimate webhook deliveries.
type RedisLimiter struct {
	client  *redis.Client
	limit   int
	window  time.Duration
	prefix  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisLimiter creates a Redis-backed limiter allowing limit requests per window
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{
		client:  client,
		limit:   limit,
		window:  window,
		prefix:  "ratelimit:",
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Allow reports whether a request for key fits in the current window
func (l *RedisLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("Rate limiter unavailable; allowing request",
			zap.String("key", key),
			zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn("Failed to set rate limit window expiry",
				zap.String("key", key),
				zap.Error(err))
		}
	}
	return count <= int64(l.limit)
}
