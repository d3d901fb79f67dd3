package httpx

import (
	"context"
	"time"

	"github.com/dmitrijs2005/shopkeeper/internal/logging"
	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "shopkeeper:ratelimit:"

type redisRateLimiter struct {
	client  redis.Cmdable
	closer  func() error
	logger  logging.Logger
	timeout time.Duration
}

// NewRedisRateLimiter connects to Redis and returns a limiter whose counters
// are shared by every server instance. The limiter fails open when Redis is
// unreachable after construction.
func NewRedisRateLimiter(ctx context.Context, addr, password string, db int, logger logging.Logger) (RateLimiter, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return newRedisRateLimiter(client, client.Close, logger), nil
}

func newRedisRateLimiter(client redis.Cmdable, closer func() error, logger logging.Logger) *redisRateLimiter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &redisRateLimiter{
		client:  client,
		closer:  closer,
		logger:  logger.With("module", "redis_rate_limiter"),
		timeout: 250 * time.Millisecond,
	}
}

func (rl *redisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) RateDecision {
	if limit <= 0 {
		return RateDecision{Allowed: true}
	}
	if window <= 0 {
		window = time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, rl.timeout)
	defer cancel()

	redisKey := redisKeyPrefix + key
	counter, err := rl.client.Incr(ctx, redisKey).Result()
	if err != nil {
		rl.logger.Error(ctx, "redis rate limiter error", "op", "incr", "error", err)
		return RateDecision{Allowed: true}
	}
	if counter == 1 {
		if err := rl.client.Expire(ctx, redisKey, window).Err(); err != nil {
			rl.logger.Error(ctx, "redis rate limiter error", "op", "expire", "error", err)
		}
	}
	ttl, err := rl.client.TTL(ctx, redisKey).Result()
	if err != nil || ttl <= 0 {
		ttl = window
	}
	return RateDecision{
		Allowed:   int(counter) <= limit,
		Count:     int(counter),
		WindowEnd: time.Now().Add(ttl),
	}
}

func (rl *redisRateLimiter) Close() error {
	if rl.closer == nil {
		return nil
	}
	return rl.closer()
}
