package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cmdable interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisLimiter keeps the counters in redis, so the limit holds across
// instances. Same contract as MemoryLimiter, pick one at wiring time.
type RedisLimiter struct {
	rdb    Cmdable
	limit  int
	period time.Duration
}

func NewRedisLimiter(rdb Cmdable, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, limit: limit, period: period}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := l.rdb.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}

	if n == 1 {
		if err := l.rdb.Expire(ctx, "ratelimit:"+key, l.period).Err(); err != nil {
			return false, err
		}
	}

	return n <= int64(l.limit), nil
}
