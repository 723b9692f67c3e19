package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the trailing window, then adds
// the attempt only when the remaining count is below the limit.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= max then
	return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// RedisLimiter shares limiter state between instances through Redis.
// Each key is a sorted set of attempt times in milliseconds.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	now    Clock
}

func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (l *RedisLimiter) WithClock(clock Clock) *RedisLimiter {
	l.now = clock
	return l
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (bool, error) {
	nowMs := l.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	res, err := slidingWindow.Run(ctx, l.client, []string{l.prefix + key},
		nowMs, window.Milliseconds(), max, member).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return res == 1, nil
}
