package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "ratelimit:"

// slidingWindow trims entries older than the window, then admits the request
// only when fewer than limit remain. Returns {allowed, retry_after_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local counter_key = KEYS[2]
local now = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window_ms)

local count = redis.call('ZCARD', key)
if count < limit then
	local seq = redis.call('INCR', counter_key)
	redis.call('ZADD', key, now, now .. ':' .. seq)
	redis.call('PEXPIRE', key, window_ms)
	redis.call('PEXPIRE', counter_key, window_ms)
	return {1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = 0
if #oldest >= 2 then
	retry = tonumber(oldest[2]) + window_ms - now
end
return {0, retry}
`)

// RateLimiter is a sliding-window limiter over a Redis sorted set.
// Key format: ratelimit:<key>.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow records one request for key and reports whether it fits in the window.
// When refused, retryAfter is how long until the oldest request expires.
func (l *RateLimiter) Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error) {
	redisKey := rateLimitKeyPrefix + key
	now := time.Now().UnixMilli()

	res, err := slidingWindow.Run(ctx, l.client,
		[]string{redisKey, redisKey + ":seq"},
		now, l.window.Milliseconds(), l.limit,
	).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("rate limit script: unexpected result length %d", len(res))
	}

	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}
