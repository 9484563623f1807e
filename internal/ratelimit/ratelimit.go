// Package ratelimit provides a Redis-backed token bucket used to throttle
// application submissions, plus a small distributed lock helper.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/masjidkita/masjidkita/internal/config"
)

// tokenBucketScript refills fractional tokens based on elapsed time and
// spends one if available. KEYS[1] bucket key, ARGV: rate/sec, burst, now
// (unix micros).
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
  ts = now
end

local elapsed = math.max(0, now - ts) / 1000000
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', key, math.ceil(burst / rate) * 2 + 60)
return allowed
`)

// releaseScript deletes the lock only if the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Limiter throttles by key. A disabled limiter admits everything, and Redis
// outages fail open with a logged warning.
type Limiter struct {
	client *redis.Client
	rate   float64
	burst  int
	log    *zap.Logger
}

func NewLimiter(cfg config.Config, log *zap.Logger) *Limiter {
	l := &Limiter{
		rate:  cfg.RateLimit.SubmitRate,
		burst: cfg.RateLimit.SubmitBurst,
		log:   log.Named("ratelimit"),
	}
	if !cfg.RateLimit.Enabled {
		return l
	}
	l.client = redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	return l
}

// Allow reports whether one more event is admitted for the key.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.client == nil {
		return true
	}
	now := time.Now().UnixMicro()
	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{fmt.Sprintf("rl:%s", key)},
		l.rate, l.burst, now,
	).Int()
	if err != nil {
		l.log.Warn("rate limit check failed, failing open", zap.Error(err))
		return true
	}
	return res == 1
}

// Close releases the Redis connection.
func (l *Limiter) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}

// Locker serializes admin bulk operations across instances.
type Locker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewLocker(l *Limiter, log *zap.Logger) *Locker {
	return &Locker{client: l.client, log: log.Named("locker")}
}

// Acquire takes the named lock for ttl and returns the release token. With
// no Redis configured the lock is a no-op.
func (lk *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	if lk.client == nil {
		return "", true, nil
	}
	token := uuid.NewString()
	ok, err := lk.client.SetNX(ctx, "lock:"+name, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release frees the lock if the token still owns it.
func (lk *Locker) Release(ctx context.Context, name, token string) {
	if lk.client == nil || token == "" {
		return
	}
	if err := releaseScript.Run(ctx, lk.client, []string{"lock:" + name}, token).Err(); err != nil {
		lk.log.Warn("lock release failed", zap.String("lock", name), zap.Error(err))
	}
}
