package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sfgs/mail-dispatch/internal/ratelimit"
)

const (
	lockKey        = "dispatch:tick:lock"
	spacingKey     = "dispatch:tick:last"
	defaultLockTTL = 10 * time.Minute
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ ratelimit.TickGuard = (*RedisTickGuard)(nil)

// RedisTickGuard guards dispatch ticks with a distributed lock plus a
// spacing key whose TTL is the configured tick interval. Two ticks never run
// concurrently against the same pending pool, and consecutive ticks are at
// least interval apart.
type RedisTickGuard struct {
	client  *goredis.Client
	lockTTL time.Duration
	token   string
	script  *goredis.Script
}

func NewRedisTickGuard(client *goredis.Client) (*RedisTickGuard, error) {
	return newRedisTickGuard(client, defaultLockTTL)
}

func newRedisTickGuard(client *goredis.Client, lockTTL time.Duration) (*RedisTickGuard, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}

	return &RedisTickGuard{
		client:  client,
		lockTTL: lockTTL,
		token:   uuid.NewString(),
		script:  releaseScript,
	}, nil
}

func (g *RedisTickGuard) Acquire(ctx context.Context, interval time.Duration) (bool, error) {
	if g == nil || g.client == nil {
		return false, fmt.Errorf("tick guard is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Lock TTL caps how long a crashed tick can hold the pool hostage.
	locked, err := g.client.SetNX(ctx, lockKey, g.token, g.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire tick lock: %w", err)
	}
	if !locked {
		return false, nil
	}

	if interval > 0 {
		spaced, err := g.client.SetNX(ctx, spacingKey, g.token, interval).Result()
		if err != nil {
			_ = g.Release(ctx)
			return false, fmt.Errorf("failed to check tick spacing: %w", err)
		}
		if !spaced {
			// Previous tick ran less than interval ago.
			if err := g.Release(ctx); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	return true, nil
}

func (g *RedisTickGuard) Release(ctx context.Context) error {
	if g == nil || g.client == nil {
		return fmt.Errorf("tick guard is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := g.script.Run(ctx, g.client, []string{lockKey}, g.token).Err(); err != nil {
		return fmt.Errorf("failed to release tick lock: %w", err)
	}
	return nil
}
