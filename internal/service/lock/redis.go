package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisLockPrefix  = "lock:"
	defaultLockTTL   = 30 * time.Second
	minRetryInterval = 10 * time.Millisecond
	maxRetryInterval = 200 * time.Millisecond
	unlockTimeout    = 2 * time.Second
)

// compare-and-delete so a holder whose lease expired cannot free someone else's lock.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared across API replicas. The lease expires after ttl
// if the holder dies without unlocking.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := redisLockPrefix + key
	token := uuid.NewString()
	wait := minRetryInterval

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, busy(key, ctx.Err())
			}
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, busy(key, ctx.Err())
		case <-timer.C:
		}
		wait *= 2
		if wait > maxRetryInterval {
			wait = maxRetryInterval
		}
	}

	return func() {
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), unlockTimeout)
		defer cancel()
		_ = unlockScript.Run(unlockCtx, r.client, []string{redisKey}, token).Err() //nolint
	}, nil
}
