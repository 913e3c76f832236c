package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/taskgate/pkg/cryptox"
	"github.com/aussiebroadwan/taskgate/pkg/slogx"
	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

const (
	defaultLockTTL   = 10 * time.Second
	lockPollInitial  = 10 * time.Millisecond
	lockPollMaxDelay = 250 * time.Millisecond
)

var errLockHeld = errors.New("owner lock held")

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is an OwnerLocker shared by every replica pointing at the same
// Redis. Locks are leases: a crashed holder loses the lock after TTL.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	if prefix == "" {
		prefix = "taskgate:owner-lock"
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl}
}

func (l *RedisLocker) key(ownerID string) string {
	return l.prefix + ":" + ownerID
}

func (l *RedisLocker) Lock(ctx context.Context, ownerID string) (func(), error) {
	key := l.key(ownerID)
	log := slogx.FromContext(ctx)
	value, err := cryptox.RandomToken(cryptox.ShortSecretBytes)
	if err != nil {
		return nil, err
	}

	poll := backoff.NewExponentialBackOff()
	poll.InitialInterval = lockPollInitial
	poll.MaxInterval = lockPollMaxDelay

	// Waiting is bounded by ctx, not by the backoff.
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		ok, err := l.client.SetNX(ctx, key, value, l.ttl).Result()
		switch {
		case err != nil:
			return struct{}{}, backoff.Permanent(err)
		case !ok:
			return struct{}{}, errLockHeld
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(poll), backoff.WithMaxElapsedTime(0))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("acquire owner lock: %w", err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// Release on a fresh context so a cancelled request still frees the lock.
			rctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, l.client, []string{key}, value).Err(); err != nil && !errors.Is(err, redis.Nil) {
				log.Warn("failed to release owner lock", "owner_id", ownerID, "error", err)
			}
		})
	}, nil
}
