package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eventhub/backend/internal/domain/shared"
)

const (
	defaultLockKeyPrefix = "evh:lock:"
	lockRetryInterval    = 25 * time.Millisecond
	lockReleaseTimeout   = 2 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired holder can never release a lock that has since been re-acquired.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker implements shared.KeyedLocker with SET NX PX.
// This is suitable for deployments with several API instances.
type RedisLocker struct {
	client    redis.UniversalClient
	keyPrefix string
	ownClient bool
}

// NewRedisLocker connects to Redis and verifies the connection
func NewRedisLocker(ctx context.Context, opts *redis.Options) (*RedisLocker, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLocker{client: client, keyPrefix: defaultLockKeyPrefix, ownClient: true}, nil
}

// NewRedisLockerWithClient creates a locker over an existing client.
// The client is not closed by Close.
func NewRedisLockerWithClient(client redis.UniversalClient, keyPrefix string) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = defaultLockKeyPrefix
	}
	return &RedisLocker{client: client, keyPrefix: keyPrefix}
}

// Acquire retries SET NX until it wins, ctx is done, or wait elapses
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl, wait time.Duration) (func(), error) {
	fullKey := l.keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(fullKey, token), nil
		}
		if !time.Now().Before(deadline) {
			return nil, shared.ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *RedisLocker) releaser(fullKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// the caller's ctx may already be canceled when release runs
			ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
			defer cancel()
			_ = releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err()
		})
	}
}

// Ping checks the Redis connection
func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

// Close closes the Redis client when the locker created it
func (l *RedisLocker) Close() error {
	if !l.ownClient {
		return nil
	}
	return l.client.Close()
}

// Ensure RedisLocker implements shared.KeyedLocker
var _ shared.KeyedLocker = (*RedisLocker)(nil)
