package shared

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotAcquired is returned when a keyed lock could not be obtained
// before the caller's wait budget ran out.
var ErrLockNotAcquired = errors.New("lock not acquired")

// KeyedLocker provides mutual exclusion scoped to an arbitrary string key.
// It guards check-then-act sequences such as "find invoice for event, else create".
type KeyedLocker interface {
	// Acquire blocks until the lock for key is held, ctx is done, or wait elapses.
	// The lock expires after ttl even if release is never called.
	// The returned release func is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl, wait time.Duration) (release func(), err error)

	// Close releases resources held by the locker
	Close() error
}

// LockConfig holds defaults for keyed locking
type LockConfig struct {
	// TTL bounds how long a crashed holder can block others
	TTL time.Duration

	// Wait is how long Acquire keeps retrying before ErrLockNotAcquired
	Wait time.Duration
}

// DefaultLockConfig returns the default lock configuration
func DefaultLockConfig() LockConfig {
	return LockConfig{
		TTL:  10 * time.Second,
		Wait: 5 * time.Second,
	}
}
