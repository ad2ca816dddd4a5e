package cache

import (
	"context"
	"sync"
	"time"

	"github.com/eventhub/backend/internal/domain/shared"
)

// lockEntry is one held key
type lockEntry struct {
	token     uint64
	expiresAt time.Time
}

// InMemoryLocker implements shared.KeyedLocker within a single process.
// WARNING: it does not coordinate across instances; the database unique
// constraints remain the last line of defence in that case.
type InMemoryLocker struct {
	mu      sync.Mutex
	entries map[string]lockEntry
	next    uint64
	closed  bool
}

// NewInMemoryLocker creates a new in-memory locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{entries: make(map[string]lockEntry)}
}

// Acquire polls until the key is free or expired, ctx is done, or wait elapses
func (l *InMemoryLocker) Acquire(ctx context.Context, key string, ttl, wait time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		if token, ok := l.tryLock(key, ttl); ok {
			return l.releaser(key, token), nil
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

func (l *InMemoryLocker) tryLock(key string, ttl time.Duration) (uint64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, false
	}
	now := time.Now()
	if e, held := l.entries[key]; held && now.Before(e.expiresAt) {
		return 0, false
	}
	l.next++
	l.entries[key] = lockEntry{token: l.next, expiresAt: now.Add(ttl)}
	return l.next, true
}

func (l *InMemoryLocker) releaser(key string, token uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if e, held := l.entries[key]; held && e.token == token {
				delete(l.entries, key)
			}
		})
	}
}

// Size returns the number of keys currently tracked (for testing/monitoring)
func (l *InMemoryLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close drops all locks; further Acquire calls fail
func (l *InMemoryLocker) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.entries = make(map[string]lockEntry)
	return nil
}

// Ensure InMemoryLocker implements shared.KeyedLocker
var _ shared.KeyedLocker = (*InMemoryLocker)(nil)
