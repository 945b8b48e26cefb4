package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLock is an in-process DistributedLock for single-replica
// deployments.
type LocalLock struct {
	mu      sync.Mutex
	holders map[string]time.Time // key -> expiry
	now     func() time.Time
}

func NewLocalLock() *LocalLock {
	return &LocalLock{holders: make(map[string]time.Time), now: time.Now}
}

func (l *LocalLock) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiry, held := l.holders[key]; held && now.Before(expiry) {
		return false, nil
	}
	l.holders[key] = now.Add(ttl)
	return true, nil
}

func (l *LocalLock) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.holders, key)
	return nil
}
