package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/dig/pkg/domain"
	"github.com/aretw0/dig/pkg/ports"
)

// Locker implements ports.BuildLocker for a single process.
// The ttl is ignored: a lock is held until its UnlockFunc runs.
type Locker struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocker creates an empty locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]bool)}
}

// Lock acquires key or fails with domain.ErrBuildInProgress.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, domain.ErrBuildInProgress
	}
	l.held[key] = true

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}
