package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// BuildLocker keeps build cycles from running concurrently, within one
// process or across replicas sharing a backend.
type BuildLocker interface {
	// Lock acquires the lock for key without waiting. It fails with an error
	// matching domain.ErrBuildInProgress when another holder has it.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
