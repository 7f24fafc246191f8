package ports

import (
	"context"
	"time"
)

// UnlockFunc releases an acquired lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines distributed concurrency control for session access.
// The session manager uses it to coordinate replicas that share a store.
type Locker interface {
	// Lock acquires a lock for the given key (typically a session ID),
	// blocking until acquired or the context is canceled. The returned
	// UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
