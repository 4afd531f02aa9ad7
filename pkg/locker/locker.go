// Package locker provides distributed locking for coordinating work across
// service instances, such as the periodic listing refresh.
package locker

import (
	"context"
	"time"
)

// DistributedLocker provides cross-instance mutual exclusion.
// Implementations must be safe for concurrent use.
//
// Typical usage:
//
//	acquired, err := locker.Acquire(ctx, "refresh:lock", interval)
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    return nil // another instance holds it
//	}
//	defer locker.Release(ctx, "refresh:lock")
type DistributedLocker interface {
	// Acquire attempts to take the lock identified by key. Returns true on
	// success, false when another instance holds it. The lock expires on
	// its own after ttl; picking ttl = cooldown period turns the lock into
	// a rate limiter.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release releases the lock identified by key. Calling it without
	// owning the lock is a no-op, not an error.
	Release(ctx context.Context, key string) error
}
