// Package lock defines the named mutual-exclusion primitive used to serialize
// cache loads for a key.
//
// A Locker hands out Lock values by name. Two Locks with the same name, from
// the same Locker or from Lockers sharing a backend, exclude each other. Locks
// are not reentrant.
package lock

import (
	"context"
	"errors"
)

// ErrNotHeld is returned by Unlock when the lock is not held by the caller,
// either because it was never acquired or because ownership was lost.
var ErrNotHeld = errors.New("lock: not held")

type Locker interface {
	NewLock(name string) Lock
}

type Lock interface {
	// Lock blocks until the lock is acquired or ctx is done. In the latter
	// case it returns ctx.Err() (possibly wrapped).
	Lock(ctx context.Context) error
	// Unlock releases the lock.
	Unlock(ctx context.Context) error
	// Name returns the name the lock was created with.
	Name() string
}
