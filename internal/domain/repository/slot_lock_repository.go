package repository

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned when another request holds the lock
var ErrLockHeld = errors.New("lock is held by another request")

// SlotLocker serializes booking attempts for the same service and date
type SlotLocker interface {
	// Acquire returns a release func on success, ErrLockHeld if the key is taken.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}
