// Package lock serializes mutations per key (one session's cart and wishlist).
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
)

// Locker grants exclusive ownership of a key until unlock is called.
// Lock blocks until the key is free or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// SessionKey is the lock key shared by every mutation of one session.
func SessionKey(sessionID string) string {
	return "session:" + sessionID
}

// busy maps a wait that ran out of time to domain.ErrBusy.
func busy(key string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("lock %s: %w", key, domain.ErrBusy)
	}
	return fmt.Errorf("lock %s: %w", key, err)
}

// Acquire locks the session key, waiting at most timeout. The returned
// unlock stays valid after the wait budget elapses.
func Acquire(ctx context.Context, l Locker, sessionID string, timeout time.Duration) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return l.Lock(waitCtx, SessionKey(sessionID))
}
