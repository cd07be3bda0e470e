package lock

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrLockUnavailable — сервис блокировок недоступен.
	ErrLockUnavailable = errors.New("lock service unavailable")

	// ErrLockNotHeld — блокировка истекла или перехвачена до Release.
	ErrLockNotHeld = errors.New("lock not held")
)

// DefaultAcquireTimeout — предельное время попытки захвата.
const DefaultAcquireTimeout = 2 * time.Second

// Locker — сервис неблокирующих блокировок.
type Locker interface {
	// TryLock пытается захватить блокировку name на время ttl.
	// acquired=false без ошибки означает, что блокировку держит кто-то другой.
	TryLock(ctx context.Context, name string, ttl time.Duration) (l Lock, acquired bool, err error)
}

// Lock — захваченная блокировка.
type Lock interface {
	// Release освобождает блокировку.
	Release(ctx context.Context) error
}

// WithTimeout ограничивает попытку захвата таймаутом.
func WithTimeout(ctx context.Context, locker Locker, name string, ttl, timeout time.Duration) (Lock, bool, error) {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return locker.TryLock(ctx, name, ttl)
}
