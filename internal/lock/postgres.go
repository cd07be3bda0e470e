package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres — Locker на session-level advisory locks.
//
// Блокировка привязана к соединению: оно удерживается из пула до Release.
// ttl не применяется — при падении процесса соединение закрывается
// и PostgreSQL снимает блокировку сам.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres создаёт Postgres locker.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// TryLock вызывает pg_try_advisory_lock(hashtext(name)).
func (p *Postgres) TryLock(ctx context.Context, name string, _ time.Duration) (Lock, bool, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("%w: acquire conn: %v", ErrLockUnavailable, err)
	}

	var ok bool
	if err := conn.QueryRow(ctx, "select pg_try_advisory_lock(hashtext($1))", name).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("%w: try advisory lock: %v", ErrLockUnavailable, err)
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}

	return &postgresLock{conn: conn, name: name}, true, nil
}

type postgresLock struct {
	conn *pgxpool.Conn
	name string
}

// Release вызывает pg_advisory_unlock и возвращает соединение в пул.
func (l *postgresLock) Release(ctx context.Context) error {
	defer l.conn.Release()

	var ok bool
	if err := l.conn.QueryRow(ctx, "select pg_advisory_unlock(hashtext($1))", l.name).Scan(&ok); err != nil {
		return fmt.Errorf("advisory unlock %s: %w", l.name, err)
	}
	if !ok {
		return fmt.Errorf("advisory unlock %s: %w", l.name, ErrLockNotHeld)
	}
	return nil
}
