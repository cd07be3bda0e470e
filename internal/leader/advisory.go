package leader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osoriano/spinnaker-dry-run-plugins/internal/domain"
)

// DefaultLockKey — ключ advisory lock лидера планировщика.
const DefaultLockKey int64 = 424242

const defaultCheckInterval = 5 * time.Second

// session — соединение, на котором удерживается блокировка лидера.
type session interface {
	TryLock(ctx context.Context, key int64) (bool, error)
	Ping(ctx context.Context) error
	Unlock(ctx context.Context, key int64) error
	Close()
}

// Advisory — выборы лидера через pg_try_advisory_lock.
type Advisory struct {
	connect  func(ctx context.Context) (session, error)
	key      int64
	interval time.Duration
	logger   *slog.Logger
}

// NewAdvisory создаёт Advisory поверх пула. key == 0 — DefaultLockKey.
func NewAdvisory(pool *pgxpool.Pool, key int64, interval time.Duration, logger *slog.Logger) *Advisory {
	return newAdvisory(func(ctx context.Context) (session, error) {
		conn, err := pool.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		return &pgSession{conn: conn}, nil
	}, key, interval, logger)
}

func newAdvisory(connect func(ctx context.Context) (session, error), key int64, interval time.Duration, logger *slog.Logger) *Advisory {
	if key == 0 {
		key = DefaultLockKey
	}
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisory{
		connect:  connect,
		key:      key,
		interval: interval,
		logger:   logger.With("component", "leader"),
	}
}

// Run запускает выборы и возвращает канал сигналов.
// Канал закрывается после отмены ctx; блокировка при этом освобождается.
func (a *Advisory) Run(ctx context.Context) <-chan domain.StatusChange {
	out := make(chan domain.StatusChange, 1)

	go func() {
		defer close(out)

		current := domain.InstanceStatusUnknown
		var sess session

		emit := func(next domain.InstanceStatus) {
			if next == current {
				return
			}
			change := domain.StatusChange{Previous: current, Current: next}
			current = next
			select {
			case out <- change:
			case <-ctx.Done():
			}
		}

		defer func() {
			if sess != nil {
				unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := sess.Unlock(unlockCtx, a.key); err != nil {
					a.logger.Warn("failed to release leader lock", "error", err)
				}
				sess.Close()
			}
		}()

		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		for {
			sess = a.check(ctx, sess, emit)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}

// check пытается стать лидером или подтверждает лидерство.
func (a *Advisory) check(ctx context.Context, sess session, emit func(domain.InstanceStatus)) session {
	if sess != nil {
		if err := sess.Ping(ctx); err != nil {
			a.logger.Warn("leader connection lost", "error", err)
			sess.Close()
			emit(domain.InstanceStatusOutOfService)
			return nil
		}
		return sess
	}

	s, err := a.connect(ctx)
	if err != nil {
		a.logger.Warn("leader election: connect failed", "error", err)
		emit(domain.InstanceStatusOutOfService)
		return nil
	}

	ok, err := s.TryLock(ctx, a.key)
	if err != nil {
		a.logger.Warn("leader election: lock error", "error", err)
		s.Close()
		emit(domain.InstanceStatusOutOfService)
		return nil
	}
	if !ok {
		// Лидер — другой экземпляр
		s.Close()
		emit(domain.InstanceStatusOutOfService)
		return nil
	}

	a.logger.Info("acquired leadership", "lock_key", a.key)
	emit(domain.InstanceStatusUp)
	return s
}

// pgSession — session на соединении пула.
type pgSession struct {
	conn *pgxpool.Conn
}

func (s *pgSession) TryLock(ctx context.Context, key int64) (bool, error) {
	var ok bool
	if err := s.conn.QueryRow(ctx, "select pg_try_advisory_lock($1)", key).Scan(&ok); err != nil {
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	return ok, nil
}

func (s *pgSession) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *pgSession) Unlock(ctx context.Context, key int64) error {
	_, err := s.conn.Exec(ctx, "select pg_advisory_unlock($1)", key)
	return err
}

func (s *pgSession) Close() {
	s.conn.Release()
}
