package lock

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testPool подключается к DB_URL. Без DB_URL тест пропускается.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		t.Skip("DB_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// --- Postgres Locker Tests ---

func TestPostgres_TryLock_Exclusive(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	// Два Locker на одном пуле ведут себя как два экземпляра: разные соединения.
	a, b := NewPostgres(pool), NewPostgres(pool)
	name := "dryrunPollingMonitor." + uuid.NewString()

	l, ok, err := a.TryLock(ctx, name, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock should succeed: ok=%v err=%v", ok, err)
	}

	if _, ok, err := b.TryLock(ctx, name, time.Minute); err != nil || ok {
		t.Errorf("second lock should be refused: ok=%v err=%v", ok, err)
	}

	if err := l.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}

	l2, ok, err := b.TryLock(ctx, name, time.Minute)
	if err != nil || !ok {
		t.Fatalf("lock should be free after release: ok=%v err=%v", ok, err)
	}
	_ = l2.Release(ctx)
}

func TestPostgres_TryLock_Unavailable(t *testing.T) {
	pool := testPool(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := NewPostgres(pool).TryLock(ctx, "p1", time.Minute)
	if ok || !errors.Is(err, ErrLockUnavailable) {
		t.Errorf("expected ErrLockUnavailable, got ok=%v err=%v", ok, err)
	}
}
