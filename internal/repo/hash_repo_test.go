package repo

import (
	"context"
	"os"
	"testing"

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

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return pool
}

// testKey возвращает уникальный ключ и удаляет его строки после теста.
func testKey(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	key := "test:dryrun:" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM dryrun_hash WHERE key = $1`, key)
	})
	return key
}

// --- HashRepo Tests ---

func TestHashRepo_HGet_Missing(t *testing.T) {
	pool := testPool(t)
	r := NewHashRepo(pool)

	v, found, err := r.HGet(context.Background(), testKey(t, pool), "lastPublishTimestamp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || v != "" {
		t.Errorf("expected not found, got %q found=%v", v, found)
	}
}

func TestHashRepo_HSet_Upsert(t *testing.T) {
	pool := testPool(t)
	r := NewHashRepo(pool)
	ctx := context.Background()
	key := testKey(t, pool)

	if err := r.HSet(ctx, key, "lastPublishTimestamp", "1"); err != nil {
		t.Fatalf("first hset: %v", err)
	}
	if err := r.HSet(ctx, key, "lastPublishTimestamp", "2"); err != nil {
		t.Fatalf("second hset: %v", err)
	}

	v, found, err := r.HGet(ctx, key, "lastPublishTimestamp")
	if err != nil || !found || v != "2" {
		t.Errorf("expected 2, got %q found=%v err=%v", v, found, err)
	}

	var rows int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM dryrun_hash WHERE key = $1`, key).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("upsert should keep one row, got %d", rows)
	}
}

func TestHashRepo_FieldsIndependent(t *testing.T) {
	pool := testPool(t)
	r := NewHashRepo(pool)
	ctx := context.Background()
	key := testKey(t, pool)

	_ = r.HSet(ctx, key, "a", "1")

	if _, found, _ := r.HGet(ctx, key, "b"); found {
		t.Error("field b should not exist")
	}
}
