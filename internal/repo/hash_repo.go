package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HashRepo — хранилище key → (field → value) в PostgreSQL.
//
// Реализует cache.HashStore.
type HashRepo struct {
	pool *pgxpool.Pool
}

// NewHashRepo создаёт новый HashRepo.
func NewHashRepo(pool *pgxpool.Pool) *HashRepo {
	return &HashRepo{pool: pool}
}

// HGet возвращает значение поля.
func (r *HashRepo) HGet(ctx context.Context, key, field string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM dryrun_hash WHERE key = $1 AND field = $2`,
		key, field,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select hash field: %w", err)
	}
	return value, true, nil
}

// HSet записывает значение поля (upsert).
func (r *HashRepo) HSet(ctx context.Context, key, field, value string) error {
	query := `
		INSERT INTO dryrun_hash (key, field, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key, field)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, key, field, value); err != nil {
		return fmt.Errorf("upsert hash field: %w", err)
	}
	return nil
}
