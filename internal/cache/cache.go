package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// LastPublishTimestamp — имя поля с timestamp последней публикации.
const LastPublishTimestamp = "lastPublishTimestamp"

// DefaultPrefix — namespace-префикс ключей по умолчанию.
const DefaultPrefix = "igor"

// HashStore — минимальное key → (field → value) хранилище.
//
// Реализации: MemoryStore, RedisStore, repo.HashRepo.
type HashStore interface {
	// HGet возвращает значение поля. found=false, если поля нет.
	HGet(ctx context.Context, key, field string) (value string, found bool, err error)

	// HSet записывает значение поля.
	HSet(ctx context.Context, key, field, value string) error
}

// Cache — хранилище timestamp последней публикации партиций.
//
// Cache не кэширует значения в памяти: каждый вызов идёт в HashStore.
type Cache struct {
	store  HashStore
	prefix string
}

// New создаёт Cache. Пустой prefix заменяется на DefaultPrefix.
func New(store HashStore, prefix string) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{store: store, prefix: prefix}
}

// Key возвращает ключ хранилища для партиции.
func (c *Cache) Key(partition string) string {
	return strings.Join([]string{c.prefix, "dryrun", partition}, ":")
}

// LastPublish возвращает timestamp последней публикации (ms).
// Для неизвестной партиции возвращает 0.
func (c *Cache) LastPublish(ctx context.Context, partition string) (int64, error) {
	raw, err := c.GetCacheValue(ctx, partition)
	if err != nil {
		return 0, err
	}

	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %s=%q", ErrStoreUnavailable, ErrCorruptValue, c.Key(partition), raw)
	}
	return ts, nil
}

// SetLastPublish записывает timestamp последней публикации (ms).
func (c *Cache) SetLastPublish(ctx context.Context, partition string, ts int64) error {
	return c.SetCacheValue(ctx, partition, strconv.FormatInt(ts, 10))
}

// GetCacheValue возвращает сырое значение поля; "0", если поля нет.
func (c *Cache) GetCacheValue(ctx context.Context, partition string) (string, error) {
	value, found, err := c.store.HGet(ctx, c.Key(partition), LastPublishTimestamp)
	if err != nil {
		return "", fmt.Errorf("%w: hget %s: %v", ErrStoreUnavailable, c.Key(partition), err)
	}
	if !found {
		return "0", nil
	}
	return value, nil
}

// SetCacheValue записывает сырое значение поля.
func (c *Cache) SetCacheValue(ctx context.Context, partition, value string) error {
	if err := c.store.HSet(ctx, c.Key(partition), LastPublishTimestamp, value); err != nil {
		return fmt.Errorf("%w: hset %s: %v", ErrStoreUnavailable, c.Key(partition), err)
	}
	return nil
}
