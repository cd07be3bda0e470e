package cache

import (
	"context"
	"errors"
	"testing"
)

// failingStore — HashStore, который всегда возвращает ошибку.
type failingStore struct{}

func (failingStore) HGet(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (failingStore) HSet(context.Context, string, string, string) error {
	return errors.New("connection refused")
}

func TestCache_Key(t *testing.T) {
	c := New(NewMemoryStore(), "igor")
	if got := c.Key("artifactName"); got != "igor:dryrun:artifactName" {
		t.Errorf("expected igor:dryrun:artifactName, got %s", got)
	}
}

func TestCache_DefaultPrefix(t *testing.T) {
	c := New(NewMemoryStore(), "")
	if got := c.Key("a"); got != "igor:dryrun:a" {
		t.Errorf("expected default prefix, got %s", got)
	}
}

func TestCache_UnknownPartitionIsZero(t *testing.T) {
	c := New(NewMemoryStore(), "igor")

	raw, err := c.GetCacheValue(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "0" {
		t.Errorf("expected \"0\", got %q", raw)
	}

	ts, err := c.LastPublish(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != 0 {
		t.Errorf("expected 0, got %d", ts)
	}
}

func TestCache_SetAndGet(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, "igor")
	ctx := context.Background()

	if err := c.SetLastPublish(ctx, "artifactName", 12345); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Проверяем сырой формат в хранилище
	v, found, _ := store.HGet(ctx, "igor:dryrun:artifactName", LastPublishTimestamp)
	if !found || v != "12345" {
		t.Errorf("expected stored 12345, got %q (found=%v)", v, found)
	}

	ts, err := c.LastPublish(ctx, "artifactName")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != 12345 {
		t.Errorf("expected 12345, got %d", ts)
	}
}

func TestCache_CorruptValue(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, "igor")
	ctx := context.Background()

	_ = store.HSet(ctx, c.Key("bad"), LastPublishTimestamp, "not-a-number")

	_, err := c.LastPublish(ctx, "bad")
	if !errors.Is(err, ErrCorruptValue) {
		t.Errorf("expected ErrCorruptValue, got %v", err)
	}
}

func TestCache_StoreUnavailable(t *testing.T) {
	c := New(failingStore{}, "igor")
	ctx := context.Background()

	if _, err := c.LastPublish(ctx, "a"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable on read, got %v", err)
	}
	if err := c.SetLastPublish(ctx, "a", 1); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable on write, got %v", err)
	}
}
