package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

// --- RedisStore Tests ---

func TestRedisStore_HGet_Missing(t *testing.T) {
	s, _ := newTestRedisStore(t)

	v, found, err := s.HGet(context.Background(), "igor:dryrun:a", LastPublishTimestamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found || v != "" {
		t.Errorf("expected not found, got %q found=%v", v, found)
	}
}

func TestRedisStore_HSet_RoundTrip(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.HSet(ctx, "igor:dryrun:a", LastPublishTimestamp, "1674648000000"); err != nil {
		t.Fatalf("hset: %v", err)
	}

	v, found, err := s.HGet(ctx, "igor:dryrun:a", LastPublishTimestamp)
	if err != nil || !found || v != "1674648000000" {
		t.Errorf("expected 1674648000000, got %q found=%v err=%v", v, found, err)
	}

	// Данные лежат в Redis hash в исходной раскладке.
	if got := mr.HGet("igor:dryrun:a", LastPublishTimestamp); got != "1674648000000" {
		t.Errorf("unexpected raw hash value %q", got)
	}
}

func TestRedisStore_Cache(t *testing.T) {
	s, mr := newTestRedisStore(t)
	c := New(s, "igor")
	ctx := context.Background()

	if ts, err := c.LastPublish(ctx, "a"); err != nil || ts != 0 {
		t.Fatalf("unknown partition: ts=%d err=%v", ts, err)
	}
	if err := c.SetLastPublish(ctx, "a", 42); err != nil {
		t.Fatal(err)
	}
	if ts, _ := c.LastPublish(ctx, "a"); ts != 42 {
		t.Errorf("expected 42, got %d", ts)
	}

	mr.HSet("igor:dryrun:b", LastPublishTimestamp, "not-a-number")
	if _, err := c.LastPublish(ctx, "b"); !errors.Is(err, ErrCorruptValue) {
		t.Errorf("expected ErrCorruptValue, got %v", err)
	}
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()

	c := New(s, "igor")
	if _, err := c.LastPublish(context.Background(), "a"); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
