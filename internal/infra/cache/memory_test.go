package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	if err := cache.Set(ctx, "k1", "v1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	value, err := cache.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "v1" {
		t.Fatalf("expected v1, got %q", value)
	}

	if err := cache.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cache.Get(ctx, "k1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after delete, got %v", err)
	}
}

func TestMemory_MissOnUnknownKey(t *testing.T) {
	cache := NewMemory()
	if _, err := cache.Get(context.Background(), "nope"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss, got %v", err)
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	cache := NewMemory()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := cache.Set(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := cache.Get(ctx, "k1"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.Get(ctx, "k1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("expected ErrMiss after expiry, got %v", err)
	}
}

func TestMemory_InvalidateAll(t *testing.T) {
	cache := NewMemory()
	ctx := context.Background()

	_ = cache.Set(ctx, "k1", "v1", 0)
	_ = cache.Set(ctx, "k2", "v2", 0)

	if err := cache.InvalidateAll(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	for _, key := range []string{"k1", "k2"} {
		if _, err := cache.Get(ctx, key); !errors.Is(err, ErrMiss) {
			t.Fatalf("expected %s gone, got %v", key, err)
		}
	}
}
