package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var _ PlanCache = (*FileCache)(nil)
var _ PlanCache = (*RedisCache)(nil)

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ai_cache.json")
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	c := NewFileCache(path, 24*time.Hour)
	c.now = func() time.Time { return now }

	if _, ok := c.Get(ctx, "plan", "abc"); ok {
		t.Fatal("empty cache returned a value")
	}
	if err := c.Set(ctx, "plan", "abc", "текст плана"); err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get(ctx, "plan", "abc"); !ok || got != "текст плана" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
	if _, ok := c.Get(ctx, "meal", "abc"); ok {
		t.Error("kinds share keys")
	}

	reopened := NewFileCache(path, 24*time.Hour)
	reopened.now = func() time.Time { return now.Add(time.Hour) }
	if got, ok := reopened.Get(ctx, "plan", "abc"); !ok || got != "текст плана" {
		t.Errorf("Get() after reopen = %q, %v", got, ok)
	}

	reopened.now = func() time.Time { return now.Add(25 * time.Hour) }
	if _, ok := reopened.Get(ctx, "plan", "abc"); ok {
		t.Error("expired entry returned")
	}
}

func TestFileCacheClearOld(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c := NewFileCache(filepath.Join(t.TempDir(), "cache.json"), time.Hour)

	c.now = func() time.Time { return now }
	c.Set(ctx, "plan", "old", "1")
	c.now = func() time.Time { return now.Add(50 * time.Minute) }
	c.Set(ctx, "plan", "new", "2")

	c.now = func() time.Time { return now.Add(70 * time.Minute) }
	removed, err := c.ClearOld(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 || c.Len() != 1 {
		t.Errorf("ClearOld() removed %d, left %d", removed, c.Len())
	}
	if _, ok := c.Get(ctx, "plan", "new"); !ok {
		t.Error("fresh entry removed")
	}
}

func TestFileCacheBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	c := NewFileCache(path, 0)
	if c.Len() != 0 || c.ttl != DefaultTTL {
		t.Errorf("broken file: len %d, ttl %v", c.Len(), c.ttl)
	}
}

func TestKey(t *testing.T) {
	if Key("plan", "x") == Key("meal", "x") {
		t.Error("Key() ignores kind")
	}
	if len(Key("plan", "x")) != 32 {
		t.Errorf("Key() = %q, want md5 hex", Key("plan", "x"))
	}
}
