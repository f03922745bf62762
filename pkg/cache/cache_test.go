package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	key := StatsKey("0123456789abcdef0123456789abcdef01234567")

	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get before Set: ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Set(ctx, key, []byte(`{"added":3,"removed":1}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v, want hit", ok, err)
	}
	if string(data) != `{"added":3,"removed":1}` {
		t.Errorf("Get = %s, want original payload", data)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Error("Get after Delete: hit, want miss")
	}
	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get expired entry: hit, want miss")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("Get = ok=%v err=%v, want miss", ok, err)
	}
}

func TestStatsKeyDistinct(t *testing.T) {
	a := StatsKey("aaaa")
	b := StatsKey("bbbb")
	if a == b {
		t.Errorf("StatsKey collision: %q", a)
	}
}
