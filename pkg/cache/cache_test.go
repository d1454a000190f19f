package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("hello"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, hit, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if string(data) != "hello" {
		t.Errorf("Get = %q, want %q", data, "hello")
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("expected cache miss for unknown key")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "short", []byte("data"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", []byte("data"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted key should be a miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestNullCacheNeverStores(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("data"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("null cache should never hit")
	}
}

func TestDefaultKeyerStability(t *testing.T) {
	k := NewDefaultKeyer()

	opts := ScoreKeyOpts{Duration: 10, Seed: 42, TopK: 250}
	a := k.ScoreKey("lofi chill beats", opts)
	b := k.ScoreKey("lofi chill beats", opts)
	if a != b {
		t.Error("identical inputs should produce identical keys")
	}

	c := k.ScoreKey("upbeat jazz", opts)
	if a == c {
		t.Error("different prompts should produce different keys")
	}

	d := k.ScoreKey("lofi chill beats", ScoreKeyOpts{Duration: 20, Seed: 42, TopK: 250})
	if a == d {
		t.Error("different durations should produce different keys")
	}
}

func TestKeyerPrefixes(t *testing.T) {
	k := NewDefaultKeyer()

	tests := []struct {
		key    string
		prefix string
	}{
		{k.HTTPKey("pypi", "requests"), "http:"},
		{k.ScoreKey("prompt", ScoreKeyOpts{}), "score:"},
		{k.AudioKey("abc123", AudioKeyOpts{Format: "wav"}), "audio:"},
	}
	for _, tt := range tests {
		if len(tt.key) < len(tt.prefix) || tt.key[:len(tt.prefix)] != tt.prefix {
			t.Errorf("key %q missing prefix %q", tt.key, tt.prefix)
		}
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("data"))
	if len(h) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("data")) {
		t.Error("Hash should be deterministic")
	}
	if h == Hash([]byte("other")) {
		t.Error("different inputs should hash differently")
	}
}
