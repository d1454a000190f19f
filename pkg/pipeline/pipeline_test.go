package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/adityaaj2003/tunegan/pkg/cache"
)

func testRunner(t *testing.T) *Runner {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(fc, nil, nil)
}

func TestExecute(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Prompt:   "calm piano",
		Duration: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.Score == nil || len(result.Score.Notes) == 0 {
		t.Error("expected a composed score with notes")
	}
	if result.ScoreHash == "" {
		t.Error("expected a score hash")
	}
	if !strings.HasPrefix(string(result.Audio), "RIFF") {
		t.Error("audio should be a WAV file")
	}
	if result.CacheInfo.ComposeHit || result.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
	if result.Stats.NoteCount != len(result.Score.Notes) {
		t.Error("stats note count mismatch")
	}
}

func TestExecuteCaching(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	opts := Options{Prompt: "upbeat dance", Duration: 2, Seed: 99}
	ctx := context.Background()

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ComposeHit {
		t.Error("second run should hit the score cache")
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the audio cache")
	}
	if string(first.Audio) != string(second.Audio) {
		t.Error("cached audio should match the original")
	}

	// Refresh bypasses caches but produces identical output.
	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.ComposeHit || third.CacheInfo.RenderHit {
		t.Error("refresh run should not hit caches")
	}
	if string(first.Audio) != string(third.Audio) {
		t.Error("refreshed output should be deterministic")
	}
}

func TestExecuteNullCache(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{Prompt: "jazz trio", Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Audio) == 0 {
		t.Error("expected audio output without a cache backend")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	tests := []struct {
		name string
		opts Options
	}{
		{"empty prompt", Options{}},
		{"duration too long", Options{Prompt: "x", Duration: 99}},
		{"bad format", Options{Prompt: "x", Duration: 2, Format: "mp3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Execute(context.Background(), tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestComposeStageIndependent(t *testing.T) {
	r := testRunner(t)
	defer r.Close()

	ctx := context.Background()
	opts := Options{Prompt: "ambient pads", Duration: 2}

	score, err := r.Compose(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}

	audio, err := r.Render(ctx, score, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(audio), "RIFF") {
		t.Error("rendered audio should be a WAV file")
	}
}
