package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/adityaaj2003/tunegan/pkg/cache"
	"github.com/adityaaj2003/tunegan/pkg/synth"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{}

	// Stage 1: Compose
	composeStart := time.Now()
	score, composeHit, err := r.ComposeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	result.Score = score
	result.Stats.ComposeTime = time.Since(composeStart)
	result.Stats.NoteCount = len(score.Notes)
	result.CacheInfo.ComposeHit = composeHit

	// Content hash of the score keys the render stage and API responses.
	if data, err := json.Marshal(score); err == nil {
		result.ScoreHash = cache.Hash(data)
	}

	r.Logger.Info("composed score",
		"notes", len(score.Notes),
		"tempo", score.Style.Tempo,
		"duration", result.Stats.ComposeTime)

	// Stage 2: Render
	renderStart := time.Now()
	audio, renderHit, err := r.RenderWithCacheInfo(ctx, score, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Audio = audio
	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.SampleCount = score.Duration * opts.SampleRate
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered audio",
		"format", opts.Format,
		"bytes", len(audio),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComposeWithCacheInfo composes a score with caching and returns cache hit info.
func (r *Runner) ComposeWithCacheInfo(ctx context.Context, opts Options) (*synth.Score, bool, error) {
	if err := opts.ValidateForCompose(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.ScoreKey(opts.Prompt, opts.ScoreKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var score synth.Score
			if err := json.Unmarshal(data, &score); err == nil {
				return &score, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompose
		}
	}

	score, err := synth.Compose(opts.synthParams())
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(score); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLScore)
	}

	return score, false, nil // Cache miss
}

// Compose is a convenience wrapper that discards the cache hit info.
func (r *Runner) Compose(ctx context.Context, opts Options) (*synth.Score, error) {
	score, _, err := r.ComposeWithCacheInfo(ctx, opts)
	return score, err
}

// RenderWithCacheInfo renders audio with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, score *synth.Score, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	scoreData, err := json.Marshal(score)
	if err != nil {
		return nil, false, fmt.Errorf("serialize score for cache key: %w", err)
	}
	cacheKey := r.Keyer.AudioKey(cache.Hash(scoreData), opts.AudioKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			return data, true, nil // Cache hit
		}
	}

	samples := synth.Render(score, opts.SampleRate)
	audio, err := synth.EncodeWAV(samples, opts.SampleRate)
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, cacheKey, audio, cache.TTLAudio)

	return audio, false, nil // Cache miss
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, score *synth.Score, opts Options) ([]byte, error) {
	audio, _, err := r.RenderWithCacheInfo(ctx, score, opts)
	return audio, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
