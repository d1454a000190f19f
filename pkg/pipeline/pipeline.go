// Package pipeline provides the core generation pipeline for TuneGAN.
//
// This package implements the complete compose → render pipeline that can be
// used by CLI, API, and worker components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Compose: Interpret the text prompt and sample a note sequence (score)
//  2. Render: Synthesize the score into an audio artifact (WAV)
//
// Each stage can be run independently or as part of the complete pipeline.
// Stage outputs are cached independently: a composed score survives
// render-parameter changes, and rendered audio is keyed by the score's
// content hash.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Prompt:   "lofi beats with vinyl crackle",
//	    Duration: 10,
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	wav := result.Audio
//
// Run individual stages:
//
//	// Compose only
//	score, err := runner.Compose(ctx, opts)
//
//	// Render an existing score
//	audio, err := runner.Render(ctx, score, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/adityaaj2003/tunegan/pkg/cache"
	"github.com/adityaaj2003/tunegan/pkg/synth"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

// Format constants for output formats.
const (
	FormatWAV = "wav"
)

// ValidFormats is the set of supported audio output formats.
var ValidFormats = map[string]bool{
	FormatWAV: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Compose options
	Prompt   string `json:"prompt"`
	Duration int    `json:"duration,omitempty"` // seconds
	Seed     uint64 `json:"seed,omitempty"`     // 0 derives the seed from the prompt
	TopK     int    `json:"top_k,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"` // bypass caches and recompute

	// Render options
	SampleRate int    `json:"sample_rate,omitempty"` // Hz
	Format     string `json:"format,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Score is the composed note sequence.
	Score *synth.Score

	// ScoreHash is the content hash of the serialized score.
	ScoreHash string

	// Audio contains the encoded audio artifact.
	Audio []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NoteCount   int
	SampleCount int
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ComposeHit bool // Whether the score came from cache
	RenderHit  bool // Whether the audio artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an audio format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be: wav)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCompose checks required fields for composition.
func (o *Options) ValidateForCompose() error {
	params := o.synthParams()
	if err := params.Validate(); err != nil {
		return err
	}

	// Pull back the defaults Validate applied so cache keys are stable.
	o.Duration = params.Duration
	o.Seed = params.Seed
	o.TopK = params.TopK

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.SampleRate == 0 {
		o.SampleRate = synth.DefaultSampleRate
	}
	if o.Format == "" {
		o.Format = FormatWAV
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormat(o.Format)
}

// ScoreKeyOpts returns cache key options for score composition.
func (o *Options) ScoreKeyOpts() cache.ScoreKeyOpts {
	return cache.ScoreKeyOpts{
		Duration: o.Duration,
		Seed:     o.Seed,
		TopK:     o.TopK,
	}
}

// AudioKeyOpts returns cache key options for audio rendering.
func (o *Options) AudioKeyOpts() cache.AudioKeyOpts {
	return cache.AudioKeyOpts{
		Format:     o.Format,
		SampleRate: o.SampleRate,
		BitDepth:   16,
	}
}

// synthParams converts pipeline options to synthesis parameters.
func (o *Options) synthParams() synth.Params {
	return synth.Params{
		Prompt:     o.Prompt,
		Duration:   o.Duration,
		SampleRate: o.SampleRate,
		Seed:       o.Seed,
		TopK:       o.TopK,
	}
}
