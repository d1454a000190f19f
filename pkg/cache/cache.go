// Package cache provides pluggable byte caching for pipeline stages and
// registry responses.
//
// Three backends are provided:
//   - FileCache: directory-backed cache for CLI usage
//   - RedisCache: Redis-backed cache for multi-instance service deployments
//   - NullCache: no-op cache for tests or when caching is disabled
//
// Cache keys are produced by a Keyer, which hashes the inputs that determine
// a stage's output. Scores (composed note sequences) and rendered audio are
// cached separately so that a render-parameter change does not invalidate
// the composition.
package cache

import (
	"context"
	"time"
)

// Default TTLs for the different cached value kinds.
const (
	// TTLScore is how long composed scores are cached.
	TTLScore = 7 * 24 * time.Hour

	// TTLAudio is how long rendered audio artifacts are cached.
	TTLAudio = 24 * time.Hour

	// TTLHTTP is how long registry HTTP responses are cached.
	TTLHTTP = 6 * time.Hour
)

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// ScoreKeyOpts holds the options that determine a composed score.
type ScoreKeyOpts struct {
	Duration int    `json:"duration"`
	Seed     uint64 `json:"seed"`
	TopK     int    `json:"top_k"`
}

// AudioKeyOpts holds the options that determine a rendered audio artifact.
type AudioKeyOpts struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
}

// Keyer generates cache keys for the different value kinds.
type Keyer interface {
	// HTTPKey generates a key for registry HTTP response caching.
	HTTPKey(namespace, key string) string

	// ScoreKey generates a key for a composed score.
	ScoreKey(prompt string, opts ScoreKeyOpts) string

	// AudioKey generates a key for a rendered audio artifact.
	AudioKey(scoreHash string, opts AudioKeyOpts) string
}

// DefaultKeyer is the standard key generator. Keys are prefixed by kind
// ("http:", "score:", "audio:") followed by a SHA-256 hash of the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http", namespace, key)
}

// ScoreKey generates a key for a composed score.
func (k *DefaultKeyer) ScoreKey(prompt string, opts ScoreKeyOpts) string {
	return hashKey("score", prompt, opts)
}

// AudioKey generates a key for a rendered audio artifact.
func (k *DefaultKeyer) AudioKey(scoreHash string, opts AudioKeyOpts) string {
	return hashKey("audio", scoreHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
