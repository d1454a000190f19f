// Package store persists generated track metadata.
//
// Audio bytes live on disk (or wherever the caller writes them); the store
// records the metadata needed to list, fetch, and serve tracks. Two backends
// are provided: an in-memory store for tests and single-run CLI usage, and a
// MongoDB store for service deployments.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adityaaj2003/tunegan/pkg/errors"
)

// Track is the stored metadata for one generated track.
type Track struct {
	ID         uuid.UUID `json:"id" bson:"_id"`
	Prompt     string    `json:"prompt" bson:"prompt"`
	Duration   int       `json:"duration" bson:"duration"` // seconds
	SampleRate int       `json:"sample_rate" bson:"sample_rate"`
	Seed       uint64    `json:"seed" bson:"seed"`
	ScoreHash  string    `json:"score_hash" bson:"score_hash"`
	Size       int64     `json:"size" bson:"size"` // audio size in bytes
	Path       string    `json:"path" bson:"path"` // audio file path on disk
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// NewTrack builds a track with a fresh ID and creation timestamp.
func NewTrack(prompt string, duration, sampleRate int, seed uint64) *Track {
	return &Track{
		ID:         uuid.New(),
		Prompt:     prompt,
		Duration:   duration,
		SampleRate: sampleRate,
		Seed:       seed,
		CreatedAt:  time.Now().UTC(),
	}
}

// AudioFilename returns the on-disk filename for the track's audio.
func (t *Track) AudioFilename() string {
	return "audio_" + t.ID.String() + ".wav"
}

// ErrTrackNotFound is returned when a requested track does not exist.
var ErrTrackNotFound = errors.New(errors.ErrCodeTrackNotFound, "track not found")

// Store is the interface for track metadata backends.
type Store interface {
	// Put inserts or replaces a track.
	Put(ctx context.Context, track *Track) error

	// Get fetches a track by ID. Returns ErrTrackNotFound if missing.
	Get(ctx context.Context, id uuid.UUID) (*Track, error)

	// List returns all tracks, newest first.
	List(ctx context.Context) ([]*Track, error)

	// Delete removes a track. Returns ErrTrackNotFound if missing.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
