package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory track store. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	tracks map[uuid.UUID]*Track
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tracks: make(map[uuid.UUID]*Track)}
}

// Put inserts or replaces a track.
func (s *MemoryStore) Put(_ context.Context, track *Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *track
	s.tracks[track.ID] = &cp
	return nil
}

// Get fetches a track by ID.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tracks[id]
	if !ok {
		return nil, ErrTrackNotFound
	}
	cp := *t
	return &cp, nil
}

// List returns all tracks, newest first.
func (s *MemoryStore) List(_ context.Context) ([]*Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() > out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a track.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[id]; !ok {
		return ErrTrackNotFound
	}
	delete(s.tracks, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
