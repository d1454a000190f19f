package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTrack(t *testing.T) {
	track := NewTrack("lofi beats", 10, 32000, 42)
	if track.ID == uuid.Nil {
		t.Error("track should get a fresh ID")
	}
	if track.CreatedAt.IsZero() {
		t.Error("track should get a creation timestamp")
	}
	if !strings.HasPrefix(track.AudioFilename(), "audio_") || !strings.HasSuffix(track.AudioFilename(), ".wav") {
		t.Errorf("unexpected audio filename %q", track.AudioFilename())
	}
}

func TestMemoryStoreRoundtrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	track := NewTrack("calm piano", 5, 32000, 7)
	track.Size = 320044
	if err := s.Put(ctx, track); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, track.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Prompt != "calm piano" || got.Size != 320044 {
		t.Errorf("got %+v", got)
	}

	// Mutating the returned copy must not affect the stored value.
	got.Prompt = "changed"
	again, err := s.Get(ctx, track.ID)
	if err != nil {
		t.Fatal(err)
	}
	if again.Prompt != "calm piano" {
		t.Error("store should return defensive copies")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, uuid.New()); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Get: got %v, want ErrTrackNotFound", err)
	}
	if err := s.Delete(ctx, uuid.New()); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("Delete: got %v, want ErrTrackNotFound", err)
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	old := NewTrack("first", 5, 32000, 1)
	old.CreatedAt = time.Now().Add(-time.Hour)
	recent := NewTrack("second", 5, 32000, 2)

	for _, tr := range []*Track{old, recent} {
		if err := s.Put(ctx, tr); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d tracks, want 2", len(list))
	}
	if list[0].Prompt != "second" {
		t.Error("list should be newest first")
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	track := NewTrack("deleted", 5, 32000, 3)
	if err := s.Put(ctx, track); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, track.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, track.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Error("deleted track should be gone")
	}
}
