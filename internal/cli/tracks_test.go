package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func TestScanTracks(t *testing.T) {
	dir := t.TempDir()

	old := filepath.Join(dir, "audio_old.wav")
	if err := os.WriteFile(old, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(old, past, past); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"audio_new.wav", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := scanTracks(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (non-wav files skipped)", len(entries))
	}
	if entries[0].Name != "audio_new.wav" {
		t.Errorf("entries should be newest first, got %q", entries[0].Name)
	}
}

func TestScanTracksMissingDir(t *testing.T) {
	entries, err := scanTracks(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if entries != nil {
		t.Error("missing directory should yield no entries")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.in); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrackListModelNavigation(t *testing.T) {
	entries := []trackEntry{
		{Name: "a.wav"}, {Name: "b.wav"}, {Name: "c.wav"},
	}
	m := NewTrackListModel(entries)

	down := keyMsg("down")
	next, _ := m.Update(down)
	m = next.(TrackListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(keyMsg("enter"))
	m = next.(TrackListModel)
	if m.Selected == nil || m.Selected.Name != "b.wav" {
		t.Errorf("selected = %+v", m.Selected)
	}
}
