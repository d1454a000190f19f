package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// trackEntry is one generated audio file found on disk.
type trackEntry struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// tracksCommand creates the tracks command.
func (c *CLI) tracksCommand() *cobra.Command {
	var (
		dir   string
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Browse generated tracks",
		Long: `Tracks lists the audio files in the output directory. By default it opens
an interactive browser; select a track to print its path. Use --plain for
script-friendly output.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := scanTracks(dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No tracks in %s", dir)
				printNextStep("Generate one", `tunegan generate "lofi beats"`)
				return nil
			}

			if plain {
				for _, e := range entries {
					fmt.Printf("%s\t%s\t%s\n", e.Name, formatSize(e.Size), e.Modified.Format(time.RFC3339))
				}
				return nil
			}

			model := NewTrackListModel(entries)
			final, err := tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("run track browser: %w", err)
			}
			if m, ok := final.(TrackListModel); ok && m.Selected != nil {
				fmt.Println(m.Selected.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", defaultAudioDir, "directory containing generated audio")
	cmd.Flags().BoolVar(&plain, "plain", false, "print a plain list instead of the interactive browser")

	return cmd
}

// scanTracks collects WAV files from dir, newest first.
func scanTracks(dir string) ([]trackEntry, error) {
	items, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var entries []trackEntry
	for _, item := range items {
		if item.IsDir() || !strings.HasSuffix(item.Name(), ".wav") {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries = append(entries, trackEntry{
			Name:     item.Name(),
			Path:     filepath.Join(dir, item.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})
	return entries, nil
}

// formatSize renders a byte count compactly (e.g. "1.2 MB").
func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
