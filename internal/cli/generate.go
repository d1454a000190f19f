package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adityaaj2003/tunegan/pkg/pipeline"
	"github.com/adityaaj2003/tunegan/pkg/store"
	"github.com/adityaaj2003/tunegan/pkg/synth"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		duration   int
		seed       uint64
		topK       int
		sampleRate int
		output     string
		refresh    bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate a music clip from a text prompt",
		Long: `Generate composes and synthesizes a short music clip from a natural-language
description. Generation is deterministic: the same prompt and seed always
produce the same audio.

Examples:
  tunegan generate "lofi beats with vinyl crackle"
  tunegan generate "epic orchestral piece" -d 20 -o epic.wav
  tunegan generate "jazz trio" --seed 7 --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(args[0])

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("init cache: %w", err)
			}
			defer runner.Close()

			opts := pipeline.Options{
				Prompt:     prompt,
				Duration:   duration,
				Seed:       seed,
				TopK:       topK,
				SampleRate: sampleRate,
				Refresh:    refresh,
				Logger:     c.Logger,
			}

			prog := newProgress(c.Logger)
			spinner := newSpinnerWithContext(cmd.Context(), "Generating audio...")
			spinner.Start()

			result, err := runner.Execute(cmd.Context(), opts)
			spinner.Stop()
			if err != nil {
				if spinner.Cancelled() {
					return cmd.Context().Err()
				}
				return err
			}
			prog.done(fmt.Sprintf("Generated %ds of audio", result.Score.Duration))

			path, err := writeAudio(output, result)
			if err != nil {
				return err
			}

			printSuccess("Generated %q", prompt)
			printGenStats(result.Stats.NoteCount, result.Score.Duration, result.CacheInfo.RenderHit)
			printFile(path)
			printNextStep("Play it", "afplay "+path)
			return nil
		},
	}

	cmd.Flags().IntVarP(&duration, "duration", "d", 0,
		fmt.Sprintf("clip length in seconds, %d-%d (default %d)", synth.MinDuration, synth.MaxDuration, synth.DefaultDuration))
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: derived from the prompt)")
	cmd.Flags().IntVar(&topK, "top-k", 0, fmt.Sprintf("note sampling pool size (default %d)", synth.DefaultTopK))
	cmd.Flags().IntVar(&sampleRate, "sample-rate", 0, fmt.Sprintf("output sample rate in Hz (default %d)", synth.DefaultSampleRate))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default audio_output/audio_<id>.wav)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass caches and regenerate")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

// writeAudio writes the rendered audio to the requested path, defaulting to
// the audio output directory with a track-style filename.
func writeAudio(output string, result *pipeline.Result) (string, error) {
	path := output
	if path == "" {
		if err := os.MkdirAll(defaultAudioDir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", defaultAudioDir, err)
		}
		track := store.NewTrack(result.Score.Prompt, result.Score.Duration, 0, result.Score.Seed)
		path = filepath.Join(defaultAudioDir, track.AudioFilename())
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, result.Audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}
