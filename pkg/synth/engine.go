// Package synth generates music from text prompts.
//
// Generation happens in two stages, mirroring the classic
// analysis/synthesis split:
//
//  1. Compose: the prompt is interpreted into a [Style] and a note
//     sequence ([Score]) is sampled from it. Sampling is top-k weighted
//     random sampling seeded from the prompt (or an explicit seed), so a
//     given prompt+seed always composes the same score.
//  2. Render: the score is rendered into a mono PCM waveform using
//     additive oscillator voices with ADSR envelopes, then encoded as
//     16-bit WAV.
//
// The two stages are cached independently by the pipeline: a score is
// reusable across render-parameter changes.
package synth

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/adityaaj2003/tunegan/pkg/errors"
)

// Generation limits and defaults.
const (
	// DefaultSampleRate is the output sample rate in Hz.
	DefaultSampleRate = 32000

	// MinDuration and MaxDuration bound the requested track length in seconds.
	MinDuration = 1
	MaxDuration = 30

	// DefaultDuration is the track length when none is requested.
	DefaultDuration = 10

	// DefaultTopK is the sampling pool size for note selection.
	DefaultTopK = 250
)

// Params configures one generation run.
type Params struct {
	Prompt     string // natural-language description, required
	Duration   int    // seconds, MinDuration..MaxDuration
	SampleRate int    // Hz, defaults to DefaultSampleRate
	Seed       uint64 // 0 means derive from the prompt
	TopK       int    // sampling pool size, defaults to DefaultTopK
}

// Validate checks required fields and applies defaults.
func (p *Params) Validate() error {
	if p.Prompt == "" {
		return errors.New(errors.ErrCodeInvalidPrompt, "prompt must not be empty")
	}
	if p.Duration == 0 {
		p.Duration = DefaultDuration
	}
	if p.Duration < MinDuration || p.Duration > MaxDuration {
		return errors.New(errors.ErrCodeInvalidDuration,
			"duration %ds out of range [%d,%d]", p.Duration, MinDuration, MaxDuration)
	}
	if p.SampleRate == 0 {
		p.SampleRate = DefaultSampleRate
	}
	if p.SampleRate < 8000 || p.SampleRate > 96000 {
		return errors.New(errors.ErrCodeInvalidInput, "sample rate %d out of range [8000,96000]", p.SampleRate)
	}
	if p.Seed == 0 {
		p.Seed = PromptSeed(p.Prompt)
	}
	if p.TopK == 0 {
		p.TopK = DefaultTopK
	}
	if p.TopK < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "top-k must be positive")
	}
	return nil
}

// Note is one scheduled note in a score.
type Note struct {
	Voice    Voice   `json:"voice"`
	Pitch    int     `json:"pitch"`    // MIDI note number
	Start    float64 `json:"start"`    // seconds from track start
	Duration float64 `json:"duration"` // seconds
	Velocity float64 `json:"velocity"` // 0..1
}

// Score is a composed note sequence plus the style it was sampled from.
// Scores serialize to JSON for caching.
type Score struct {
	Prompt   string `json:"prompt"`
	Style    Style  `json:"style"`
	Seed     uint64 `json:"seed"`
	Duration int    `json:"duration"` // seconds
	Notes    []Note `json:"notes"`
}

// Compose interprets the prompt and samples a note sequence.
// The result is deterministic for a given prompt, duration, seed, and top-k.
func Compose(p Params) (*Score, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	style := InterpretPrompt(p.Prompt)
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	score := &Score{
		Prompt:   p.Prompt,
		Style:    style,
		Seed:     p.Seed,
		Duration: p.Duration,
	}

	beat := 60.0 / style.Tempo
	total := float64(p.Duration)

	for _, v := range style.Voices {
		switch v {
		case VoiceKeys:
			score.Notes = append(score.Notes, composeMelody(&style, rng, p.TopK, beat, total)...)
		case VoiceBass:
			score.Notes = append(score.Notes, composeBass(&style, rng, beat, total)...)
		case VoicePad:
			score.Notes = append(score.Notes, composePad(&style, rng, beat, total)...)
		case VoicePerc:
			score.Notes = append(score.Notes, composePerc(&style, rng, beat, total)...)
		}
	}

	slices.SortFunc(score.Notes, func(a, b Note) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return score, nil
}

// composeMelody samples a random-walk melody over the scale using top-k
// weighted sampling: candidate pitches are weighted by proximity to the
// previous note, truncated to the k most likely, and drawn from the
// truncated distribution.
func composeMelody(style *Style, rng *rand.Rand, topK int, beat, total float64) []Note {
	offsets := style.ScaleOffsets()

	// Candidate pitches: the scale across two octaves above the root.
	var candidates []int
	for octave := 0; octave < 2; octave++ {
		for _, off := range offsets {
			candidates = append(candidates, style.Root+12+12*octave+off)
		}
	}

	var notes []Note
	prev := candidates[len(candidates)/2]
	step := beat / 2 // eighth notes

	for t := 0.0; t < total; t += step {
		// Rests keep the line breathing.
		if rng.Float64() < 0.25 {
			continue
		}

		pitch := sampleTopK(candidates, prev, topK, rng)
		prev = pitch

		dur := step
		if rng.Float64() < 0.3 {
			dur = beat // occasional held note
		}
		start := t
		if style.Swing > 0 && int(t/step)%2 == 1 {
			start += style.Swing * step * 0.5
		}

		notes = append(notes, Note{
			Voice:    VoiceKeys,
			Pitch:    pitch,
			Start:    start,
			Duration: dur,
			Velocity: 0.6 + 0.3*rng.Float64(),
		})
	}
	return notes
}

// sampleTopK draws a pitch from the k candidates closest in probability
// to the previous note. Weights fall off exponentially with interval size.
func sampleTopK(candidates []int, prev, k int, rng *rand.Rand) int {
	type weighted struct {
		pitch  int
		weight float64
	}
	pool := make([]weighted, len(candidates))
	for i, c := range candidates {
		interval := math.Abs(float64(c - prev))
		pool[i] = weighted{pitch: c, weight: math.Exp(-interval / 4)}
	}

	slices.SortFunc(pool, func(a, b weighted) int {
		switch {
		case a.weight > b.weight:
			return -1
		case a.weight < b.weight:
			return 1
		default:
			return a.pitch - b.pitch
		}
	})
	if k < len(pool) {
		pool = pool[:k]
	}

	sum := 0.0
	for _, w := range pool {
		sum += w.weight
	}
	r := rng.Float64() * sum
	for _, w := range pool {
		r -= w.weight
		if r <= 0 {
			return w.pitch
		}
	}
	return pool[len(pool)-1].pitch
}

// composeBass alternates root and fifth on downbeats, one octave down.
func composeBass(style *Style, rng *rand.Rand, beat, total float64) []Note {
	var notes []Note
	root := style.Root - 12
	for i := 0; ; i++ {
		t := float64(i) * beat
		if t >= total {
			break
		}
		pitch := root
		if i%4 == 2 {
			pitch = root + 7 // fifth
		}
		if rng.Float64() < 0.15 {
			continue
		}
		notes = append(notes, Note{
			Voice:    VoiceBass,
			Pitch:    pitch,
			Start:    t,
			Duration: beat * 0.9,
			Velocity: 0.8,
		})
	}
	return notes
}

// composePad holds triads for a bar at a time, walking the scale.
func composePad(style *Style, rng *rand.Rand, beat, total float64) []Note {
	offsets := style.ScaleOffsets()
	bar := beat * 4

	var notes []Note
	degree := 0
	for t := 0.0; t < total; t += bar {
		dur := math.Min(bar, total-t)
		for _, chordOff := range []int{0, 2, 4} {
			idx := (degree + chordOff) % len(offsets)
			octaveShift := 12 * ((degree + chordOff) / len(offsets))
			notes = append(notes, Note{
				Voice:    VoicePad,
				Pitch:    style.Root + offsets[idx] + octaveShift,
				Start:    t,
				Duration: dur,
				Velocity: 0.5,
			})
		}
		// Walk to a nearby scale degree for the next bar.
		degree = (degree + []int{3, 4, 5}[rng.IntN(3)]) % len(offsets)
	}
	return notes
}

// composePerc places a tick on every eighth, accented on downbeats,
// with seeded velocity jitter and occasional dropped off-beats so the
// groove varies between seeds.
func composePerc(style *Style, rng *rand.Rand, beat, total float64) []Note {
	var notes []Note
	step := beat / 2
	for i := 0; ; i++ {
		t := float64(i) * step
		if t >= total {
			break
		}
		vel := 0.4
		if i%2 == 0 {
			vel = 0.7
		} else if rng.Float64() < 0.15 {
			continue // ghosted off-beat
		}
		vel += 0.1 * (rng.Float64() - 0.5)
		notes = append(notes, Note{
			Voice:    VoicePerc,
			Pitch:    style.Root + 24,
			Start:    t,
			Duration: step * 0.5,
			Velocity: vel,
		})
	}
	return notes
}

// Render synthesizes the score into a mono float64 waveform at the given
// sample rate. Samples are normalized into [-1, 1] with a soft clip.
// Rendering is deterministic for a given score and sample rate.
func Render(score *Score, sampleRate int) []float64 {
	n := score.Duration * sampleRate
	samples := make([]float64, n)
	dt := 1.0 / float64(sampleRate)

	for _, note := range score.Notes {
		renderNote(samples, &note, &score.Style, sampleRate, dt)
	}

	if score.Style.Noise > 0 {
		addTexture(samples, score.Seed, score.Style.Noise)
	}

	// Soft clip and normalize.
	peak := 0.0
	for i, s := range samples {
		samples[i] = math.Tanh(s)
		if a := math.Abs(samples[i]); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		scale := 0.95 / peak
		for i := range samples {
			samples[i] *= scale
		}
	}
	return samples
}

func renderNote(samples []float64, note *Note, style *Style, sampleRate int, dt float64) {
	env := voiceEnvelopes[note.Voice]
	freq := midiFreq(note.Pitch)
	gain := voiceGain[note.Voice] * note.Velocity

	start := int(note.Start * float64(sampleRate))
	end := int((note.Start + note.Duration + env.releaseTail()) * float64(sampleRate))
	if end > len(samples) {
		end = len(samples)
	}

	for i := start; i < end; i++ {
		if i < 0 {
			continue
		}
		t := float64(i-start) * dt
		e := env.at(t, note.Duration)
		if e <= 0 {
			continue
		}
		samples[i] += gain * e * oscillate(note.Voice, freq, t, style.Brightness)
	}
}

// addTexture layers deterministic vinyl-style noise: a low hiss plus
// sparse crackle pops.
func addTexture(samples []float64, seed uint64, level float64) {
	rng := rand.New(rand.NewPCG(seed^0xa5a5a5a5a5a5a5a5, seed))
	hiss := 0.008 * level
	for i := range samples {
		samples[i] += hiss * (2*rng.Float64() - 1)
		// Roughly 4 pops per second at full level.
		if rng.Float64() < 0.0001*level {
			samples[i] += 0.25 * level * (2*rng.Float64() - 1)
		}
	}
}
