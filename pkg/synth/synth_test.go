package synth

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"
)

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{"defaults applied", Params{Prompt: "lofi beats"}, false},
		{"empty prompt", Params{}, true},
		{"duration too long", Params{Prompt: "x", Duration: 31}, true},
		{"duration negative", Params{Prompt: "x", Duration: -1}, true},
		{"max duration ok", Params{Prompt: "x", Duration: 30}, false},
		{"bad sample rate", Params{Prompt: "x", SampleRate: 100}, true},
		{"negative top-k", Params{Prompt: "x", TopK: -5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParamsValidateDefaults(t *testing.T) {
	p := Params{Prompt: "ambient pads"}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Duration != DefaultDuration {
		t.Errorf("Duration = %d, want %d", p.Duration, DefaultDuration)
	}
	if p.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", p.SampleRate, DefaultSampleRate)
	}
	if p.TopK != DefaultTopK {
		t.Errorf("TopK = %d, want %d", p.TopK, DefaultTopK)
	}
	if p.Seed == 0 {
		t.Error("Seed should be derived from the prompt")
	}
	if p.Seed != PromptSeed("ambient pads") {
		t.Error("derived seed should match PromptSeed")
	}
}

func TestPromptSeedStable(t *testing.T) {
	a := PromptSeed("Lofi Hip Hop")
	b := PromptSeed("  lofi hip hop ") // case and whitespace insensitive
	if a != b {
		t.Errorf("PromptSeed not normalized: %d != %d", a, b)
	}
	if PromptSeed("techno") == PromptSeed("jazz") {
		t.Error("distinct prompts should produce distinct seeds")
	}
}

func TestInterpretPrompt(t *testing.T) {
	tests := []struct {
		prompt    string
		wantMode  Mode
		wantTempo float64
	}{
		{"lofi beats to study to", ModePentatonic, 72},
		{"dark ambient drone", ModeMinor, 56},
		{"happy summer tune", ModeMajor, 120},
		{"fast techno club track", ModeMinor, 128},
		{"smoky jazz trio", ModeDorian, 96},
		{"something unusual", ModeMajor, 100}, // defaults
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			s := InterpretPrompt(tt.prompt)
			if s.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", s.Mode, tt.wantMode)
			}
			if s.Tempo != tt.wantTempo {
				t.Errorf("Tempo = %v, want %v", s.Tempo, tt.wantTempo)
			}
		})
	}
}

func TestInterpretPromptVoices(t *testing.T) {
	s := InterpretPrompt("piano and drums")
	hasVoice := func(v Voice) bool {
		for _, got := range s.Voices {
			if got == v {
				return true
			}
		}
		return false
	}
	if !hasVoice(VoiceKeys) || !hasVoice(VoicePerc) {
		t.Errorf("expected keys and perc voices, got %v", s.Voices)
	}

	// No instrument keywords: default ensemble.
	s = InterpretPrompt("melancholic evening")
	if len(s.Voices) == 0 {
		t.Error("default ensemble should not be empty")
	}

	// "upbeat" is a mood word: the percussion keyword "beat" must not
	// match mid-word.
	s = InterpretPrompt("upbeat dance track")
	if hasVoice(VoicePerc) {
		t.Errorf("upbeat should not add percussion, got %v", s.Voices)
	}

	// Prefix matching still applies at word starts.
	s = InterpretPrompt("fat beats")
	if !hasVoice(VoicePerc) {
		t.Errorf("expected perc voice, got %v", s.Voices)
	}
}

func TestInterpretPromptDeterministic(t *testing.T) {
	a := InterpretPrompt("jazzy piano over vinyl crackle")
	b := InterpretPrompt("jazzy piano over vinyl crackle")
	if !reflect.DeepEqual(a, b) {
		t.Error("identical prompts should map to identical styles")
	}
}

func TestComposeDeterministic(t *testing.T) {
	p := Params{Prompt: "upbeat dance track", Duration: 5, Seed: 42}
	a, err := Compose(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compose(p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("Compose should be deterministic for fixed params")
	}

	c, err := Compose(Params{Prompt: "upbeat dance track", Duration: 5, Seed: 43})
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Notes, c.Notes) {
		t.Error("different seeds should produce different scores")
	}
}

func TestComposePercSeedVariation(t *testing.T) {
	// Percussion-only ensembles draw from the rng too, so the seed still
	// matters when no melodic voices are active.
	a, err := Compose(Params{Prompt: "drum and percussion loop", Duration: 5, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compose(Params{Prompt: "drum and percussion loop", Duration: 5, Seed: 2})
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Notes, b.Notes) {
		t.Error("different seeds should produce different percussion")
	}
}

func TestComposeNotesInRange(t *testing.T) {
	score, err := Compose(Params{Prompt: "epic orchestral piece with drums", Duration: 8})
	if err != nil {
		t.Fatal(err)
	}
	if len(score.Notes) == 0 {
		t.Fatal("score should contain notes")
	}
	for i, n := range score.Notes {
		if n.Start < 0 || n.Start >= float64(score.Duration) {
			t.Errorf("note %d starts at %v, outside [0,%d)", i, n.Start, score.Duration)
		}
		if n.Duration <= 0 {
			t.Errorf("note %d has non-positive duration %v", i, n.Duration)
		}
		if n.Velocity <= 0 || n.Velocity > 1 {
			t.Errorf("note %d velocity %v out of (0,1]", i, n.Velocity)
		}
		if i > 0 && n.Start < score.Notes[i-1].Start {
			t.Errorf("notes not sorted by start at index %d", i)
		}
	}
}

func TestRender(t *testing.T) {
	score, err := Compose(Params{Prompt: "calm piano", Duration: 2, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}

	samples := Render(score, 8000)
	if len(samples) != 2*8000 {
		t.Fatalf("got %d samples, want %d", len(samples), 2*8000)
	}

	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Error("rendered audio is silent")
	}
	if peak > 1 {
		t.Errorf("peak %v exceeds full scale", peak)
	}

	again := Render(score, 8000)
	if !reflect.DeepEqual(samples, again) {
		t.Error("Render should be deterministic for a fixed score")
	}
}

func TestEncodeWAV(t *testing.T) {
	samples := make([]float64, 1600)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/16000)
	}

	data, err := EncodeWAV(samples, 16000)
	if err != nil {
		t.Fatal(err)
	}

	wantSize := wavHeaderSize + len(samples)*2
	if len(data) != wantSize {
		t.Fatalf("got %d bytes, want %d", len(data), wantSize)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 16000 {
		t.Errorf("sample rate in header = %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(data[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data chunk size = %d, want %d", got, len(samples)*2)
	}
}

func TestEncodeWAVErrors(t *testing.T) {
	if _, err := EncodeWAV(nil, 16000); err == nil {
		t.Error("expected error for empty samples")
	}
	if _, err := EncodeWAV([]float64{0}, 0); err == nil {
		t.Error("expected error for zero sample rate")
	}
}
