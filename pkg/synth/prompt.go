package synth

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
)

// Mode names the scale a composition is built on.
type Mode string

const (
	ModeMajor      Mode = "major"
	ModeMinor      Mode = "minor"
	ModeDorian     Mode = "dorian"
	ModePentatonic Mode = "pentatonic"
)

// scales maps each mode to its semitone offsets within one octave.
var scales = map[Mode][]int{
	ModeMajor:      {0, 2, 4, 5, 7, 9, 11},
	ModeMinor:      {0, 2, 3, 5, 7, 8, 10},
	ModeDorian:     {0, 2, 3, 5, 7, 9, 10},
	ModePentatonic: {0, 3, 5, 7, 10},
}

// Style holds the composition parameters derived from a text prompt.
type Style struct {
	Tempo      float64 `json:"tempo"`      // beats per minute
	Mode       Mode    `json:"mode"`       // scale selection
	Root       int     `json:"root"`       // root note as MIDI number
	Brightness float64 `json:"brightness"` // 0..1, shifts voices up and opens filters
	Noise      float64 `json:"noise"`      // 0..1, background texture level
	Swing      float64 `json:"swing"`      // 0..1, off-beat delay amount
	Voices     []Voice `json:"voices"`     // active instrument voices
}

// ScaleOffsets returns the semitone offsets for the style's mode.
func (s *Style) ScaleOffsets() []int {
	if offs, ok := scales[s.Mode]; ok {
		return offs
	}
	return scales[ModeMajor]
}

// keyword rules applied in order; later matches override earlier ones for
// scalar fields, and voice matches accumulate.
type promptRule struct {
	words []string
	apply func(*Style)
}

var promptRules = []promptRule{
	// Mood / tempo
	{[]string{"lofi", "lo-fi", "chill", "calm", "relax", "mellow"}, func(s *Style) {
		s.Tempo = 72
		s.Mode = ModePentatonic
		s.Noise = 0.4
		s.Brightness = 0.35
	}},
	{[]string{"ambient", "drone", "meditat", "sleep"}, func(s *Style) {
		s.Tempo = 56
		s.Mode = ModeMinor
		s.Brightness = 0.25
	}},
	{[]string{"sad", "melancho", "dark", "moody", "rain"}, func(s *Style) {
		s.Mode = ModeMinor
		s.Brightness = 0.3
	}},
	{[]string{"happy", "upbeat", "cheerful", "bright", "summer"}, func(s *Style) {
		s.Tempo = 120
		s.Mode = ModeMajor
		s.Brightness = 0.75
	}},
	{[]string{"dance", "edm", "techno", "club", "energetic"}, func(s *Style) {
		s.Tempo = 128
		s.Mode = ModeMinor
		s.Brightness = 0.8
	}},
	{[]string{"jazz", "swing", "blues"}, func(s *Style) {
		s.Tempo = 96
		s.Mode = ModeDorian
		s.Swing = 0.3
	}},
	{[]string{"epic", "cinematic", "orchestral", "soundtrack"}, func(s *Style) {
		s.Tempo = 90
		s.Mode = ModeMinor
		s.Brightness = 0.6
	}},

	// Instruments
	{[]string{"piano", "keys"}, addVoice(VoiceKeys)},
	{[]string{"bass"}, addVoice(VoiceBass)},
	{[]string{"pad", "strings", "synth", "orchestral"}, addVoice(VoicePad)},
	{[]string{"drum", "beat", "percussion", "hat"}, addVoice(VoicePerc)},
	{[]string{"vinyl", "crackle", "tape"}, func(s *Style) { s.Noise = 0.5 }},
}

func addVoice(v Voice) func(*Style) {
	return func(s *Style) {
		for _, existing := range s.Voices {
			if existing == v {
				return
			}
		}
		s.Voices = append(s.Voices, v)
	}
}

// InterpretPrompt maps a natural-language prompt to composition
// parameters. The mapping is deterministic: identical prompts always
// produce identical styles.
func InterpretPrompt(prompt string) Style {
	s := Style{
		Tempo:      100,
		Mode:       ModeMajor,
		Root:       57, // A3
		Brightness: 0.5,
	}

	lower := strings.ToLower(prompt)
	for _, rule := range promptRules {
		for _, w := range rule.words {
			if containsKeyword(lower, w) {
				rule.apply(&s)
				break
			}
		}
	}

	// Default ensemble when the prompt names no instruments.
	if len(s.Voices) == 0 {
		s.Voices = []Voice{VoiceKeys, VoiceBass, VoicePad}
	}

	// Vary the key with the prompt so different prompts don't all land
	// on the same tonic.
	s.Root = 53 + int(PromptSeed(prompt)%12) // F3..E4

	return s
}

// containsKeyword reports whether w occurs in s starting at a word
// boundary. Keywords match as prefixes ("beat" matches "beats",
// "meditat" matches "meditation") but not mid-word ("beat" does not
// match "upbeat").
func containsKeyword(s, w string) bool {
	for from := 0; ; {
		i := strings.Index(s[from:], w)
		if i < 0 {
			return false
		}
		i += from
		if i == 0 || !isWordChar(s[i-1]) {
			return true
		}
		from = i + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

// PromptSeed derives a stable seed from a prompt. Used when the caller
// does not supply an explicit seed, so repeated generations of the same
// prompt are reproducible.
func PromptSeed(prompt string) uint64 {
	sum := sha256.Sum256([]byte(strings.TrimSpace(strings.ToLower(prompt))))
	return binary.BigEndian.Uint64(sum[:8])
}
