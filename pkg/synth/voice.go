package synth

import "math"

// Voice identifies an instrument voice in the ensemble.
type Voice string

const (
	VoiceKeys Voice = "keys" // plucked electric-piano tone
	VoiceBass Voice = "bass" // sub-octave saw bass
	VoicePad  Voice = "pad"  // slow-attack triangle pad
	VoicePerc Voice = "perc" // filtered-noise percussion tick
)

// envelope is a linear ADSR envelope evaluated at time t within a note
// of total length dur (both in seconds).
type envelope struct {
	attack  float64
	decay   float64
	sustain float64 // sustain level 0..1
	release float64
}

// envelopes per voice; percussion is all transient.
var voiceEnvelopes = map[Voice]envelope{
	VoiceKeys: {attack: 0.01, decay: 0.15, sustain: 0.55, release: 0.20},
	VoiceBass: {attack: 0.02, decay: 0.10, sustain: 0.70, release: 0.15},
	VoicePad:  {attack: 0.30, decay: 0.20, sustain: 0.80, release: 0.40},
	VoicePerc: {attack: 0.001, decay: 0.05, sustain: 0.0, release: 0.03},
}

func (e envelope) at(t, dur float64) float64 {
	switch {
	case t < 0 || t > dur+e.release:
		return 0
	case t < e.attack:
		return t / e.attack
	case t < e.attack+e.decay:
		return 1 - (1-e.sustain)*(t-e.attack)/e.decay
	case t < dur:
		return e.sustain
	default:
		// release tail past the nominal note end
		level := e.sustain
		if e.release <= 0 {
			return 0
		}
		return level * (1 - (t-dur)/e.release)
	}
}

// releaseTail returns how far past the note end the voice keeps sounding.
func (e envelope) releaseTail() float64 { return e.release }

// midiFreq converts a MIDI note number to frequency in Hz (A4 = 440).
func midiFreq(midi int) float64 {
	return 440 * math.Pow(2, float64(midi-69)/12)
}

// oscillate evaluates one sample of the given voice at phase t (seconds)
// for frequency freq. brightness opens up higher harmonics.
func oscillate(v Voice, freq, t, brightness float64) float64 {
	switch v {
	case VoiceBass:
		// Band-limited saw approximation from the first few harmonics,
		// one octave down.
		f := freq / 2
		sum := 0.0
		harmonics := 3 + int(brightness*3)
		for h := 1; h <= harmonics; h++ {
			sum += math.Sin(2*math.Pi*f*float64(h)*t) / float64(h)
		}
		return 0.7 * sum

	case VoicePad:
		// Triangle-ish: fundamental plus soft odd harmonics.
		sum := math.Sin(2 * math.Pi * freq * t)
		sum += (0.15 + 0.2*brightness) * math.Sin(2*math.Pi*freq*3*t) / 9
		sum += 0.1 * math.Sin(2*math.Pi*freq*5*t) / 25
		return sum

	case VoicePerc:
		// Deterministic noise tick: sum of detuned high partials.
		sum := 0.0
		for h := 7; h <= 13; h += 2 {
			sum += math.Sin(2 * math.Pi * freq * float64(h) * 1.013 * t)
		}
		return sum / 3

	default: // VoiceKeys
		sum := math.Sin(2 * math.Pi * freq * t)
		sum += (0.3 + 0.4*brightness) * math.Sin(2*math.Pi*freq*2*t)
		sum += (0.1 + 0.2*brightness) * math.Sin(2*math.Pi*freq*4*t)
		return sum / 1.6
	}
}

// voiceGain balances the ensemble mix.
var voiceGain = map[Voice]float64{
	VoiceKeys: 0.50,
	VoiceBass: 0.45,
	VoicePad:  0.30,
	VoicePerc: 0.20,
}
