package synth

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/adityaaj2003/tunegan/pkg/errors"
)

// WAV container constants for the files we write: mono 16-bit PCM.
const (
	wavChannels      = 1
	wavBitsPerSample = 16
	wavHeaderSize    = 44
)

// EncodeWAV encodes mono float64 samples in [-1, 1] as a 16-bit PCM
// RIFF/WAVE file.
func EncodeWAV(samples []float64, sampleRate int) ([]byte, error) {
	if len(samples) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no samples to encode")
	}
	if sampleRate <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sample rate must be positive")
	}

	dataSize := len(samples) * wavChannels * wavBitsPerSample / 8
	byteRate := sampleRate * wavChannels * wavBitsPerSample / 8
	blockAlign := wavChannels * wavBitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	// RIFF chunk
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt subchunk
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(wavChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(wavBitsPerSample))

	// data subchunk
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		v := math.Max(-1, math.Min(1, s))
		binary.Write(buf, binary.LittleEndian, int16(v*math.MaxInt16))
	}

	return buf.Bytes(), nil
}
