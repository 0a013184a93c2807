// Package wavcodec canonicalizes captured PCM into the 16kHz mono 16-bit
// RIFF/WAVE format accepted by every STT provider.
package wavcodec

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/rbright/dictacore/internal/audio"
)

const (
	targetSampleRate = 16000
	targetChannels   = 1
	bitsPerSample    = 16
	headerSize       = 44
)

// ErrEmptyBuffer is returned when the input sample array is empty.
var ErrEmptyBuffer = errors.New("wavcodec: audio buffer is empty")

// Encode returns a little-endian RIFF/WAVE PCM file, always 16kHz mono
// 16-bit, downmixing and resampling the input buffer as needed.
func Encode(buffer *audio.Buffer) ([]byte, error) {
	if buffer == nil || len(buffer.Samples) == 0 {
		return nil, ErrEmptyBuffer
	}

	sampleRate := buffer.SampleRate
	if sampleRate <= 0 {
		sampleRate = 1
	}
	channels := buffer.Channels
	if channels <= 0 {
		channels = 1
	}

	mono := downmixToMono(buffer.Samples, channels)
	resampled := resampleLinear(mono, sampleRate, targetSampleRate)

	out := make([]byte, headerSize+len(resampled)*2)
	writeHeader(out, len(resampled))

	for i, sample := range resampled {
		binary.LittleEndian.PutUint16(out[headerSize+i*2:], uint16(sample))
	}

	return out, nil
}

func writeHeader(out []byte, sampleCount int) {
	dataSize := uint32(sampleCount * 2)
	byteRate := uint32(targetSampleRate * targetChannels * (bitsPerSample / 8))
	blockAlign := uint16(targetChannels * (bitsPerSample / 8))

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], 36+dataSize)
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16)
	binary.LittleEndian.PutUint16(out[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:24], targetChannels)
	binary.LittleEndian.PutUint32(out[24:28], targetSampleRate)
	binary.LittleEndian.PutUint32(out[28:32], byteRate)
	binary.LittleEndian.PutUint16(out[32:34], blockAlign)
	binary.LittleEndian.PutUint16(out[34:36], bitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], dataSize)
}

// downmixToMono averages interleaved channels per frame into a float stream.
func downmixToMono(samples []int16, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(samples))
		for i, s := range samples {
			out[i] = float64(s)
		}
		return out
	}

	frameCount := len(samples) / channels
	out := make([]float64, frameCount)
	for frame := 0; frame < frameCount; frame++ {
		base := frame * channels
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(samples[base+ch])
		}
		out[frame] = sum / float64(channels)
	}
	return out
}

// resampleLinear resamples a mono float stream from sourceRate to
// targetRate via linear interpolation, saturating to int16 range.
func resampleLinear(input []float64, sourceRate, targetRate int) []int16 {
	if len(input) == 0 {
		return nil
	}
	if sourceRate == targetRate {
		out := make([]int16, len(input))
		for i, v := range input {
			out[i] = saturateInt16(v)
		}
		return out
	}

	ratio := float64(targetRate) / float64(sourceRate)
	outLen := int(math.Round(float64(len(input)) * ratio))
	if outLen < 1 {
		outLen = 1
	}

	out := make([]int16, outLen)
	for i := 0; i < outLen; i++ {
		pos := float64(i) * (float64(sourceRate) / float64(targetRate))
		left := int(math.Floor(pos))
		right := left + 1
		if right >= len(input) {
			right = len(input) - 1
		}
		frac := pos - math.Floor(pos)
		interpolated := input[left]*(1-frac) + input[right]*frac
		out[i] = saturateInt16(interpolated)
	}
	return out
}

func saturateInt16(v float64) int16 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}
