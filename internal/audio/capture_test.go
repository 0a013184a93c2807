package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferAppendRecomputesDuration(t *testing.T) {
	b := NewBuffer(16000, 1)
	b.Append(make([]int16, 8000))
	require.InDelta(t, 0.5, b.DurationSecs, 1e-9)

	b.Append(make([]int16, 8000))
	require.InDelta(t, 1.0, b.DurationSecs, 1e-9)
}

func TestBufferClearResetsDuration(t *testing.T) {
	b := NewBuffer(16000, 1)
	b.Append(make([]int16, 16000))
	b.Clear()
	require.Equal(t, 0.0, b.DurationSecs)
	require.Empty(t, b.Samples)
}

func TestBufferCloneIsIndependent(t *testing.T) {
	b := NewBuffer(16000, 1)
	b.Append([]int16{1, 2, 3})

	clone := b.Clone()
	clone.Append([]int16{4, 5})

	require.Len(t, b.Samples, 3)
	require.Len(t, clone.Samples, 5)
}

func TestBufferEffectiveDurationSecsPrefersCached(t *testing.T) {
	b := &Buffer{SampleRate: 16000, Channels: 1, DurationSecs: 2.5}
	require.Equal(t, 2.5, b.EffectiveDurationSecs())
}

func TestBufferEffectiveDurationSecsRecomputesWhenTiny(t *testing.T) {
	b := &Buffer{SampleRate: 16000, Channels: 1, DurationSecs: 0.01, Samples: make([]int16, 16000)}
	require.InDelta(t, 1.0, b.EffectiveDurationSecs(), 1e-9)
}

func TestCaptureOnPCMAppendsClampedSamplesAndPublishesLevel(t *testing.T) {
	c := NewCapture()
	c.buffer = NewBuffer(captureSampleRate, captureChannels)

	n, err := c.onPCM([]float32{1.5, -1.5, 0})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.Len(t, c.buffer.Samples, 3)
	require.Equal(t, int16(32767), c.buffer.Samples[0])
	require.Equal(t, int16(-32767), c.buffer.Samples[1])
	require.Equal(t, int16(0), c.buffer.Samples[2])

	require.Greater(t, c.LevelHandle().Load(), float32(0))
}

func TestCaptureStopWithoutStartFails(t *testing.T) {
	c := NewCapture()
	_, err := c.Stop()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestBytesToFloat32LERoundTrips(t *testing.T) {
	frame := []float32{0.5, -0.25}
	buf := make([]byte, 8)
	for i, f := range frame {
		bitsOf := float32bitsLE(f)
		copy(buf[i*4:], bitsOf[:])
	}
	got := bytesToFloat32LE(buf)
	require.Len(t, got, 2)
	require.InDelta(t, 0.5, got[0], 1e-6)
	require.InDelta(t, -0.25, got[1], 1e-6)
}

func float32bitsLE(f float32) [4]byte {
	bits := math.Float32bits(f)
	return [4]byte{byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}
