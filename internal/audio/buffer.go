package audio

// Buffer is a semantic container for interleaved signed 16-bit PCM samples,
// with a cached duration kept consistent across Append/Clear.
type Buffer struct {
	Samples      []int16
	SampleRate   int
	Channels     int
	DurationSecs float64
}

// NewBuffer creates an empty buffer for the given format.
func NewBuffer(sampleRate, channels int) *Buffer {
	if channels <= 0 {
		channels = 1
	}
	return &Buffer{SampleRate: sampleRate, Channels: channels}
}

// Append concatenates samples and recomputes the cached duration.
func (b *Buffer) Append(samples []int16) {
	if len(samples) == 0 {
		return
	}
	b.Samples = append(b.Samples, samples...)
	b.recomputeDuration()
}

// Clear empties the buffer and resets duration to 0.
func (b *Buffer) Clear() {
	b.Samples = b.Samples[:0]
	b.DurationSecs = 0
}

// Clone returns a deep copy, used when transferring ownership out of capture.
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{
		SampleRate:   b.SampleRate,
		Channels:     b.Channels,
		DurationSecs: b.DurationSecs,
	}
	out.Samples = make([]int16, len(b.Samples))
	copy(out.Samples, b.Samples)
	return out
}

// EffectiveDurationSecs returns the cached duration when it is meaningfully
// set (> 0.05s, per spec), otherwise recomputes it from the sample count.
func (b *Buffer) EffectiveDurationSecs() float64 {
	if b.DurationSecs > 0.05 {
		return b.DurationSecs
	}
	return b.computeDuration()
}

func (b *Buffer) recomputeDuration() {
	b.DurationSecs = b.computeDuration()
}

func (b *Buffer) computeDuration() float64 {
	channels := b.Channels
	if channels <= 0 {
		channels = 1
	}
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / (float64(b.SampleRate) * float64(channels))
}
