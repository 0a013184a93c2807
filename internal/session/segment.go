package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbright/dictacore/internal/stt"
)

// AudioSegment is one piece of a multi-part dictation session: a fixed
// sequence position plus the transcript produced for it (if any).
type AudioSegment struct {
	ID             string
	SequenceNumber uint32
	DurationSecs   float64
	Timestamp      time.Time
	Transcript     *stt.Transcript
}

// NewAudioSegment creates a segment with a fresh id and no transcript yet.
func NewAudioSegment(durationSecs float64, sequenceNumber uint32) AudioSegment {
	return AudioSegment{
		ID:             uuid.NewString(),
		SequenceNumber: sequenceNumber,
		DurationSecs:   durationSecs,
		Timestamp:      time.Now(),
	}
}

// SetTranscript attaches a completed transcript to the segment.
func (s *AudioSegment) SetTranscript(transcript stt.Transcript) {
	s.Transcript = &transcript
}

// IsTranscribed reports whether a transcript has been attached.
func (s *AudioSegment) IsTranscribed() bool {
	return s.Transcript != nil
}
