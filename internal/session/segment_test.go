package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dictacore/internal/stt"
)

func TestNewAudioSegmentAssignsIDAndSequence(t *testing.T) {
	segment := NewAudioSegment(1.5, 3)
	require.NotEmpty(t, segment.ID)
	require.Equal(t, uint32(3), segment.SequenceNumber)
	require.Equal(t, 1.5, segment.DurationSecs)
	require.False(t, segment.IsTranscribed())
}

func TestAudioSegmentSetTranscript(t *testing.T) {
	segment := NewAudioSegment(1.0, 1)
	segment.SetTranscript(stt.Transcript{Text: "hello", Confidence: 0.9})

	require.True(t, segment.IsTranscribed())
	require.Equal(t, "hello", segment.Transcript.Text)
}
