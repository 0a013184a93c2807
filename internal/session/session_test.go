package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/stt"
)

type scriptedAdapter struct {
	name    string
	results []stt.Transcript
	errs    []error
	calls   int
}

func (a *scriptedAdapter) Name() string { return a.name }

func (a *scriptedAdapter) Transcribe(_ context.Context, _ *audio.Buffer) (stt.Transcript, error) {
	i := a.calls
	a.calls++
	var err error
	if i < len(a.errs) {
		err = a.errs[i]
	}
	var transcript stt.Transcript
	if i < len(a.results) {
		transcript = a.results[i]
	}
	return transcript, err
}

func testOrchestrator(results ...stt.Transcript) *orchestrator.Orchestrator {
	adapter := &scriptedAdapter{name: "test", results: results}
	return orchestrator.New([]orchestrator.ProviderConfig{
		{ID: "test", Priority: 1, Adapter: adapter, MaxRetries: 0, TimeoutSecs: 5, ConfidenceThreshold: 0.1},
	})
}

func segmentBuffer(seconds float64) *audio.Buffer {
	buffer := audio.NewBuffer(16000, 1)
	n := int(seconds * 16000)
	samples := make([]int16, n)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = 20000
		} else {
			samples[i] = -20000
		}
	}
	buffer.Append(samples)
	return buffer
}

func TestStitcherFullLifecycle(t *testing.T) {
	orch := testOrchestrator(
		stt.Transcript{Text: "hello world", Confidence: 0.9, Provider: "test"},
		stt.Transcript{Text: "world how are you", Confidence: 0.9, Provider: "test"},
	)
	stitcher := New(orch, nil)

	sessionID, err := stitcher.StartSession()
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	first, err := stitcher.AddSegment(context.Background(), segmentBuffer(1))
	require.NoError(t, err)
	require.Equal(t, "hello world", first.Transcript.Text)

	second, err := stitcher.AddSegment(context.Background(), segmentBuffer(1))
	require.NoError(t, err)
	require.Equal(t, "world how are you", second.Transcript.Text)

	result, err := stitcher.FinalizeSession()
	require.NoError(t, err)
	require.Equal(t, "Hello world how are you", result.FullText)
	require.Equal(t, uint32(2), result.SegmentCount)
	require.InDelta(t, 0.9, result.ConfidenceAvg, 0.0001)
	require.Equal(t, []string{"test"}, result.ProvidersUsed)
}

func TestStitcherAddSegmentWithoutActiveSessionFails(t *testing.T) {
	stitcher := New(testOrchestrator(), nil)
	_, err := stitcher.AddSegment(context.Background(), segmentBuffer(1))
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStitcherFinalizeWithoutActiveSessionFails(t *testing.T) {
	stitcher := New(testOrchestrator(), nil)
	_, err := stitcher.FinalizeSession()
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestStitcherFinalizeEmptySessionFails(t *testing.T) {
	stitcher := New(testOrchestrator(), nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	_, err = stitcher.FinalizeSession()
	require.ErrorIs(t, err, ErrEmptySession)
}

func TestStitcherSegmentTooLongRejected(t *testing.T) {
	stitcher := New(testOrchestrator(), nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	_, err = stitcher.AddSegment(context.Background(), segmentBuffer(59.01))
	var tooLong *SegmentTooLongError
	require.ErrorAs(t, err, &tooLong)
}

func TestStitcherSegmentAtExactlyMaxDurationAccepted(t *testing.T) {
	orch := testOrchestrator(stt.Transcript{Text: "ok", Confidence: 0.9, Provider: "test"})
	stitcher := New(orch, nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	buffer := segmentBuffer(59.0)
	buffer.DurationSecs = 59.0
	_, err = stitcher.AddSegment(context.Background(), buffer)
	require.NoError(t, err)
}

func TestStitcherSegmentLimitReached(t *testing.T) {
	results := make([]stt.Transcript, maxSegments)
	for i := range results {
		results[i] = stt.Transcript{Text: "ok", Confidence: 0.9, Provider: "test"}
	}
	orch := testOrchestrator(results...)
	stitcher := New(orch, nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	for i := 0; i < maxSegments; i++ {
		_, err := stitcher.AddSegment(context.Background(), segmentBuffer(0.1))
		require.NoError(t, err)
	}

	_, err = stitcher.AddSegment(context.Background(), segmentBuffer(0.1))
	var limitErr *SegmentLimitReachedError
	require.ErrorAs(t, err, &limitErr)
}

func TestStitcherGetProgressReflectsAddedSegments(t *testing.T) {
	orch := testOrchestrator(stt.Transcript{Text: "hello", Confidence: 0.9, Provider: "test"})
	stitcher := New(orch, nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	progress := stitcher.GetProgress()
	require.Equal(t, uint32(0), progress.SegmentCount)

	_, err = stitcher.AddSegment(context.Background(), segmentBuffer(1))
	require.NoError(t, err)

	progress = stitcher.GetProgress()
	require.Equal(t, uint32(1), progress.SegmentCount)
	require.Equal(t, "Hello", progress.CurrentText)
}

func TestStitcherTranscriptionFailurePropagatesMappedMessage(t *testing.T) {
	orch := orchestrator.New([]orchestrator.ProviderConfig{
		{ID: "test", Priority: 1, Adapter: &scriptedAdapter{name: "test", errs: []error{stt.AuthenticationError()}}, MaxRetries: 0, TimeoutSecs: 5, ConfidenceThreshold: 0.1},
	})
	stitcher := New(orch, nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	_, err = stitcher.AddSegment(context.Background(), segmentBuffer(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Authentication failed")
}

func TestStitcherSilenceGateShortCircuitsOrchestrator(t *testing.T) {
	t.Setenv("DICTACORE_ENABLE_SILENCE_GATE", "1")

	adapter := &scriptedAdapter{name: "test", results: []stt.Transcript{{Text: "should not be called", Confidence: 0.9}}}
	orch := orchestrator.New([]orchestrator.ProviderConfig{
		{ID: "test", Priority: 1, Adapter: adapter, MaxRetries: 0, TimeoutSecs: 5, ConfidenceThreshold: 0.1},
	})
	stitcher := New(orch, nil)
	_, err := stitcher.StartSession()
	require.NoError(t, err)

	buffer := audio.NewBuffer(16000, 1)
	buffer.Append(make([]int16, 16000))

	result, err := stitcher.AddSegment(context.Background(), buffer)
	require.NoError(t, err)
	require.Equal(t, stt.EmptyProviderSilenceGate, result.Transcript.Provider)
	require.Equal(t, 0, adapter.calls)
}
