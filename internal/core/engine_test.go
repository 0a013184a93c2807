package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/stt"
)

type fakeAdapter struct {
	name    string
	results []stt.Transcript
	errs    []error
	calls   int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Transcribe(_ context.Context, _ *audio.Buffer) (stt.Transcript, error) {
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
	adapter := &fakeAdapter{name: "test", results: results}
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

func TestEngineTranscribeAudioReturnsProviderResult(t *testing.T) {
	engine := New(testOrchestrator(stt.Transcript{Text: "hello", Confidence: 0.9, Provider: "test"}), "", nil)

	transcript, err := engine.TranscribeAudio(context.Background(), segmentBuffer(1))
	require.NoError(t, err)
	require.Equal(t, "hello", transcript.Text)
}

func TestEngineTranscribeAudioMapsOrchestratorFailure(t *testing.T) {
	engine := New(orchestrator.New([]orchestrator.ProviderConfig{
		{ID: "test", Priority: 1, Adapter: &fakeAdapter{name: "test", errs: []error{stt.AuthenticationError()}}, MaxRetries: 0, TimeoutSecs: 5, ConfidenceThreshold: 0.1},
	}), "", nil)

	_, err := engine.TranscribeAudio(context.Background(), segmentBuffer(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Authentication failed")
}

func TestEngineSessionLifecycleDelegatesToStitcher(t *testing.T) {
	engine := New(testOrchestrator(
		stt.Transcript{Text: "hello world", Confidence: 0.9, Provider: "test"},
	), "", nil)

	sessionID, err := engine.StartRecordingSession()
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	segment, err := engine.AddAudioSegment(context.Background(), segmentBuffer(1))
	require.NoError(t, err)
	require.Equal(t, "hello world", segment.Transcript.Text)

	progress := engine.GetSessionProgress()
	require.Equal(t, uint32(1), progress.SegmentCount)

	result, err := engine.FinalizeRecordingSession()
	require.NoError(t, err)
	require.Equal(t, "Hello world", result.FullText)
}

func TestEngineStopRecordingWithoutStartFails(t *testing.T) {
	engine := New(testOrchestrator(), "", nil)
	_, err := engine.StopRecording()
	require.ErrorIs(t, err, ErrNotRecording)
}

func TestEngineStopMicMonitorWithoutStartFails(t *testing.T) {
	engine := New(testOrchestrator(), "", nil)
	err := engine.StopMicMonitor()
	require.ErrorIs(t, err, ErrMonitorNotActive)
}

func TestEngineLevelHandleNilWhenIdle(t *testing.T) {
	engine := New(testOrchestrator(), "", nil)
	require.Nil(t, engine.LevelHandle())
}

func TestEnginePasteTextWithNoCapturedTargetFallsBack(t *testing.T) {
	engine := New(testOrchestrator(), "CTRL,V", nil)
	attempt := engine.PasteText(context.Background(), "self")
	require.False(t, attempt.Pasted)
	require.Equal(t, "no_target_window", attempt.Reason)
}
