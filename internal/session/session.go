// Package session implements the segmented dictation session: a sequence
// of audio segments transcribed one at a time through a shared orchestrator,
// then stitched into one normalized transcript.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/fsm"
	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/stt"
)

const (
	stateIdle   fsm.State = "idle"
	stateActive fsm.State = "active"

	eventStart    fsm.Event = "start"
	eventFinalize fsm.Event = "finalize"
)

func stitcherTable() fsm.Table {
	return fsm.NewTable().
		Allow(stateIdle, eventStart, stateActive).
		Allow(stateActive, eventFinalize, stateIdle)
}

const (
	maxSegmentDurationSecs = 59.0
	maxSegments            = 100
)

// SegmentResult is returned from AddSegment for one processed segment.
type SegmentResult struct {
	SegmentID  string
	Transcript stt.Transcript
	IsFinal    bool
}

// StitchedResult is the finalized output of a complete session.
type StitchedResult struct {
	FullText          string
	TotalDurationSecs float64
	SegmentCount      uint32
	ConfidenceAvg     float64
	ProvidersUsed     []string
}

// Stitcher coordinates one segmented dictation session end to end: segment
// admission, per-segment transcription via the orchestrator, and final
// overlap-aware stitching.
type Stitcher struct {
	logger       *slog.Logger
	orchestrator *orchestrator.Orchestrator

	mu        sync.Mutex
	machine   *fsm.Machine
	sessionID string
	segments  []AudioSegment
}

// New builds a Stitcher bound to one orchestrator instance, which is
// consulted (and internally serialized) for every non-silent segment.
func New(orch *orchestrator.Orchestrator, logger *slog.Logger) *Stitcher {
	return &Stitcher{
		logger:       logger,
		orchestrator: orch,
		machine:      fsm.NewMachine(stitcherTable(), stateIdle),
	}
}

// StartSession begins a new session, discarding any previous segments.
func (s *Stitcher) StartSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.machine.Fire(eventStart); err != nil {
		return "", err
	}

	s.sessionID = uuid.NewString()
	s.segments = nil

	s.logInfo("started new session", "session_id", s.sessionID)
	return s.sessionID, nil
}

// AddSegment transcribes one audio segment and appends it to the session.
func (s *Stitcher) AddSegment(ctx context.Context, buffer *audio.Buffer) (SegmentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.Current() != stateActive {
		return SegmentResult{}, ErrNoActiveSession
	}

	if len(s.segments) >= maxSegments {
		return SegmentResult{}, &SegmentLimitReachedError{Max: maxSegments}
	}

	duration := buffer.EffectiveDurationSecs()
	if duration > maxSegmentDurationSecs {
		return SegmentResult{}, &SegmentTooLongError{DurationSecs: duration, MaxSecs: maxSegmentDurationSecs}
	}

	sequenceNumber := uint32(len(s.segments)) + 1
	segment := NewAudioSegment(duration, sequenceNumber)

	metrics := audioEnergyMetrics(buffer)
	s.logInfo("segment energy",
		"sequence", sequenceNumber, "rms", metrics.rms, "peak", metrics.peak, "speech_ratio", metrics.speechRatio)

	if silenceGateEnabled() && isProbableSilence(metrics) {
		s.logInfo("segment skipped: probable silence", "sequence", sequenceNumber)

		transcript := stt.Transcript{DurationSecs: duration, Provider: stt.EmptyProviderSilenceGate}
		segment.SetTranscript(transcript)
		s.segments = append(s.segments, segment)

		return SegmentResult{SegmentID: segment.ID, Transcript: transcript, IsFinal: false}, nil
	}

	transcript, err := s.orchestrator.Transcribe(ctx, buffer)
	if err != nil {
		s.logError("segment transcription failed", "sequence", sequenceNumber, "error", err)
		return SegmentResult{}, &TranscriptionFailedError{Message: MapOrchestratorError(err)}
	}

	s.logInfo("segment transcribed",
		"sequence", sequenceNumber, "provider", transcript.Provider, "confidence", transcript.Confidence)

	segment.SetTranscript(transcript)
	s.segments = append(s.segments, segment)

	return SegmentResult{SegmentID: segment.ID, Transcript: transcript, IsFinal: false}, nil
}

// FinalizeSession stitches all segments into one transcript and resets to idle.
func (s *Stitcher) FinalizeSession() (StitchedResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.machine.Current() != stateActive {
		return StitchedResult{}, ErrNoActiveSession
	}
	if len(s.segments) == 0 {
		return StitchedResult{}, ErrEmptySession
	}

	s.logInfo("finalizing session", "segment_count", len(s.segments))

	fullText, err := stitchTranscripts(s.segments)
	if err != nil {
		return StitchedResult{}, err
	}

	var totalDuration, confidenceSum float64
	var confidenceCount int
	var providersUsed []string
	seenProvider := make(map[string]struct{})

	for _, segment := range s.segments {
		totalDuration += segment.DurationSecs
		if segment.Transcript == nil {
			continue
		}
		confidenceSum += segment.Transcript.Confidence
		confidenceCount++
		if _, seen := seenProvider[segment.Transcript.Provider]; !seen {
			seenProvider[segment.Transcript.Provider] = struct{}{}
			providersUsed = append(providersUsed, segment.Transcript.Provider)
		}
	}

	confidenceAvg := 0.0
	if confidenceCount > 0 {
		confidenceAvg = confidenceSum / float64(confidenceCount)
	}

	result := StitchedResult{
		FullText:          fullText,
		TotalDurationSecs: totalDuration,
		SegmentCount:      uint32(len(s.segments)),
		ConfidenceAvg:     confidenceAvg,
		ProvidersUsed:     providersUsed,
	}

	if _, err := s.machine.Fire(eventFinalize); err != nil {
		return StitchedResult{}, err
	}
	s.sessionID = ""
	s.segments = nil

	s.logInfo("session finalized", "chars", len(result.FullText), "total_duration_secs", result.TotalDurationSecs)
	return result, nil
}

// GetProgress reports the current session state without finalizing it.
func (s *Stitcher) GetProgress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totalDuration float64
	for _, segment := range s.segments {
		totalDuration += segment.DurationSecs
	}

	currentText := ""
	if len(s.segments) > 0 {
		if text, err := stitchTranscripts(s.segments); err == nil {
			currentText = text
		}
	}

	return Progress{
		SegmentCount:      uint32(len(s.segments)),
		TotalDurationSecs: totalDuration,
		CurrentText:       currentText,
	}
}

func (s *Stitcher) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Stitcher) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
