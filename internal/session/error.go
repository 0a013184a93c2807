package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/stt"
)

// ErrNoActiveSession is returned when AddSegment/FinalizeSession is called
// before StartSession.
var ErrNoActiveSession = errors.New("no active session")

// ErrEmptySession is returned when FinalizeSession is called with no
// segments added.
var ErrEmptySession = errors.New("session has no segments")

// SegmentTooLongError reports a segment that exceeded the maximum duration.
type SegmentTooLongError struct {
	DurationSecs float64
	MaxSecs      float64
}

func (e *SegmentTooLongError) Error() string {
	return fmt.Sprintf("segment too long: %.1fs (max %.1fs)", e.DurationSecs, e.MaxSecs)
}

// SegmentLimitReachedError reports that a session already holds the maximum
// number of segments.
type SegmentLimitReachedError struct {
	Max int
}

func (e *SegmentLimitReachedError) Error() string {
	return fmt.Sprintf("segment limit reached: %d", e.Max)
}

// StitchError reports a segment that reached finalization without ever
// being transcribed.
type StitchError struct {
	SegmentID string
}

func (e *StitchError) Error() string {
	return fmt.Sprintf("segment not transcribed: %s", e.SegmentID)
}

// TranscriptionFailedError wraps the user-facing message derived from an
// orchestrator failure for one segment.
type TranscriptionFailedError struct {
	Message string
}

func (e *TranscriptionFailedError) Error() string {
	return e.Message
}

// MapOrchestratorError turns an orchestrator failure into the user-facing
// string surfaced by the shell, in priority order: authentication, then
// rate limit, then timeout, then a joined per-provider detail dump.
func MapOrchestratorError(err error) string {
	if errors.Is(err, orchestrator.ErrNoProvidersAvailable) {
		return "No speech-to-text provider is configured. Add a provider API key or local model path."
	}

	var failed *orchestrator.AllProvidersFailedError
	if errors.As(err, &failed) {
		return mapAllProvidersFailed(failed)
	}

	return fmt.Sprintf("Transcription failed: %s", err)
}

func mapAllProvidersFailed(failed *orchestrator.AllProvidersFailedError) string {
	for _, f := range failed.Failures {
		if hasErrorKind(f.Err, stt.ErrorKindAuthentication) {
			return "Authentication failed. Check your API key."
		}
	}
	for _, f := range failed.Failures {
		if hasErrorKind(f.Err, stt.ErrorKindRateLimit) {
			return "Rate limit reached. Wait and retry."
		}
	}
	for _, f := range failed.Failures {
		if hasErrorKind(f.Err, stt.ErrorKindTimeout) {
			return "Request timed out. Check your connection."
		}
	}

	details := make([]string, 0, len(failed.Failures))
	for _, f := range failed.Failures {
		details = append(details, fmt.Sprintf("%s: %s", f.ProviderID, f.Err))
	}
	return "Transcription failed. " + strings.Join(details, " | ")
}

func hasErrorKind(err error, kind stt.ErrorKind) bool {
	var sttErr *stt.Error
	if !errors.As(err, &sttErr) {
		return false
	}
	return sttErr.Kind == kind
}
