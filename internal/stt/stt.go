// Package stt defines the uniform speech-to-text adapter contract and its
// concrete provider implementations.
package stt

import (
	"context"
	"fmt"

	"github.com/rbright/dictacore/internal/audio"
)

// Transcript is the immutable result of a successful transcription.
type Transcript struct {
	Text         string
	Confidence   float64
	Language     string
	DurationSecs float64
	Provider     string
}

// EmptyProviderSilenceGate tags a synthetic transcript produced when a
// segment is classified as silence before reaching any adapter.
const EmptyProviderSilenceGate = "SilenceGate"

// ErrorKind enumerates the closed set of adapter failure modes.
type ErrorKind int

const (
	ErrorKindNetwork ErrorKind = iota
	ErrorKindTimeout
	ErrorKindAudioTooLong
	ErrorKindInvalidAudio
	ErrorKindAuthentication
	ErrorKindRateLimit
	ErrorKindProvider
	ErrorKindModelNotFound
)

// Error is the closed sum type of adapter failures.
type Error struct {
	Kind   ErrorKind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindNetwork:
		return fmt.Sprintf("network error: %s", e.Detail)
	case ErrorKindTimeout:
		return "request timeout"
	case ErrorKindAudioTooLong:
		return "audio too long (max 59s for Groq)"
	case ErrorKindInvalidAudio:
		return "invalid audio format"
	case ErrorKindAuthentication:
		return "authentication failed"
	case ErrorKindRateLimit:
		return "rate limit exceeded"
	case ErrorKindProvider:
		return fmt.Sprintf("provider error: %s", e.Detail)
	case ErrorKindModelNotFound:
		return fmt.Sprintf("model not found: %s", e.Detail)
	default:
		return "unknown stt error"
	}
}

// IsRetryable is true only for network, timeout, and rate-limit failures.
func (e *Error) IsRetryable() bool {
	switch e.Kind {
	case ErrorKindNetwork, ErrorKindTimeout, ErrorKindRateLimit:
		return true
	default:
		return false
	}
}

func newError(kind ErrorKind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// NetworkError builds an ErrorKindNetwork error.
func NetworkError(detail string) *Error { return newError(ErrorKindNetwork, detail) }

// TimeoutError builds an ErrorKindTimeout error.
func TimeoutError() *Error { return newError(ErrorKindTimeout, "") }

// AudioTooLongError builds an ErrorKindAudioTooLong error.
func AudioTooLongError() *Error { return newError(ErrorKindAudioTooLong, "") }

// InvalidAudioError builds an ErrorKindInvalidAudio error.
func InvalidAudioError() *Error { return newError(ErrorKindInvalidAudio, "") }

// AuthenticationError builds an ErrorKindAuthentication error.
func AuthenticationError() *Error { return newError(ErrorKindAuthentication, "") }

// RateLimitError builds an ErrorKindRateLimit error.
func RateLimitError() *Error { return newError(ErrorKindRateLimit, "") }

// ProviderError builds an ErrorKindProvider error carrying detail.
func ProviderError(detail string) *Error { return newError(ErrorKindProvider, detail) }

// ModelNotFoundError builds an ErrorKindModelNotFound error carrying detail.
func ModelNotFoundError(detail string) *Error { return newError(ErrorKindModelNotFound, detail) }

// Adapter is the uniform transcription capability implemented once per
// provider. Adapters own no shared state and are consulted sequentially.
type Adapter interface {
	Transcribe(ctx context.Context, buffer *audio.Buffer) (Transcript, error)
	Name() string
}

// EffectiveDurationSecs is a nil-safe wrapper around
// audio.Buffer.EffectiveDurationSecs; a nil buffer yields 0.
func EffectiveDurationSecs(buffer *audio.Buffer) float64 {
	if buffer == nil {
		return 0
	}
	return buffer.EffectiveDurationSecs()
}
