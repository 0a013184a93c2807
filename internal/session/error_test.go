package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/stt"
)

func TestMapOrchestratorErrorNoProviders(t *testing.T) {
	msg := MapOrchestratorError(orchestrator.ErrNoProvidersAvailable)
	require.Contains(t, msg, "No speech-to-text provider is configured")
}

func TestMapOrchestratorErrorAuthenticationTakesPriority(t *testing.T) {
	err := &orchestrator.AllProvidersFailedError{Failures: []orchestrator.AttemptFailure{
		{ProviderID: "groq", Err: stt.RateLimitError()},
		{ProviderID: "elevenlabs", Err: stt.AuthenticationError()},
	}}

	require.Equal(t, "Authentication failed. Check your API key.", MapOrchestratorError(err))
}

func TestMapOrchestratorErrorRateLimitBeforeTimeout(t *testing.T) {
	err := &orchestrator.AllProvidersFailedError{Failures: []orchestrator.AttemptFailure{
		{ProviderID: "groq", Err: stt.TimeoutError()},
		{ProviderID: "elevenlabs", Err: stt.RateLimitError()},
	}}

	require.Equal(t, "Rate limit reached. Wait and retry.", MapOrchestratorError(err))
}

func TestMapOrchestratorErrorTimeoutFallback(t *testing.T) {
	err := &orchestrator.AllProvidersFailedError{Failures: []orchestrator.AttemptFailure{
		{ProviderID: "groq", Err: stt.TimeoutError()},
	}}

	require.Equal(t, "Request timed out. Check your connection.", MapOrchestratorError(err))
}

func TestMapOrchestratorErrorJoinsProviderDetails(t *testing.T) {
	err := &orchestrator.AllProvidersFailedError{Failures: []orchestrator.AttemptFailure{
		{ProviderID: "groq", Err: stt.ProviderError("boom")},
		{ProviderID: "whisper", Err: stt.InvalidAudioError()},
	}}

	msg := MapOrchestratorError(err)
	require.Contains(t, msg, "groq: provider error: boom")
	require.Contains(t, msg, "whisper: invalid audio format")
	require.Contains(t, msg, " | ")
}
