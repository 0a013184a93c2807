package orchestrator

import (
	"os"
	"strings"

	"github.com/rbright/dictacore/internal/stt"
)

// FromEnv builds a provider set the same way the teacher's runtime
// configuration resolves adapters: keys accepted only when they match the
// provider-specific prefix, local adapters wired only when their
// model/binary paths are present.
func FromEnv() *Orchestrator {
	var providers []ProviderConfig

	if key := strings.TrimSpace(os.Getenv("GROQ_API_KEY")); strings.HasPrefix(key, "gsk_") {
		providers = append(providers, ProviderConfig{
			ID:                  "groq",
			Priority:            1,
			Adapter:             stt.NewGroqAdapter(key, os.Getenv("GROQ_STT_MODEL"), os.Getenv("GROQ_STT_LANGUAGE")),
			MaxRetries:          0,
			TimeoutSecs:         10,
			ConfidenceThreshold: 0.7,
		})
	}

	if key := strings.TrimSpace(os.Getenv("ELEVENLABS_API_KEY")); strings.HasPrefix(key, "sk_") {
		providers = append(providers, ProviderConfig{
			ID:                  "elevenlabs",
			Priority:            3,
			Adapter:             stt.NewElevenLabsAdapter(key),
			MaxRetries:          1,
			TimeoutSecs:         10,
			ConfidenceThreshold: 0.6,
		})
	}

	if binPath, modelPath, ok := whisperPathsFromEnv(); ok {
		providers = append(providers, ProviderConfig{
			ID:                  "whisper",
			Priority:            4,
			Adapter:             stt.NewWhisperCLIAdapter(binPath, modelPath, os.Getenv("WHISPER_LANG")),
			MaxRetries:          0,
			TimeoutSecs:         20,
			ConfidenceThreshold: 0.5,
		})
	}

	return New(providers)
}

// AppendVoskProvider wires a VOSK provider into an existing provider list
// before constructing the orchestrator. VOSK needs a live cgo recognizer the
// shell supplies; FromEnv cannot build one on its own, so callers that embed
// VOSK support call this before New.
func AppendVoskProvider(providers []ProviderConfig, adapter *stt.VoskAdapter) []ProviderConfig {
	return append(providers, ProviderConfig{
		ID:                  "vosk",
		Priority:            2,
		Adapter:             adapter,
		MaxRetries:          0,
		TimeoutSecs:         15,
		ConfidenceThreshold: 0.5,
	})
}

func whisperPathsFromEnv() (binPath, modelPath string, ok bool) {
	binPath = strings.TrimSpace(os.Getenv("WHISPER_CPP_BIN"))
	modelPath = strings.TrimSpace(os.Getenv("WHISPER_MODEL"))
	if binPath == "" || modelPath == "" {
		return "", "", false
	}
	if _, err := os.Stat(binPath); err != nil {
		return "", "", false
	}
	if _, err := os.Stat(modelPath); err != nil {
		return "", "", false
	}
	return binPath, modelPath, true
}
