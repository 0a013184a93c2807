package stt

import (
	"context"
	"os"
	"strings"

	"github.com/rbright/dictacore/internal/audio"
)

// Recognizer is the minimal seam a VOSK binding must satisfy. No cgo VOSK
// bindings are available to this module; the shell is expected to supply a
// concrete Recognizer (wrapping a real VOSK model) when VOSK support is
// compiled in. VoskAdapter itself never imports cgo.
type Recognizer interface {
	// AcceptWaveform feeds 16kHz mono PCM16 samples and returns the final
	// recognized text once the caller is done feeding samples.
	AcceptWaveform(samples []int16) (string, error)
}

// VoskAdapter is the local fallback adapter wrapping a VOSK recognizer,
// with an optional second-language recognizer attempted when the primary
// produces empty text.
type VoskAdapter struct {
	primary         Recognizer
	primaryLanguage string
	secondary       Recognizer
	secondaryLang   string
	modelPath       string
}

// NewVoskAdapter builds a VOSK adapter from pre-constructed recognizers.
// Pass a nil primary to represent "model file not found", which makes
// every Transcribe call fail with ModelNotFound.
func NewVoskAdapter(modelPath string, primary Recognizer, primaryLanguage string, secondary Recognizer, secondaryLanguage string) *VoskAdapter {
	return &VoskAdapter{
		primary:         primary,
		primaryLanguage: primaryLanguage,
		secondary:       secondary,
		secondaryLang:   secondaryLanguage,
		modelPath:       modelPath,
	}
}

// NewVoskAdapterFromEnv resolves VOSK_MODEL_PATH and VOSK_MODEL_PATH_EN;
// the caller supplies the recognizer factory since this module ships no
// cgo VOSK bindings.
func NewVoskAdapterFromEnv(newRecognizer func(modelPath string) (Recognizer, error)) (*VoskAdapter, error) {
	modelPath := strings.TrimSpace(os.Getenv("VOSK_MODEL_PATH"))
	if modelPath == "" {
		return nil, ModelNotFoundError("VOSK_MODEL_PATH is not set")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, ModelNotFoundError(modelPath)
	}

	primary, err := newRecognizer(modelPath)
	if err != nil {
		return nil, ProviderError(err.Error())
	}

	var secondary Recognizer
	secondaryLang := ""
	if secondaryPath := strings.TrimSpace(os.Getenv("VOSK_MODEL_PATH_EN")); secondaryPath != "" {
		if _, err := os.Stat(secondaryPath); err == nil {
			if rec, err := newRecognizer(secondaryPath); err == nil {
				secondary = rec
				secondaryLang = "en-US"
			}
		}
	}

	return NewVoskAdapter(modelPath, primary, "pt-BR", secondary, secondaryLang), nil
}

// Name identifies this adapter for metrics, logs, and providers_used.
func (a *VoskAdapter) Name() string { return "VOSK Local" }

// Transcribe runs the primary-language recognizer, falling back to the
// secondary-language recognizer when the primary returns empty text.
func (a *VoskAdapter) Transcribe(_ context.Context, buffer *audio.Buffer) (Transcript, error) {
	if a.primary == nil {
		return Transcript{}, ModelNotFoundError(a.modelPath)
	}
	if buffer == nil || len(buffer.Samples) == 0 {
		return Transcript{}, InvalidAudioError()
	}

	duration := EffectiveDurationSecs(buffer)

	text, err := a.primary.AcceptWaveform(buffer.Samples)
	if err != nil {
		return Transcript{}, ProviderError(err.Error())
	}
	if strings.TrimSpace(text) != "" {
		return Transcript{
			Text:         text,
			Confidence:   0.7,
			Language:     a.primaryLanguage,
			DurationSecs: duration,
			Provider:     a.Name(),
		}, nil
	}

	if a.secondary != nil {
		text, err := a.secondary.AcceptWaveform(buffer.Samples)
		if err != nil {
			return Transcript{}, ProviderError(err.Error())
		}
		if strings.TrimSpace(text) != "" {
			return Transcript{
				Text:         text,
				Confidence:   0.7,
				Language:     a.secondaryLang,
				DurationSecs: duration,
				Provider:     a.Name(),
			}, nil
		}
	}

	return Transcript{}, ProviderError("empty transcription from VOSK")
}
