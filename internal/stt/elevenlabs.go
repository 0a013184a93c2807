package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/wavcodec"
)

const (
	elevenLabsAPIURL  = "https://api.elevenlabs.io/v1/speech-to-text"
	elevenLabsTimeout = 30 * time.Second
	elevenLabsModelID = "scribe_v1"
)

type elevenLabsResponse struct {
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

// ElevenLabsAdapter is the secondary remote STT adapter.
type ElevenLabsAdapter struct {
	apiKey string
	client *resty.Client
}

// NewElevenLabsAdapter builds an ElevenLabs adapter bound to apiKey.
func NewElevenLabsAdapter(apiKey string) *ElevenLabsAdapter {
	return &ElevenLabsAdapter{
		apiKey: apiKey,
		client: resty.New().SetTimeout(elevenLabsTimeout),
	}
}

// Name identifies this adapter for metrics, logs, and providers_used.
func (a *ElevenLabsAdapter) Name() string { return "ElevenLabs Scribe" }

// Transcribe encodes the buffer as canonical WAV and posts it to the
// ElevenLabs Scribe speech-to-text endpoint.
func (a *ElevenLabsAdapter) Transcribe(ctx context.Context, buffer *audio.Buffer) (Transcript, error) {
	duration := EffectiveDurationSecs(buffer)

	wavBytes, err := wavcodec.Encode(buffer)
	if err != nil {
		return Transcript{}, InvalidAudioError()
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("xi-api-key", a.apiKey).
		SetFileReader("audio", "audio.wav", bytes.NewReader(wavBytes)).
		SetFormData(map[string]string{"model_id": elevenLabsModelID}).
		Post(elevenLabsAPIURL)
	if err != nil {
		if isTimeoutErr(err) {
			return Transcript{}, TimeoutError()
		}
		return Transcript{}, NetworkError(err.Error())
	}

	switch resp.StatusCode() {
	case 200:
		var parsed elevenLabsResponse
		if jsonErr := json.Unmarshal(resp.Body(), &parsed); jsonErr != nil {
			return Transcript{}, ProviderError(jsonErr.Error())
		}
		return Transcript{
			Text:         parsed.Text,
			Confidence:   0.90,
			Language:     parsed.LanguageCode,
			DurationSecs: duration,
			Provider:     a.Name(),
		}, nil
	case 401:
		return Transcript{}, AuthenticationError()
	case 429:
		return Transcript{}, RateLimitError()
	default:
		return Transcript{}, ProviderError(resp.String())
	}
}
