package stt

import (
	"bytes"
	"context"
	"errors"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/wavcodec"
)

const (
	groqAPIURL          = "https://api.groq.com/openai/v1/audio/transcriptions"
	groqMaxDurationSecs = 59.0
	groqTimeout         = 10 * time.Second
	groqDefaultModel    = "whisper-large-v3"
	groqDefaultLanguage = "pt"
	groqResponseFormat  = "text"
	groqPrompt          = "Transcreva exatamente a fala em português brasileiro. Não invente texto quando houver silêncio."
)

var groqTimestampPattern = regexp.MustCompile(`\[\d{2}:\d{2}.*?\]|\(\d{2}:\d{2}\)`)

// GroqAdapter is the primary remote STT adapter (Groq Whisper endpoint).
type GroqAdapter struct {
	apiKey   string
	client   *resty.Client
	model    string
	language string // empty means "auto" (field omitted)
}

// NewGroqAdapter builds a Groq adapter with optional model/language
// overrides, falling back to the provider defaults.
func NewGroqAdapter(apiKey, model, language string) *GroqAdapter {
	model = strings.TrimSpace(model)
	if model == "" {
		model = groqDefaultModel
	}

	language = strings.TrimSpace(language)
	switch {
	case language == "":
		language = groqDefaultLanguage
	case strings.EqualFold(language, "auto"):
		language = ""
	}

	return &GroqAdapter{
		apiKey:   apiKey,
		client:   resty.New().SetTimeout(groqTimeout),
		model:    model,
		language: language,
	}
}

// Name identifies this adapter for metrics, logs, and providers_used.
func (a *GroqAdapter) Name() string { return "Groq Whisper" }

// Transcribe encodes the buffer as canonical WAV and posts it as multipart
// form data to the Groq transcription endpoint.
func (a *GroqAdapter) Transcribe(ctx context.Context, buffer *audio.Buffer) (Transcript, error) {
	duration := EffectiveDurationSecs(buffer)
	if duration > groqMaxDurationSecs {
		return Transcript{}, AudioTooLongError()
	}

	wavBytes, err := wavcodec.Encode(buffer)
	if err != nil {
		return Transcript{}, InvalidAudioError()
	}

	req := a.client.R().
		SetContext(ctx).
		SetAuthToken(a.apiKey).
		SetFileReader("file", "audio.wav", bytes.NewReader(wavBytes)).
		SetFormData(map[string]string{
			"model":           a.model,
			"response_format": groqResponseFormat,
			"temperature":     "0",
			"prompt":          groqPrompt,
		})
	if a.language != "" {
		req.SetFormData(map[string]string{"language": a.language})
	}

	resp, err := req.Post(groqAPIURL)
	if err != nil {
		if isTimeoutErr(err) {
			return Transcript{}, TimeoutError()
		}
		return Transcript{}, NetworkError(err.Error())
	}

	switch resp.StatusCode() {
	case 200:
		cleaned := cleanGroqTranscript(resp.String())
		if cleaned == "" {
			return Transcript{}, ProviderError("empty transcript")
		}
		return Transcript{
			Text:         cleaned,
			Confidence:   0.95,
			Language:     a.language,
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

func cleanGroqTranscript(text string) string {
	stripped := groqTimestampPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(stripped), " ")
}

// isTimeoutErr reports whether err represents a client-side network timeout,
// as opposed to a generic network failure.
func isTimeoutErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
