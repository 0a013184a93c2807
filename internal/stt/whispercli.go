package stt

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/wavcodec"
)

// WhisperCLIAdapter is the local fallback adapter shelling out to a
// whisper.cpp-compatible CLI binary.
type WhisperCLIAdapter struct {
	binPath   string
	modelPath string
	language  string
}

// NewWhisperCLIAdapter builds an adapter bound to a whisper-cli binary and
// model file. language defaults to "auto".
func NewWhisperCLIAdapter(binPath, modelPath, language string) *WhisperCLIAdapter {
	language = strings.TrimSpace(language)
	if language == "" {
		language = "auto"
	}
	return &WhisperCLIAdapter{binPath: binPath, modelPath: modelPath, language: language}
}

// Name identifies this adapter for metrics, logs, and providers_used.
func (a *WhisperCLIAdapter) Name() string { return "Whisper.cpp" }

// Transcribe writes the canonical WAV to a temp file, invokes the whisper
// CLI, and reads back its .txt output, cleaning up all temp artifacts.
func (a *WhisperCLIAdapter) Transcribe(ctx context.Context, buffer *audio.Buffer) (Transcript, error) {
	if _, err := os.Stat(a.binPath); err != nil {
		return Transcript{}, ModelNotFoundError(a.binPath)
	}
	if _, err := os.Stat(a.modelPath); err != nil {
		return Transcript{}, ModelNotFoundError(a.modelPath)
	}

	duration := EffectiveDurationSecs(buffer)

	wavBytes, err := wavcodec.Encode(buffer)
	if err != nil {
		return Transcript{}, InvalidAudioError()
	}

	tmpDir := os.TempDir()
	stamp := strconv.FormatInt(time.Now().UnixNano(), 10)
	pid := os.Getpid()

	inputPath := filepath.Join(tmpDir, fmt.Sprintf("whisper_input_%d_%s.wav", pid, stamp))
	outputBase := filepath.Join(tmpDir, fmt.Sprintf("whisper_out_%d_%s", pid, stamp))

	if err := os.WriteFile(inputPath, wavBytes, 0o600); err != nil {
		return Transcript{}, ProviderError(err.Error())
	}
	defer func() {
		_ = os.Remove(inputPath)
		_ = os.Remove(outputBase + ".txt")
		_ = os.Remove(outputBase + ".vtt")
		_ = os.Remove(outputBase + ".srt")
	}()

	text, err := a.runWhisper(ctx, inputPath, outputBase)
	if err != nil {
		return Transcript{}, err
	}

	return Transcript{
		Text:         strings.TrimSpace(text),
		Confidence:   0.85,
		Language:     a.language,
		DurationSecs: duration,
		Provider:     a.Name(),
	}, nil
}

func (a *WhisperCLIAdapter) runWhisper(ctx context.Context, wavPath, outBase string) (string, error) {
	cmd := exec.CommandContext(ctx, a.binPath,
		"--model", a.modelPath,
		"--file", wavPath,
		"--output-txt",
		"--output-file", outBase,
		"--language", a.language,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", ProviderError(fmt.Sprintf("whisper failed: %s", strings.TrimSpace(string(out))))
	}

	txtPath := outBase + ".txt"
	if contents, readErr := os.ReadFile(txtPath); readErr == nil {
		return string(contents), nil
	}

	if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
		return trimmed, nil
	}

	return "", ProviderError("whisper produced no output")
}
