// Package doctor runs runtime readiness diagnostics for provider keys,
// local model paths, required binaries, and audio device selection.
package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes provider/environment/audio readiness checks against the
// resolved configuration.
func Run(cfg config.Config) Report {
	checks := []Check{
		checkEnv("XDG_SESSION_TYPE", func(v string) bool {
			return strings.EqualFold(strings.TrimSpace(v), "wayland")
		}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"),
		checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
			return strings.TrimSpace(v) != ""
		}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"),
		checkProviderKey("GROQ_API_KEY", "gsk_"),
		checkProviderKey("ELEVENLABS_API_KEY", "sk_"),
		checkWhisperPaths(),
		checkBinary("ffmpeg", "available for inspecting debug audio dumps"),
	}

	if cfg.Paste.Enable {
		checks = append(checks, checkBinary("hyprctl", "required to replay the paste shortcut"))
	}

	checks = append(checks, checkAudioSelection(cfg))

	return Report{Checks: checks}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkProviderKey reports whether a provider API key is set and matches
// its required prefix, mirroring orchestrator.FromEnv's acceptance rule.
func checkProviderKey(envVar, prefix string) Check {
	key := strings.TrimSpace(os.Getenv(envVar))
	if key == "" {
		return Check{Name: envVar, Pass: false, Message: "not set; provider will be skipped"}
	}
	if !strings.HasPrefix(key, prefix) {
		return Check{Name: envVar, Pass: false, Message: fmt.Sprintf("set but missing required %q prefix; provider will be skipped", prefix)}
	}
	return Check{Name: envVar, Pass: true, Message: "configured"}
}

// checkWhisperPaths reports whether the local whisper-cli adapter has both
// a usable binary and model path configured.
func checkWhisperPaths() Check {
	binPath := strings.TrimSpace(os.Getenv("WHISPER_CPP_BIN"))
	modelPath := strings.TrimSpace(os.Getenv("WHISPER_MODEL"))
	if binPath == "" || modelPath == "" {
		return Check{Name: "whisper", Pass: false, Message: "WHISPER_CPP_BIN/WHISPER_MODEL not set; local provider will be skipped"}
	}
	if _, err := os.Stat(binPath); err != nil {
		return Check{Name: "whisper", Pass: false, Message: fmt.Sprintf("WHISPER_CPP_BIN not found: %v", err)}
	}
	if _, err := os.Stat(modelPath); err != nil {
		return Check{Name: "whisper", Pass: false, Message: fmt.Sprintf("WHISPER_MODEL not found: %v", err)}
	}
	return Check{Name: "whisper", Pass: true, Message: "configured"}
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection issues.
func checkAudioSelection(cfg config.Config) Check {
	device, err := audio.SelectInputDevice(context.Background(), cfg.AudioInput)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	return Check{Name: "audio.device", Pass: true, Message: fmt.Sprintf("selected %q", device.DisplayName())}
}
