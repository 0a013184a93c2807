// Package core wires audio capture, STT failover, session stitching, and
// paste replay behind the small set of operations the shell is built
// against. Session entry points are serialized by the session stitcher's
// own mutex, not by Engine's; the capture callback takes neither and never
// suspends.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rbright/dictacore/internal/audio"
	"github.com/rbright/dictacore/internal/orchestrator"
	"github.com/rbright/dictacore/internal/paste"
	"github.com/rbright/dictacore/internal/session"
	"github.com/rbright/dictacore/internal/stt"
)

// ErrNotRecording is returned by StopRecording when capture is idle.
var ErrNotRecording = errors.New("core: not recording")

// ErrAlreadyRecording is returned by StartRecording when capture is active.
var ErrAlreadyRecording = errors.New("core: already recording")

// ErrMonitorNotActive is returned by StopMicMonitor when no monitor runs.
var ErrMonitorNotActive = errors.New("core: mic monitor not active")

// DeviceList is the result of list_input_devices: every enumerated device
// plus the one currently selected, if any.
type DeviceList struct {
	Devices  []audio.Device
	Selected *audio.Device
}

// Engine is the boundary glue between the dictation shell and the core
// audio/STT/session/paste subsystems.
type Engine struct {
	logger       *slog.Logger
	orchestrator *orchestrator.Orchestrator
	stitcher     *session.Stitcher
	paste        *paste.Context

	mu               sync.Mutex
	devicePreference string
	device           *audio.Device
	capture          *audio.Capture
	monitor          *audio.Capture
}

// New builds an engine from a configured orchestrator (see
// orchestrator.FromEnv) and the paste-replay shortcut to dispatch on
// paste_text.
func New(orch *orchestrator.Orchestrator, pasteShortcut string, logger *slog.Logger) *Engine {
	return &Engine{
		logger:       logger,
		orchestrator: orch,
		stitcher:     session.New(orch, logger),
		paste:        paste.New(pasteShortcut),
	}
}

// ListInputDevices enumerates live input devices and reports the selection.
func (e *Engine) ListInputDevices(ctx context.Context) (DeviceList, error) {
	devices, err := audio.ListInputDevices(ctx)
	if err != nil {
		return DeviceList{}, err
	}

	e.mu.Lock()
	selected := e.device
	e.mu.Unlock()

	return DeviceList{Devices: devices, Selected: selected}, nil
}

// SelectInputDevice resolves preference against the live device list and
// stores it for subsequent StartRecording/StartMicMonitor calls.
func (e *Engine) SelectInputDevice(ctx context.Context, preference string) error {
	device, err := audio.SelectInputDevice(ctx, preference)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.devicePreference = preference
	e.device = &device
	e.mu.Unlock()
	return nil
}

// resolveDevice returns the stored selection, falling back to the default
// selection heuristic when nothing has been explicitly chosen yet.
func (e *Engine) resolveDevice(ctx context.Context) (audio.Device, error) {
	e.mu.Lock()
	if e.device != nil {
		device := *e.device
		e.mu.Unlock()
		return device, nil
	}
	preference := e.devicePreference
	e.mu.Unlock()

	device, err := audio.SelectInputDevice(ctx, preference)
	if err != nil {
		return audio.Device{}, err
	}

	e.mu.Lock()
	e.device = &device
	e.mu.Unlock()
	return device, nil
}

// StartRecording resolves the input device, captures the current foreground
// window as the paste target, and starts filling the capture buffer.
func (e *Engine) StartRecording(ctx context.Context, selfWindowAddress string) error {
	device, err := e.resolveDevice(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.capture != nil {
		e.mu.Unlock()
		return ErrAlreadyRecording
	}
	capture := audio.NewCapture()
	e.capture = capture
	e.mu.Unlock()

	e.paste.CaptureTarget(ctx, selfWindowAddress)

	if err := capture.Start(ctx, device); err != nil {
		e.mu.Lock()
		e.capture = nil
		e.mu.Unlock()
		return err
	}
	return nil
}

// StopRecording stops capture and returns the accumulated buffer.
func (e *Engine) StopRecording() (*audio.Buffer, error) {
	e.mu.Lock()
	capture := e.capture
	e.capture = nil
	e.mu.Unlock()

	if capture == nil {
		return nil, ErrNotRecording
	}
	buffer, err := capture.Stop()
	if buffer != nil {
		e.dumpDebugAudio(buffer)
	}
	return buffer, err
}

// StartMicMonitor starts a capture solely to drive the audio-level event
// (see LevelHandle); its accumulated buffer is discarded on stop.
func (e *Engine) StartMicMonitor(ctx context.Context) error {
	device, err := e.resolveDevice(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.monitor != nil {
		e.mu.Unlock()
		return ErrAlreadyRecording
	}
	monitor := audio.NewCapture()
	e.monitor = monitor
	e.mu.Unlock()

	if err := monitor.Start(ctx, device); err != nil {
		e.mu.Lock()
		e.monitor = nil
		e.mu.Unlock()
		return err
	}
	return nil
}

// StopMicMonitor stops the level-only capture started by StartMicMonitor.
func (e *Engine) StopMicMonitor() error {
	e.mu.Lock()
	monitor := e.monitor
	e.monitor = nil
	e.mu.Unlock()

	if monitor == nil {
		return ErrMonitorNotActive
	}
	_, err := monitor.Stop()
	return err
}

// LevelHandle returns the shared level-meter handle for whichever capture
// (recording or monitor) is currently active, or nil when neither runs. The
// shell's ~60Hz emitter task polls this directly; it never suspends.
func (e *Engine) LevelHandle() *audio.LevelRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.capture != nil:
		return e.capture.LevelHandle()
	case e.monitor != nil:
		return e.monitor.LevelHandle()
	default:
		return nil
	}
}

// TranscribeAudio runs one standalone transcription through the failover
// orchestrator, independent of any recording session.
func (e *Engine) TranscribeAudio(ctx context.Context, buffer *audio.Buffer) (stt.Transcript, error) {
	transcript, err := e.orchestrator.Transcribe(ctx, buffer)
	if err != nil {
		return stt.Transcript{}, errors.New(session.MapOrchestratorError(err))
	}
	return transcript, nil
}

// StartRecordingSession begins a new segmented stitching session.
func (e *Engine) StartRecordingSession() (string, error) {
	return e.stitcher.StartSession()
}

// AddAudioSegment transcribes one segment and stitches its text against the
// running session.
func (e *Engine) AddAudioSegment(ctx context.Context, buffer *audio.Buffer) (session.SegmentResult, error) {
	e.dumpDebugAudio(buffer)
	return e.stitcher.AddSegment(ctx, buffer)
}

// FinalizeRecordingSession closes the active session and returns its
// stitched transcript.
func (e *Engine) FinalizeRecordingSession() (session.StitchedResult, error) {
	return e.stitcher.FinalizeSession()
}

// GetSessionProgress reports the in-flight session's segment count, total
// duration, and stitched-so-far text.
func (e *Engine) GetSessionProgress() session.Progress {
	return e.stitcher.GetProgress()
}

// PasteText replays the captured foreground window and dispatches the
// paste shortcut. The target is single-shot regardless of outcome.
func (e *Engine) PasteText(ctx context.Context, selfWindowAddress string) paste.Attempt {
	return e.paste.TryAutoPaste(ctx, selfWindowAddress)
}

// describeDevice formats device metadata as "description (id)", or as
// whichever of the two is non-empty. Nothing in the package calls it.
func describeDevice(device audio.Device) string {
	description := strings.TrimSpace(device.Description)
	id := strings.TrimSpace(device.ID)
	switch {
	case description == "":
		return id
	case id == "":
		return description
	default:
		return fmt.Sprintf("%s (%s)", description, id)
	}
}
