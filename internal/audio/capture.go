// Package audio handles device discovery, selection, real-time PCM capture,
// and the shared audio buffer container.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/rbright/dictacore/internal/fsm"
)

const (
	captureSampleRate = 16000
	captureChannels   = 1
)

const (
	stateIdle      fsm.State = "idle"
	stateRecording fsm.State = "recording"
)

const (
	eventStart fsm.Event = "start"
	eventStop  fsm.Event = "stop"
)

func captureTable() fsm.Table {
	return fsm.NewTable().
		Allow(stateIdle, eventStart, stateRecording).
		Allow(stateRecording, eventStop, stateIdle)
}

// ErrAlreadyRecording is returned by Start when capture is already active.
var ErrAlreadyRecording = errors.New("audio capture already recording")

// ErrNotRecording is returned by Stop when no capture is active.
var ErrNotRecording = errors.New("audio capture is not recording")

// LevelRef is a shared handle for the ~60Hz audio level meter. The capture
// callback writes; receivers poll.
type LevelRef struct {
	bits atomic.Uint32
}

// Load returns the latest normalized RMS level in [0, 1].
func (l *LevelRef) Load() float32 {
	return math.Float32frombits(l.bits.Load())
}

func (l *LevelRef) store(v float32) {
	l.bits.Store(math.Float32bits(v))
}

// Capture drives the Idle/Recording lifecycle for one PulseAudio input
// device, filling a shared Buffer on the driver-owned callback thread.
type Capture struct {
	machine *fsm.Machine

	mu     sync.Mutex
	buffer *Buffer
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	level LevelRef
}

// NewCapture creates a capture engine in the Idle state.
func NewCapture() *Capture {
	return &Capture{machine: fsm.NewMachine(captureTable(), stateIdle)}
}

// LevelHandle returns the shared level meter handle.
func (c *Capture) LevelHandle() *LevelRef {
	return &c.level
}

// Start resets the shared buffer and opens a capture stream on the given
// device. Fails if already recording.
func (c *Capture) Start(ctx context.Context, device Device) error {
	c.mu.Lock()
	if c.machine.Current() == stateRecording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	c.mu.Unlock()

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("dictacore"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	c.mu.Lock()
	c.buffer = NewBuffer(captureSampleRate, captureChannels)
	c.device = device
	c.mu.Unlock()

	writer := pulse.NewWriter(writerFunc(c.onPCM), pulseproto.FormatFloat32LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(captureSampleRate),
		pulse.RecordMediaName("dictacore dictation"),
	)
	if err != nil {
		client.Close()
		return fmt.Errorf("create pulse record stream: %w", err)
	}

	c.mu.Lock()
	c.client = client
	c.stream = stream
	c.mu.Unlock()

	stream.Start()

	if _, err := c.machine.Fire(eventStart); err != nil {
		_ = c.Stop()
		return err
	}

	go func() {
		<-ctx.Done()
		_ = c.Stop()
	}()

	return nil
}

// Stop closes the stream and returns a clone of the accumulated buffer,
// clearing the shared buffer. Fails if not recording.
func (c *Capture) Stop() (*Buffer, error) {
	c.mu.Lock()
	if c.machine.Current() != stateRecording {
		c.mu.Unlock()
		return nil, ErrNotRecording
	}
	stream := c.stream
	client := c.client
	c.stream = nil
	c.client = nil
	c.mu.Unlock()

	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	if client != nil {
		client.Close()
	}

	c.mu.Lock()
	out := c.buffer.Clone()
	c.buffer.Clear()
	c.mu.Unlock()

	if _, err := c.machine.Fire(eventStop); err != nil {
		return out, err
	}
	return out, nil
}

// Device returns the device currently (or most recently) captured from.
func (c *Capture) Device() Device {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.device
}

// onPCM converts float32LE frames into clamped int16 samples, appends them
// to the shared buffer, and publishes the normalized RMS level. It runs on
// the Pulse driver thread and must never suspend.
func (c *Capture) onPCM(frame []float32) (int, error) {
	if len(frame) == 0 {
		return 0, nil
	}

	samples := make([]int16, len(frame))
	var sumSquares float64
	for i, f := range frame {
		clamped := f
		if clamped > 1 {
			clamped = 1
		} else if clamped < -1 {
			clamped = -1
		}
		samples[i] = int16(clamped * math.MaxInt16)
		sumSquares += float64(clamped) * float64(clamped)
	}

	rms := math.Sqrt(sumSquares / float64(len(frame)))
	level := rms * 2.5
	if level > 1 {
		level = 1
	} else if level < 0 {
		level = 0
	}
	c.level.store(float32(level))

	c.mu.Lock()
	if c.buffer != nil {
		c.buffer.Append(samples)
	}
	c.mu.Unlock()

	return len(frame), nil
}

// writerFunc adapts a float32-frame callback to io.Writer for pulse.NewWriter.
type writerFunc func([]float32) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	frame := bytesToFloat32LE(b)
	n, err := f(frame)
	return n * 4, err
}

func bytesToFloat32LE(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		bits32 := uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
		out[i] = math.Float32frombits(bits32)
	}
	return out
}
