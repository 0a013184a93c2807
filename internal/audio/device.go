package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// loopbackPatterns are case-insensitive substrings that mark a device as a
// loopback/monitor source rather than a real microphone.
var loopbackPatterns = []string{
	"stereo mix",
	"what u hear",
	"wave out",
	"loopback",
	"monitor",
	"output",
	"saida",
	"magic sound",
	"virtual",
	"voice changer",
	"vb-audio",
	"cable",
}

// micPatterns are case-insensitive substrings that suggest a genuine
// microphone device during the scored fallback scan.
var micPatterns = []string{
	"mic",
	"headset",
	"array",
	"usb",
	"webcam",
}

// Device describes one available audio input source.
type Device struct {
	ID          string
	Description string
	Default     bool
}

// DisplayName falls back from description to id to a fixed placeholder, per
// the capture device enumeration contract.
func (d Device) DisplayName() string {
	if strings.TrimSpace(d.Description) != "" {
		return d.Description
	}
	if strings.TrimSpace(d.ID) != "" {
		return d.ID
	}
	return "Unknown input"
}

func looksLikeLoopback(d Device) bool {
	name := strings.ToLower(d.DisplayName())
	for _, pattern := range loopbackPatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func looksLikeMicrophone(d Device) bool {
	name := strings.ToLower(d.DisplayName())
	for _, pattern := range micPatterns {
		if strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

// ListInputDevices enumerates live PulseAudio input sources.
func ListInputDevices(_ context.Context) ([]Device, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("dictacore"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          source.SourceName,
			Description: source.Device,
			Default:     source.SourceName == defaultID,
		})
	}
	return devices, nil
}

// SelectInputDevice resolves a display-name preference against the live
// device list using the selection heuristic from the capture device
// contract: preference match (non-loopback) -> system default (non-loopback)
// -> scored scan (mic keyword -> first non-loopback -> first device). An
// empty device list is an error.
func SelectInputDevice(ctx context.Context, preference string) (Device, error) {
	devices, err := ListInputDevices(ctx)
	if err != nil {
		return Device{}, err
	}
	return selectFromList(devices, preference)
}

func selectFromList(devices []Device, preference string) (Device, error) {
	if len(devices) == 0 {
		return Device{}, fmt.Errorf("no audio input devices found")
	}

	preference = strings.TrimSpace(preference)

	var defaultDevice *Device
	for i := range devices {
		if devices[i].Default {
			defaultDevice = &devices[i]
			break
		}
	}

	if preference != "" {
		lowerPref := strings.ToLower(preference)
		for i := range devices {
			if strings.ToLower(devices[i].DisplayName()) == lowerPref && !looksLikeLoopback(devices[i]) {
				return devices[i], nil
			}
		}
	}

	if defaultDevice != nil && !looksLikeLoopback(*defaultDevice) {
		return *defaultDevice, nil
	}

	var firstMic, firstNonLoopback *Device
	for i := range devices {
		if firstMic == nil && looksLikeMicrophone(devices[i]) {
			firstMic = &devices[i]
		}
		if firstNonLoopback == nil && !looksLikeLoopback(devices[i]) {
			firstNonLoopback = &devices[i]
		}
	}

	switch {
	case firstMic != nil:
		return *firstMic, nil
	case firstNonLoopback != nil:
		return *firstNonLoopback, nil
	default:
		return devices[0], nil
	}
}
