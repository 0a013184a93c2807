package core

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rbright/dictacore/internal/audio"
)

// debugAudioDumpEnabled reports whether DICTACORE_DEBUG_AUDIO_DUMP is set
// truthy, enabling a WAV dump of every captured buffer next to the runtime
// log for later inspection.
func debugAudioDumpEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DICTACORE_DEBUG_AUDIO_DUMP"))) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// dumpDebugAudio writes buffer to a timestamped WAV file under
// $XDG_STATE_HOME/dictacore/debug (or ~/.local/state) when the debug dump
// flag is set. Failures are logged, never returned to the caller, since a
// missing debug artifact must not fail a recording.
func (e *Engine) dumpDebugAudio(buffer *audio.Buffer) {
	if !debugAudioDumpEnabled() || buffer == nil || len(buffer.Samples) == 0 {
		return
	}

	path, err := debugAudioPath()
	if err != nil {
		e.logWarn(fmt.Sprintf("unable to resolve debug audio dump path: %v", err))
		return
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		e.logWarn(fmt.Sprintf("unable to create debug audio dump: %v", err))
		return
	}
	defer file.Close()

	if err := writePCM16WAV(file, buffer); err != nil {
		e.logWarn(fmt.Sprintf("unable to write debug audio dump: %v", err))
	}
}

func (e *Engine) logWarn(message string) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(message)
}

func debugAudioPath() (string, error) {
	stateDir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory for debug dump: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}

	debugDir := filepath.Join(stateDir, "dictacore", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	return filepath.Join(debugDir, fmt.Sprintf("audio-%s.wav", timestamp)), nil
}

// writePCM16WAV writes a buffer's int16 samples as a minimal little-endian
// WAV file.
func writePCM16WAV(file *os.File, buffer *audio.Buffer) error {
	channels := buffer.Channels
	if channels <= 0 {
		channels = 1
	}
	const bitsPerSample = 16
	byteRate := buffer.SampleRate * channels * (bitsPerSample / 8)
	blockAlign := channels * (bitsPerSample / 8)

	pcm := make([]byte, len(buffer.Samples)*2)
	for i, sample := range buffer.Samples {
		binary.LittleEndian.PutUint16(pcm[i*2:i*2+2], uint16(sample))
	}

	chunkSize := uint32(36 + len(pcm))
	subChunk2Size := uint32(len(pcm))

	header := make([]byte, 44)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], chunkSize)
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(buffer.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], subChunk2Size)

	if _, err := file.Write(header); err != nil {
		return err
	}
	_, err := file.Write(pcm)
	return err
}
