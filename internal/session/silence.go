package session

import (
	"math"
	"os"
	"strings"

	"github.com/rbright/dictacore/internal/audio"
)

// energyMetrics summarizes a segment's loudness for the silence gate.
type energyMetrics struct {
	rms         float64
	peak        float64
	speechRatio float64
}

// audioEnergyMetrics computes whole-buffer RMS/peak plus the fraction of
// ~20ms frames whose RMS clears a speech-presence floor.
func audioEnergyMetrics(buffer *audio.Buffer) energyMetrics {
	if buffer == nil || len(buffer.Samples) == 0 {
		return energyMetrics{}
	}

	var sumSquares, peak float64
	for _, sample := range buffer.Samples {
		normalized := float64(sample) / math.MaxInt16
		abs := math.Abs(normalized)
		sumSquares += normalized * normalized
		if abs > peak {
			peak = abs
		}
	}
	rms := math.Sqrt(sumSquares / float64(len(buffer.Samples)))

	channels := buffer.Channels
	if channels <= 0 {
		channels = 1
	}
	frameSize := buffer.SampleRate / 50
	if frameSize < 160 {
		frameSize = 160
	}
	frameSize *= channels

	var totalFrames, speechFrames int
	for idx := 0; idx < len(buffer.Samples); {
		end := idx + frameSize
		if end > len(buffer.Samples) {
			end = len(buffer.Samples)
		}
		frame := buffer.Samples[idx:end]
		if len(frame) > 0 {
			totalFrames++
			var frameSumSquares float64
			for _, sample := range frame {
				normalized := float64(sample) / math.MaxInt16
				frameSumSquares += normalized * normalized
			}
			frameRMS := math.Sqrt(frameSumSquares / float64(len(frame)))
			if frameRMS >= 0.003 {
				speechFrames++
			}
		}
		idx = end
	}

	speechRatio := 0.0
	if totalFrames > 0 {
		speechRatio = float64(speechFrames) / float64(totalFrames)
	}

	return energyMetrics{rms: rms, peak: peak, speechRatio: speechRatio}
}

// isProbableSilence applies the fixed thresholds that flag a segment as
// silence before it ever reaches a provider.
func isProbableSilence(m energyMetrics) bool {
	return m.rms < 0.0015 && m.peak < 0.010 && m.speechRatio < 0.015
}

// silenceGateEnabled reads the opt-in flag gating the silence check.
func silenceGateEnabled() bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv("DICTACORE_ENABLE_SILENCE_GATE")))
	switch value {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
