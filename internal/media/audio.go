package media

import (
	"bytes"

	"github.com/go-audio/wav"

	"github.com/spacesedan/echomind/internal/errs"
)

// AudioInfo describes a validated voice sample.
type AudioInfo struct {
	SampleRate  uint32
	NumChannels uint16
}

// ValidateWAV checks that the payload is a readable, non-empty waveform
// with a known sample rate. Runs before any model invocation so malformed
// input never wastes an inference call.
func ValidateWAV(data []byte) (AudioInfo, error) {
	if len(data) == 0 {
		return AudioInfo{}, errs.Validation("empty audio payload")
	}

	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return AudioInfo{}, errs.Validation("unreadable audio: not a valid WAV container")
	}
	if decoder.SampleRate == 0 {
		return AudioInfo{}, errs.Validation("unreadable audio: unknown sample rate")
	}

	duration, err := decoder.Duration()
	if err != nil {
		return AudioInfo{}, errs.ValidationWrap(err, "unreadable audio")
	}
	if duration <= 0 {
		return AudioInfo{}, errs.Validation("audio clip contains no samples")
	}

	return AudioInfo{
		SampleRate:  decoder.SampleRate,
		NumChannels: decoder.NumChans,
	}, nil
}
