package deepgram

import (
	"fmt"

	"github.com/koscakluka/quizvox-core/core/audio"
)

type encodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

type encodingFormat string

func (e encodingFormat) Name() string { return string(e) }

const encodingLinear16 encodingFormat = "linear16"

// convertEncoding maps the capture pipeline's encoding onto listen API
// parameters. The pipeline produces linear16 PCM only; anything else is a
// wiring mistake, not a format to transcode.
func convertEncoding(encoding audio.EncodingInfo) (*encodingInfo, error) {
	switch encoding.SampleRate {
	case 8000, 16000, 24000, 32000, 48000:
	default:
		return nil, fmt.Errorf("unsupported sample rate %d", encoding.SampleRate)
	}

	if encoding.Format != audio.EncodingLinear16 {
		return nil, fmt.Errorf("unsupported encoding %q", encoding.Format.Name())
	}

	return &encodingInfo{SampleRate: encoding.SampleRate, Format: encodingLinear16}, nil
}
