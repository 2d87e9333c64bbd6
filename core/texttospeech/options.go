package texttospeech

import "github.com/koscakluka/quizvox-core/core/audio"

// SynthesisOptions carries prosody and encoding preferences. Engines apply
// what they support; the Deepgram aura adapter honors EncodingInfo only and
// ignores Rate, Pitch, and Volume (the speak API has no prosody parameters).
type SynthesisOptions struct {
	// Rate is the speaking rate multiplier, 1.0 is the engine default.
	Rate float64
	// Pitch is the pitch multiplier, 1.0 is the engine default.
	Pitch float64
	// Volume is the playback gain, 1.0 is the engine default.
	Volume float64

	EncodingInfo audio.EncodingInfo
}

type SynthesisOption func(*SynthesisOptions)

func DefaultSynthesisOptions() SynthesisOptions {
	return SynthesisOptions{
		Rate:         1.0,
		Pitch:        1.0,
		Volume:       1.0,
		EncodingInfo: audio.GetDefaultEncodingInfo(),
	}
}

func WithRate(rate float64) SynthesisOption {
	return func(o *SynthesisOptions) {
		if rate > 0 {
			o.Rate = rate
		}
	}
}

func WithPitch(pitch float64) SynthesisOption {
	return func(o *SynthesisOptions) {
		if pitch > 0 {
			o.Pitch = pitch
		}
	}
}

func WithVolume(volume float64) SynthesisOption {
	return func(o *SynthesisOptions) {
		if volume >= 0 {
			o.Volume = volume
		}
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) SynthesisOption {
	return func(o *SynthesisOptions) {
		o.EncodingInfo = encodingInfo
	}
}
