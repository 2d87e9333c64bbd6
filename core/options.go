package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/quizvox-core/core/audio"
	"github.com/koscakluka/quizvox-core/core/speechtotext"
	"github.com/koscakluka/quizvox-core/core/texttospeech"
)

type OrchestratorOption func(*Orchestrator)

// SpeechSynthesizer converts text into a playable clip. Implemented by
// engine adapters such as texttospeech/deepgram.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, opts ...texttospeech.SynthesisOption) (*audio.Clip, error)
}

func WithSynthesizer(client SpeechSynthesizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.synthesizer = client
	}
}

// SpeechPlayback plays one clip to completion. Play resolves when the audio
// has finished or Stop was called.
type SpeechPlayback interface {
	Play(ctx context.Context, clip *audio.Clip) error
	Stop() error
}

func WithPlayback(client SpeechPlayback) OrchestratorOption {
	return func(o *Orchestrator) {
		o.playback = client
	}
}

// SpeechRecognizer is a continuous-recognition engine session. Listen opens
// the stream; results and errors flow through recognition option callbacks.
type SpeechRecognizer interface {
	Listen(ctx context.Context, opts ...speechtotext.RecognitionOption) error
	SendAudio(audio []byte) error
	Stop(ctx context.Context) error
}

func WithRecognizer(client SpeechRecognizer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.recognizer = client
	}
}

// AudioCapture feeds microphone audio to the recognizer while listening is
// active.
type AudioCapture interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() audio.EncodingInfo
}

func WithAudioCapture(client AudioCapture) OrchestratorOption {
	return func(o *Orchestrator) {
		o.capture = client
	}
}

// WithSettleDelay overrides the pause enforced between stopping listening
// and the next start, used to avoid engine-level "already running" failures.
func WithSettleDelay(delay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if delay >= 0 {
			o.settleDelay = delay
		}
	}
}

// WithRecognitionLanguage sets the BCP-47 tag passed to the recognizer.
func WithRecognitionLanguage(language string) OrchestratorOption {
	return func(o *Orchestrator) {
		if language != "" {
			o.language = language
		}
	}
}

// WithSynthesisOptions sets default synthesis options (rate, pitch, volume)
// applied to every Speak and Pregenerate call.
func WithSynthesisOptions(opts ...texttospeech.SynthesisOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.synthesisOpts = opts
	}
}

type SpeakOptions struct {
	// SkipListeningResume leaves listening off after the utterance even if
	// it was active before, for callers that are about to start their own
	// listening context.
	SkipListeningResume bool
}

type SpeakOption func(*SpeakOptions)

func WithoutListeningResume() SpeakOption {
	return func(o *SpeakOptions) {
		o.SkipListeningResume = true
	}
}
