package speechtotext

import "github.com/koscakluka/quizvox-core/core/audio"

// Result is one recognized utterance, interim or final, as reported by the
// recognition engine.
type Result struct {
	Transcript string
	IsFinal    bool
	// Confidence is the engine's confidence in the transcript in [0, 1].
	// Zero when the engine does not report one.
	Confidence float64
}

type RecognitionOptions struct {
	InterimResultCallback func(result Result)
	ResultCallback        func(result Result)

	SpeechStartedCallback func()
	SpeechEndedCallback   func()

	// ErrorCallback is called when the recognition engine reports an error.
	// Engines call it for every error; classification of benign errors is the
	// caller's concern.
	ErrorCallback func(err error)

	// Language is a BCP-47 language tag for the recognition model.
	Language string

	EncodingInfo audio.EncodingInfo
}

type RecognitionOption func(*RecognitionOptions)

func WithResultCallback(callback func(result Result)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ResultCallback = callback
	}
}

func WithInterimResultCallback(callback func(result Result)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.InterimResultCallback = callback
	}
}

func WithSpeechStartedCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.SpeechStartedCallback = callback
	}
}

func WithSpeechEndedCallback(callback func()) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.SpeechEndedCallback = callback
	}
}

func WithErrorCallback(callback func(err error)) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.ErrorCallback = callback
	}
}

func WithLanguage(language string) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.Language = language
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) RecognitionOption {
	return func(o *RecognitionOptions) {
		o.EncodingInfo = encodingInfo
	}
}
