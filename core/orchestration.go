package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/koscakluka/quizvox-core/core/audio"
	"github.com/koscakluka/quizvox-core/core/speechtotext"
	"github.com/koscakluka/quizvox-core/core/texttospeech"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultSettleDelay = 150 * time.Millisecond

// State is a point-in-time snapshot of the orchestrator.
type State struct {
	IsSpeaking               bool
	IsListening              bool
	WasListeningBeforeSpeech bool
}

// Orchestrator is the mutual-exclusion engine between speech output and
// speech input: while speech output is active, input is suspended; after
// output completes, input resumes only if it was active before.
//
// All transitions run under one operation lock, so there is never an instant
// at which both output and input are active.
type Orchestrator struct {
	// opMu serializes speak/listen transitions. It is held for the whole of
	// a Speak call, including playback, which is what makes the mutual
	// exclusion guarantee hold without further coordination.
	opMu sync.Mutex

	stateMu sync.RWMutex
	state   State

	synthesizer SpeechSynthesizer
	playback    SpeechPlayback
	recognizer  SpeechRecognizer
	capture     AudioCapture

	cache *SpeechCache

	settleDelay    time.Duration
	lastListenStop time.Time
	language       string
	synthesisOpts  []texttospeech.SynthesisOption

	// handlerMu guards the single-subscriber handlers; last registration
	// wins, which is acceptable because only one listening context is ever
	// active.
	handlerMu         sync.Mutex
	transcriptHandler func(result speechtotext.Result)
	errorHandler      func(err error)

	baseContext context.Context
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		cache:       NewSpeechCache(),
		settleDelay: defaultSettleDelay,
		baseContext: context.Background(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Cache exposes the session-scoped speech cache so the session driver can
// clear it when the quiz ends.
func (o *Orchestrator) Cache() *SpeechCache { return o.cache }

// State returns a snapshot of the orchestrator flags. Safe to call from any
// goroutine, including while an utterance is playing.
func (o *Orchestrator) State() State {
	o.stateMu.RLock()
	defer o.stateMu.RUnlock()
	return o.state
}

// Speak suspends listening if it is active, synthesizes and plays text to
// completion, then resumes listening only if it was active before the call
// and the caller did not opt out. It resolves when playback finishes or
// fails; IsSpeaking is reset in all paths.
func (o *Orchestrator) Speak(ctx context.Context, text string, opts ...SpeakOption) error {
	options := SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()

	o.opMu.Lock()
	defer o.opMu.Unlock()

	if o.synthesizer == nil {
		return fmt.Errorf("no synthesizer configured")
	}

	clip, err := o.synthesizer.Synthesize(ctx, text, o.synthesisOpts...)
	if err != nil {
		recordedErr := fmt.Errorf("failed to synthesize speech: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	return o.playLocked(ctx, clip, options)
}

// SpeakCached plays the clip cached under key and reports whether it did. A
// pending or absent key returns false immediately without synthesizing; the
// caller falls back to Speak.
func (o *Orchestrator) SpeakCached(ctx context.Context, key string, opts ...SpeakOption) (bool, error) {
	options := SpeakOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	clip, ok := o.cache.Clip(key)
	if !ok {
		return false, nil
	}

	ctx, span := tracer.Start(ctx, "speak cached")
	defer span.End()

	o.opMu.Lock()
	defer o.opMu.Unlock()

	if err := o.playLocked(ctx, clip, options); err != nil {
		return true, err
	}
	return true, nil
}

// playLocked runs the suspend-play-resume protocol. Callers hold opMu.
func (o *Orchestrator) playLocked(ctx context.Context, clip *audio.Clip, options SpeakOptions) error {
	wasListening := o.State().IsListening
	o.setState(func(s *State) { s.WasListeningBeforeSpeech = wasListening })

	if wasListening {
		if err := o.stopListeningLocked(ctx); err != nil {
			logger.Warn("failed to suspend listening before speaking", "error", err)
		}
	}

	o.setState(func(s *State) { s.IsSpeaking = true })
	err := o.playClip(ctx, clip)
	o.setState(func(s *State) { s.IsSpeaking = false })

	if wasListening && !options.SkipListeningResume {
		if resumeErr := o.startListeningLocked(o.baseContext); resumeErr != nil {
			logger.Warn("failed to resume listening after speaking", "error", resumeErr)
		}
	}

	return err
}

// Pregenerate requests synthesis of text into the cache under key without
// blocking the caller. Idempotent per key: a key already being generated or
// already cached is a no-op.
func (o *Orchestrator) Pregenerate(ctx context.Context, key, text string) {
	if o.synthesizer == nil {
		return
	}

	if !o.cache.Begin(key) {
		return
	}

	go func() {
		ctx, span := tracer.Start(ctx, "pregenerate segment")
		defer span.End()

		clip, err := o.synthesizer.Synthesize(ctx, text, o.synthesisOpts...)
		if err != nil {
			o.cache.Fail(key)
			recordedErr := fmt.Errorf("failed to pregenerate segment %q: %w", key, err)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
			return
		}

		o.cache.Complete(key, clip)
	}()
}

// IsCached reports whether the clip for key is ready to play.
func (o *Orchestrator) IsCached(key string) bool { return o.cache.IsReady(key) }

// AwaitCached blocks, bounded by timeout, until the clip for key is ready.
// Used before the very first segment of a session to avoid dead air.
func (o *Orchestrator) AwaitCached(ctx context.Context, key string, timeout time.Duration) bool {
	return o.cache.AwaitReady(ctx, key, timeout)
}

// StopSpeaking halts any ongoing playback. The owning Speak call resolves.
func (o *Orchestrator) StopSpeaking() error {
	if o.playback == nil {
		return nil
	}
	return o.playback.Stop()
}

// StartListening opens the recognition stream and starts feeding it captured
// audio. Calling it while already listening is a silent no-op.
func (o *Orchestrator) StartListening(ctx context.Context) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()
	return o.startListeningLocked(ctx)
}

// StopListening closes the recognition stream. Calling it while already
// stopped is a silent no-op.
func (o *Orchestrator) StopListening(ctx context.Context) error {
	o.opMu.Lock()
	defer o.opMu.Unlock()
	return o.stopListeningLocked(ctx)
}

func (o *Orchestrator) startListeningLocked(ctx context.Context) error {
	if o.State().IsListening {
		logger.Debug("start listening requested while already listening")
		return nil
	}
	if o.recognizer == nil {
		return fmt.Errorf("no recognizer configured")
	}

	// The recognition engine misbehaves when restarted immediately after a
	// stop; wait out the remainder of the settle window.
	if sinceStop := time.Since(o.lastListenStop); sinceStop < o.settleDelay {
		time.Sleep(o.settleDelay - sinceStop)
	}

	listenOptions := []speechtotext.RecognitionOption{
		speechtotext.WithResultCallback(o.dispatchTranscript),
		speechtotext.WithErrorCallback(o.dispatchError),
	}
	if o.language != "" {
		listenOptions = append(listenOptions, speechtotext.WithLanguage(o.language))
	}
	if o.capture != nil {
		listenOptions = append(listenOptions, speechtotext.WithEncodingInfo(o.capture.EncodingInfo()))
	}

	if err := o.recognizer.Listen(ctx, listenOptions...); err != nil {
		return fmt.Errorf("failed to start recognition: %w", err)
	}

	if o.capture != nil {
		if err := o.capture.StartCapture(ctx, func(audio []byte) {
			if err := o.recognizer.SendAudio(audio); err != nil {
				logger.Warn("failed to forward captured audio", "error", err)
			}
		}); err != nil {
			stopErr := o.recognizer.Stop(ctx)
			if stopErr != nil {
				logger.Warn("failed to stop recognition after capture failure", "error", stopErr)
			}
			return fmt.Errorf("failed to start audio capture: %w", err)
		}
	}

	o.setState(func(s *State) { s.IsListening = true })
	return nil
}

func (o *Orchestrator) stopListeningLocked(ctx context.Context) error {
	if !o.State().IsListening {
		logger.Debug("stop listening requested while not listening")
		return nil
	}

	if o.capture != nil {
		if err := o.capture.StopCapture(); err != nil {
			logger.Warn("failed to stop audio capture", "error", err)
		}
	}

	var err error
	if o.recognizer != nil {
		err = o.recognizer.Stop(ctx)
	}

	o.setState(func(s *State) { s.IsListening = false })
	o.lastListenStop = time.Now()

	if err != nil {
		return fmt.Errorf("failed to stop recognition: %w", err)
	}
	return nil
}

// SetTranscriptHandler registers the single active final-transcript handler.
// The last registration wins.
func (o *Orchestrator) SetTranscriptHandler(handler func(result speechtotext.Result)) {
	o.handlerMu.Lock()
	defer o.handlerMu.Unlock()
	o.transcriptHandler = handler
}

func (o *Orchestrator) ClearTranscriptHandler() {
	o.SetTranscriptHandler(nil)
}

// SetErrorHandler registers the single active error handler for fatal
// recognition errors. The last registration wins.
func (o *Orchestrator) SetErrorHandler(handler func(err error)) {
	o.handlerMu.Lock()
	defer o.handlerMu.Unlock()
	o.errorHandler = handler
}

func (o *Orchestrator) dispatchTranscript(result speechtotext.Result) {
	if !result.IsFinal {
		return
	}

	o.handlerMu.Lock()
	handler := o.transcriptHandler
	o.handlerMu.Unlock()

	if handler != nil {
		handler(result)
	}
}

func (o *Orchestrator) dispatchError(err error) {
	if err == nil {
		return
	}

	if isBenignRecognitionError(err) {
		logger.Debug("ignoring benign recognition error", "error", err)
		return
	}

	o.handlerMu.Lock()
	handler := o.errorHandler
	o.handlerMu.Unlock()

	if handler != nil {
		handler(err)
	} else {
		logger.Warn("unhandled recognition error", "error", err)
	}
}

// isBenignRecognitionError classifies engine errors that carry no signal for
// the user: silence and deliberate aborts are part of normal operation.
func isBenignRecognitionError(err error) bool {
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "no speech") ||
		strings.Contains(message, "no-speech") ||
		strings.Contains(message, "aborted")
}

func (o *Orchestrator) setState(mutate func(*State)) {
	o.stateMu.Lock()
	defer o.stateMu.Unlock()
	mutate(&o.state)
}

func (o *Orchestrator) playClip(ctx context.Context, clip *audio.Clip) error {
	if clip.IsEmpty() || o.playback == nil {
		return nil
	}

	span := trace.SpanFromContext(ctx)

	if err := o.playback.Play(ctx, clip); err != nil {
		recordedErr := fmt.Errorf("failed to play clip: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return recordedErr
	}

	return nil
}
