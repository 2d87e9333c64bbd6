package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/quizvox-core/core/quiz"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultTimeLimit        = 30 * time.Second
	defaultFirstSegmentWait = 3 * time.Second

	timeUpText = "Temps écoulé !"
)

type answerKind int

const (
	answerVoice answerKind = iota
	answerManual
	answerSkip
	answerRepeat
	answerHome
)

type answerEvent struct {
	kind   answerKind
	option int
}

type SessionOptions struct {
	onQuestion func(index int, question quiz.Question)
	onAnswer   func(index int, option int, correct bool)
	onTimeout  func(index int)
	onScore    func(score int)
	onFinished func(score int)
	onTick     func(index int, remaining time.Duration)
	onHome     func()

	firstSegmentWait time.Duration
	dispatcherOpts   []VoiceDispatcherOption
}

type SessionOption func(*SessionOptions)

func WithQuestionCallback(callback func(index int, question quiz.Question)) SessionOption {
	return func(o *SessionOptions) { o.onQuestion = callback }
}

func WithAnswerCallback(callback func(index int, option int, correct bool)) SessionOption {
	return func(o *SessionOptions) { o.onAnswer = callback }
}

func WithTimeoutCallback(callback func(index int)) SessionOption {
	return func(o *SessionOptions) { o.onTimeout = callback }
}

func WithScoreCallback(callback func(score int)) SessionOption {
	return func(o *SessionOptions) { o.onScore = callback }
}

func WithFinishedCallback(callback func(score int)) SessionOption {
	return func(o *SessionOptions) { o.onFinished = callback }
}

// WithTickCallback reports the remaining answer time once per second while
// a question is open.
func WithTickCallback(callback func(index int, remaining time.Duration)) SessionOption {
	return func(o *SessionOptions) { o.onTick = callback }
}

// WithHomeCallback is invoked when the user asks to leave the quiz.
func WithHomeCallback(callback func()) SessionOption {
	return func(o *SessionOptions) { o.onHome = callback }
}

// WithFirstSegmentWait bounds the dead-air gate before the first question.
func WithFirstSegmentWait(wait time.Duration) SessionOption {
	return func(o *SessionOptions) {
		if wait > 0 {
			o.firstSegmentWait = wait
		}
	}
}

// WithDispatcherOptions forwards options to the session's voice dispatcher.
func WithDispatcherOptions(opts ...VoiceDispatcherOption) SessionOption {
	return func(o *SessionOptions) { o.dispatcherOpts = opts }
}

// Session drives one quiz run: it owns the orchestrator's cancel token,
// sequences questions, matches spoken answers, keeps score, and enforces the
// per-question time limit. One Session instance drives at most one Run.
type Session struct {
	ID string

	orchestrator *Orchestrator
	sequencer    *SegmentSequencer
	dispatcher   *VoiceDispatcher
	token        *CancelToken

	questions []quiz.Question
	options   SessionOptions

	// answerChan receives at most one decisive event per question; extra
	// events for an already-settled question are dropped.
	answerChan chan answerEvent
	matcher    *AnswerMatcher

	score int
}

func NewSession(orchestrator *Orchestrator, questions []quiz.Question, opts ...SessionOption) *Session {
	options := SessionOptions{firstSegmentWait: defaultFirstSegmentWait}
	for _, opt := range opts {
		opt(&options)
	}

	s := &Session{
		ID:           uuid.NewString(),
		orchestrator: orchestrator,
		sequencer:    NewSegmentSequencer(orchestrator, questions),
		token:        NewCancelToken(),
		questions:    questions,
		options:      options,
		answerChan:   make(chan answerEvent, 1),
	}

	dispatcherOpts := append([]VoiceDispatcherOption{
		WithImmediateCommands(
			VoiceCommand{
				Keywords: []string{"menu", "accueil", "quitter"},
				Action:   func() { s.push(answerEvent{kind: answerHome}) },
			},
			VoiceCommand{
				Keywords: []string{"suivant", "suivante", "passer"},
				Action:   func() { s.push(answerEvent{kind: answerSkip}) },
			},
			VoiceCommand{
				Keywords: []string{"répète", "répéter", "répétez"},
				Action:   func() { s.push(answerEvent{kind: answerRepeat}) },
			},
		),
	}, options.dispatcherOpts...)
	s.dispatcher = NewVoiceDispatcher(s.handleTranscript, dispatcherOpts...)

	return s
}

// Score reports the points accumulated so far.
func (s *Session) Score() int { return s.score }

// Answer records a manual (non-voice) answer for the open question.
func (s *Session) Answer(option int) {
	s.push(answerEvent{kind: answerManual, option: option})
}

// Skip jumps to the next question without answering.
func (s *Session) Skip() { s.push(answerEvent{kind: answerSkip}) }

// Repeat replays the open question from the top.
func (s *Session) Repeat() { s.push(answerEvent{kind: answerRepeat}) }

// GoHome abandons the quiz.
func (s *Session) GoHome() { s.push(answerEvent{kind: answerHome}) }

// Run plays the quiz to completion. It returns when every question was
// played, the user left, or the context ended. The speech cache is cleared
// on the way out; a Session is not reusable.
func (s *Session) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "quiz session")
	defer span.End()

	defer func() {
		s.token.Bump()
		if err := s.orchestrator.StopListening(ctx); err != nil {
			logger.Warn("failed to stop listening at session end", "error", err)
		}
		s.orchestrator.ClearTranscriptHandler()
		s.orchestrator.Cache().Clear()
	}()

	if len(s.questions) == 0 {
		return fmt.Errorf("no questions to play")
	}

	// Gate on the first synthesized segment so the session does not open
	// with dead air, bounded so a slow engine cannot stall the start.
	if key, err := s.sequencer.PregenerateQuestionIntro(ctx, 0); err == nil {
		if !s.orchestrator.AwaitCached(ctx, key, s.options.firstSegmentWait) {
			logger.Debug("first segment not cached in time, speaking inline")
		}
	}

	for index := range s.questions {
		finished, err := s.playQuestion(ctx, index)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if finished {
			return nil
		}
	}

	if s.options.onFinished != nil {
		s.options.onFinished(s.score)
	}
	return nil
}

// playQuestion runs one question to its resolution. The returned bool is
// true when the session should end early (user navigated away, context
// done).
func (s *Session) playQuestion(ctx context.Context, index int) (bool, error) {
	question := s.questions[index]

	// Entering the question invalidates any straggling sequence from the
	// previous one.
	s.token.Bump()
	guard := s.token.Guard()

	s.matcher = NewAnswerMatcher(optionTexts(question))
	s.drainAnswers()
	s.dispatcher.Cancel()
	s.orchestrator.SetTranscriptHandler(s.dispatcher.Handle)

	if s.options.onQuestion != nil {
		s.options.onQuestion(index, question)
	}

	playDone := make(chan error, 1)
	go func(g Guard) { playDone <- s.sequencer.PlayQuestion(ctx, index, g) }(guard)

	timeLimit := question.TimeLimit
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimit
	}
	deadline := time.Now().Add(timeLimit)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()

		case err := <-playDone:
			playDone = nil
			if err != nil {
				logger.Warn("question playback failed", "error", err)
			}

		case <-ticker.C:
			remaining := time.Until(deadline)
			if s.options.onTick != nil && remaining >= 0 {
				s.options.onTick(index, remaining.Round(time.Second))
			}
			if remaining <= 0 {
				// Preempt any straggling in-flight sequence before the
				// time-up message.
				s.token.Bump()
				s.dispatcher.Cancel()
				return s.handleTimeout(ctx, index)
			}

		case event := <-s.answerChan:
			if event.kind == answerVoice || event.kind == answerManual {
				// An out-of-range tap is noise, not a verdict; the question
				// stays open and playback keeps going.
				if event.option < 0 || event.option >= len(question.Options) {
					logger.Debug("ignoring out-of-range answer option", "option", event.option)
					continue
				}
			}

			s.token.Bump()
			s.dispatcher.Cancel()

			switch event.kind {
			case answerHome:
				if s.options.onHome != nil {
					s.options.onHome()
				}
				return true, nil

			case answerSkip:
				if err := s.finishQuestion(ctx, index); err != nil {
					return false, err
				}
				return false, nil

			case answerRepeat:
				// Replay the question from the top with a fresh guard; the
				// segments are already cached so the replay is instant. The
				// deadline keeps running.
				if err := s.orchestrator.StopListening(ctx); err != nil {
					logger.Warn("failed to stop listening before repeat", "error", err)
				}
				guard = s.token.Guard()
				playDone = make(chan error, 1)
				go func(g Guard) { playDone <- s.sequencer.PlayQuestion(ctx, index, g) }(guard)

			default:
				return s.handleAnswer(ctx, index, event.option)
			}
		}
	}
}

// handleAnswer resolves the question for a validated option index.
func (s *Session) handleAnswer(ctx context.Context, index, option int) (bool, error) {
	question := s.questions[index]

	if err := s.orchestrator.StopListening(ctx); err != nil {
		logger.Warn("failed to stop listening after answer", "error", err)
	}

	correct := question.Options[option].Correct
	if correct {
		s.score += question.Points
		if s.options.onScore != nil {
			s.options.onScore(s.score)
		}
	}
	if s.options.onAnswer != nil {
		s.options.onAnswer(index, option, correct)
	}

	guard := s.token.Guard()
	if err := s.sequencer.SpeakFeedback(ctx, index, correct, guard); err != nil {
		logger.Warn("failed to speak feedback", "error", err)
	}

	if err := s.finishQuestion(ctx, index); err != nil {
		return false, err
	}
	return false, nil
}

func (s *Session) handleTimeout(ctx context.Context, index int) (bool, error) {
	if err := s.orchestrator.StopListening(ctx); err != nil {
		logger.Warn("failed to stop listening after timeout", "error", err)
	}

	if s.options.onTimeout != nil {
		s.options.onTimeout(index)
	}

	if err := s.orchestrator.Speak(ctx, timeUpText, WithoutListeningResume()); err != nil {
		logger.Warn("failed to speak time-up message", "error", err)
	}

	guard := s.token.Guard()
	if err := s.sequencer.SpeakFeedback(ctx, index, false, guard); err != nil {
		logger.Warn("failed to speak timeout feedback", "error", err)
	}

	if err := s.finishQuestion(ctx, index); err != nil {
		return false, err
	}
	return false, nil
}

// finishQuestion speaks the transition prompt unless this was the last
// question.
func (s *Session) finishQuestion(ctx context.Context, index int) error {
	s.orchestrator.ClearTranscriptHandler()

	if index+1 >= len(s.questions) {
		return nil
	}

	guard := s.token.Guard()
	return s.sequencer.SpeakNext(ctx, index, guard)
}

// handleTranscript receives debounced utterances and classifies them against
// the open question. No match is not an error: the user repeats, or the
// timeout fires.
func (s *Session) handleTranscript(transcript string) {
	matcher := s.matcher
	if matcher == nil {
		return
	}

	option, ok := matcher.Match(transcript)
	if !ok {
		logger.Debug("no option matched transcript", "transcript", transcript)
		return
	}

	s.push(answerEvent{kind: answerVoice, option: option})
}

func (s *Session) push(event answerEvent) {
	select {
	case s.answerChan <- event:
	default:
	}
}

func (s *Session) drainAnswers() {
	for {
		select {
		case <-s.answerChan:
		default:
			return
		}
	}
}

func optionTexts(question quiz.Question) []string {
	texts := make([]string, len(question.Options))
	for i, option := range question.Options {
		texts[i] = option.Text
	}
	return texts
}
