package orchestration

import (
	"context"
	"testing"
	"time"

	"github.com/koscakluka/quizvox-core/core/quiz"
	"github.com/koscakluka/quizvox-core/core/speechtotext"
)

type sessionRig struct {
	orchestrator *Orchestrator
	playback     *scriptedPlayback
	recognizer   *scriptedRecognizer
	session      *Session

	questions chan int
	answers   chan [2]int
	timeouts  chan int
	finished  chan int
	home      chan struct{}

	runDone chan error
}

func newSessionRig(t *testing.T, questions []quiz.Question, opts ...SessionOption) *sessionRig {
	t.Helper()

	orchestrator, _, playback, recognizer := newTestOrchestrator()

	rig := &sessionRig{
		orchestrator: orchestrator,
		playback:     playback,
		recognizer:   recognizer,
		questions:    make(chan int, len(questions)+1),
		answers:      make(chan [2]int, len(questions)+1),
		timeouts:     make(chan int, len(questions)+1),
		finished:     make(chan int, 1),
		home:         make(chan struct{}, 1),
		runDone:      make(chan error, 1),
	}

	base := []SessionOption{
		WithQuestionCallback(func(index int, _ quiz.Question) {
			rig.questions <- index
		}),
		WithAnswerCallback(func(index, option int, correct bool) {
			outcome := 0
			if correct {
				outcome = 1
			}
			rig.answers <- [2]int{option, outcome}
		}),
		WithTimeoutCallback(func(index int) { rig.timeouts <- index }),
		WithFinishedCallback(func(score int) { rig.finished <- score }),
		WithHomeCallback(func() { rig.home <- struct{}{} }),
		WithDispatcherOptions(WithDebounceWindow(20 * time.Millisecond)),
		WithFirstSegmentWait(time.Second),
	}
	rig.session = NewSession(orchestrator, questions, append(base, opts...)...)
	return rig
}

func (r *sessionRig) run(ctx context.Context) {
	go func() { r.runDone <- r.session.Run(ctx) }()
}

func (r *sessionRig) awaitQuestion(t *testing.T, index int) {
	t.Helper()
	select {
	case got := <-r.questions:
		if got != index {
			t.Fatalf("expected question %d announced, got %d", index, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for question %d", index)
	}
}

func (r *sessionRig) awaitListening(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.recognizer.isListening() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for listening to start")
}

func (r *sessionRig) speak(transcript string) {
	r.recognizer.emitResult(speechtotext.Result{Transcript: transcript, IsFinal: true})
}

func (r *sessionRig) awaitDone(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.runDone:
		return err
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for session to end")
		return nil
	}
}

func TestSessionVoiceAnswerEndToEnd(t *testing.T) {
	rig := newSessionRig(t, historyQuestions()[:1])
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.awaitListening(t)
	rig.speak("alpha")

	select {
	case got := <-rig.answers:
		if got[0] != 0 || got[1] != 1 {
			t.Fatalf("expected correct answer on option 0, got option %d correct=%d", got[0], got[1])
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for answer")
	}

	select {
	case score := <-rig.finished:
		if score != 10 {
			t.Fatalf("expected final score 10, got %d", score)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session finish")
	}

	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}

	state := rig.orchestrator.State()
	if state.IsSpeaking || state.IsListening {
		t.Fatalf("expected quiet final state, got %+v", state)
	}
	if got := rig.orchestrator.Cache().Len(); got != 0 {
		t.Fatalf("expected speech cache cleared at session end, got %d entries", got)
	}
}

func TestSessionIncorrectVoiceAnswerScoresNothing(t *testing.T) {
	rig := newSessionRig(t, historyQuestions()[:1])
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.awaitListening(t)
	rig.speak("je pense que c'est Lyon")

	select {
	case got := <-rig.answers:
		if got[0] != 1 || got[1] != 0 {
			t.Fatalf("expected incorrect answer on option 1, got option %d correct=%d", got[0], got[1])
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for answer")
	}

	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
	if got := rig.session.Score(); got != 0 {
		t.Fatalf("expected score 0 after wrong answer, got %d", got)
	}
}

func TestSessionManualAnswerAdvancesToNextQuestion(t *testing.T) {
	rig := newSessionRig(t, historyQuestions())
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.session.Answer(0)

	select {
	case got := <-rig.answers:
		if got[0] != 0 || got[1] != 1 {
			t.Fatalf("expected correct manual answer, got option %d correct=%d", got[0], got[1])
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for manual answer")
	}

	rig.awaitQuestion(t, 1)
	rig.session.Answer(0)

	select {
	case score := <-rig.finished:
		if score != 20 {
			t.Fatalf("expected final score 20, got %d", score)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session finish")
	}
	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
}

func TestSessionSkipMovesOnWithoutScoring(t *testing.T) {
	rig := newSessionRig(t, historyQuestions())
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.session.Skip()

	rig.awaitQuestion(t, 1)
	rig.session.Answer(0)

	select {
	case score := <-rig.finished:
		if score != 10 {
			t.Fatalf("expected only the answered question scored, got %d", score)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for session finish")
	}
	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
}

func TestSessionVoiceCommandSkips(t *testing.T) {
	rig := newSessionRig(t, historyQuestions())
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.awaitListening(t)
	rig.speak("question suivante")

	rig.awaitQuestion(t, 1)
	rig.session.GoHome()

	select {
	case <-rig.home:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for home")
	}
	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
}

func TestSessionVoiceCommandGoesHome(t *testing.T) {
	rig := newSessionRig(t, historyQuestions())
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.awaitListening(t)
	rig.speak("retour au menu")

	select {
	case <-rig.home:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for home")
	}
	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}

	select {
	case score := <-rig.finished:
		t.Fatalf("expected no finished callback after leaving early, got score %d", score)
	default:
	}
}

func TestSessionRepeatReplaysQuestion(t *testing.T) {
	rig := newSessionRig(t, historyQuestions()[:1])
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.awaitListening(t)
	rig.speak("répète la question")

	// The question and its options play a second time, then listening
	// reopens for the answer.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(rig.playback.playedTexts()) >= 10 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(rig.playback.playedTexts()); got < 10 {
		t.Fatalf("expected question segments replayed, got %d plays", got)
	}

	rig.awaitListening(t)
	rig.speak("alpha")

	select {
	case got := <-rig.answers:
		if got[0] != 0 || got[1] != 1 {
			t.Fatalf("expected correct answer after repeat, got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for answer after repeat")
	}
	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
}

func TestSessionTimeoutSpeaksTimeUpAndFeedback(t *testing.T) {
	questions := historyQuestions()[:1]
	questions[0].TimeLimit = 500 * time.Millisecond

	rig := newSessionRig(t, questions)
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)

	select {
	case got := <-rig.timeouts:
		if got != 0 {
			t.Fatalf("expected timeout on question 0, got %d", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for the question timeout")
	}

	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}

	played := rig.playback.playedTexts()
	sawTimeUp := false
	sawFeedback := false
	for _, text := range played {
		if text == "Temps écoulé !" {
			sawTimeUp = true
		}
		if text == "Mauvaise réponse. La bonne réponse était A, Paris." {
			sawFeedback = true
		}
	}
	if !sawTimeUp || !sawFeedback {
		t.Fatalf("expected time-up message and incorrect feedback, got %v", played)
	}
	if got := rig.session.Score(); got != 0 {
		t.Fatalf("expected no points after timeout, got %d", got)
	}
}

func TestSessionIgnoresOutOfRangeManualAnswer(t *testing.T) {
	rig := newSessionRig(t, historyQuestions()[:1])
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.session.Answer(7)
	rig.session.Answer(-1)

	select {
	case got := <-rig.answers:
		t.Fatalf("expected out-of-range taps ignored, got %v", got)
	case <-time.After(200 * time.Millisecond):
	}

	// The question is still open; a valid tap resolves it normally.
	rig.session.Answer(0)

	select {
	case got := <-rig.answers:
		if got[0] != 0 || got[1] != 1 {
			t.Fatalf("expected correct answer after invalid taps, got %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for valid answer")
	}

	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
	if got := rig.session.Score(); got != 10 {
		t.Fatalf("expected the valid answer scored, got %d", got)
	}
}

func TestSessionUnmatchedSpeechDoesNotAnswer(t *testing.T) {
	rig := newSessionRig(t, historyQuestions()[:1])
	rig.run(context.Background())

	rig.awaitQuestion(t, 0)
	rig.awaitListening(t)
	rig.speak("euh je ne sais pas du tout")

	select {
	case got := <-rig.answers:
		t.Fatalf("expected no answer from unmatched speech, got %v", got)
	case <-time.After(200 * time.Millisecond):
	}

	rig.session.GoHome()
	if err := rig.awaitDone(t); err != nil {
		t.Fatalf("expected session to end cleanly, got %v", err)
	}
}

func TestSessionWithoutQuestionsFails(t *testing.T) {
	orchestrator, _, _, _ := newTestOrchestrator()
	session := NewSession(orchestrator, nil)

	if err := session.Run(context.Background()); err == nil {
		t.Fatalf("expected run without questions to fail")
	}
}

func TestSessionStopsWhenContextEnds(t *testing.T) {
	rig := newSessionRig(t, historyQuestions())
	ctx, cancel := context.WithCancel(context.Background())
	rig.run(ctx)

	rig.awaitQuestion(t, 0)
	cancel()

	if err := rig.awaitDone(t); err == nil {
		t.Fatalf("expected context error from interrupted session")
	}
}
