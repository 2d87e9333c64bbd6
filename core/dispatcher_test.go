package orchestration

import (
	"testing"
	"time"

	"github.com/koscakluka/quizvox-core/core/speechtotext"
)

func finalResult(transcript string) speechtotext.Result {
	return speechtotext.Result{Transcript: transcript, IsFinal: true}
}

func TestDispatcherCollapsesBurstIntoLastTranscript(t *testing.T) {
	dispatched := make(chan string, 4)
	dispatcher := NewVoiceDispatcher(
		func(transcript string) { dispatched <- transcript },
		WithDebounceWindow(50*time.Millisecond),
	)

	dispatcher.Handle(finalResult("par"))
	dispatcher.Handle(finalResult("pari"))
	dispatcher.Handle(finalResult("paris"))

	select {
	case got := <-dispatched:
		if got != "paris" {
			t.Fatalf("expected last transcript dispatched, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for debounced dispatch")
	}

	select {
	case got := <-dispatched:
		t.Fatalf("expected a single dispatch for the burst, got extra %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherRestartsWindowOnEachTranscript(t *testing.T) {
	dispatched := make(chan string, 1)
	dispatcher := NewVoiceDispatcher(
		func(transcript string) { dispatched <- transcript },
		WithDebounceWindow(80*time.Millisecond),
	)

	dispatcher.Handle(finalResult("premier"))
	time.Sleep(40 * time.Millisecond)
	dispatcher.Handle(finalResult("second"))
	time.Sleep(40 * time.Millisecond)

	select {
	case got := <-dispatched:
		t.Fatalf("expected window restarted by second transcript, got early dispatch %q", got)
	default:
	}

	select {
	case got := <-dispatched:
		if got != "second" {
			t.Fatalf("expected latest transcript dispatched, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for dispatch after restarted window")
	}
}

func TestDispatcherIgnoresInterimAndShortTranscripts(t *testing.T) {
	dispatched := make(chan string, 2)
	dispatcher := NewVoiceDispatcher(
		func(transcript string) { dispatched <- transcript },
		WithDebounceWindow(30*time.Millisecond),
	)

	dispatcher.Handle(speechtotext.Result{Transcript: "paris", IsFinal: false})
	dispatcher.Handle(finalResult("ah"))

	select {
	case got := <-dispatched:
		t.Fatalf("expected interim and short transcripts ignored, got %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherImmediateCommandBypassesDebounce(t *testing.T) {
	dispatched := make(chan string, 1)
	commanded := make(chan struct{}, 1)

	dispatcher := NewVoiceDispatcher(
		func(transcript string) { dispatched <- transcript },
		WithDebounceWindow(60*time.Millisecond),
		WithImmediateCommands(VoiceCommand{
			Keywords: []string{"suivant"},
			Action:   func() { commanded <- struct{}{} },
		}),
	)

	dispatcher.Handle(finalResult("paris"))
	dispatcher.Handle(finalResult("question suivante"))

	select {
	case <-commanded:
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for immediate command")
	}

	// The command also cancels the pending debounce, so the earlier
	// transcript never fires.
	select {
	case got := <-dispatched:
		t.Fatalf("expected command to cancel pending dispatch, got %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDispatcherCancelDropsPendingTranscript(t *testing.T) {
	dispatched := make(chan string, 1)
	dispatcher := NewVoiceDispatcher(
		func(transcript string) { dispatched <- transcript },
		WithDebounceWindow(50*time.Millisecond),
	)

	dispatcher.Handle(finalResult("paris"))
	dispatcher.Cancel()

	select {
	case got := <-dispatched:
		t.Fatalf("expected cancel to drop pending transcript, got %q", got)
	case <-time.After(150 * time.Millisecond):
	}
}
