package orchestration

import (
	"sync"
	"time"

	"github.com/koscakluka/quizvox-core/core/speechtotext"
)

const (
	defaultDebounceWindow      = 800 * time.Millisecond
	defaultMinTranscriptLength = 3
)

// VoiceDispatcher collapses bursts of final transcripts into a single
// dispatch: each qualifying transcript restarts a short debounce window, and
// only the transcript still current when the window elapses is evaluated.
// Fixed interrupt commands bypass the window and fire immediately.
type VoiceDispatcher struct {
	mu             sync.Mutex
	timer          *time.Timer
	lastTranscript string

	window    time.Duration
	minLength int
	immediate []VoiceCommand

	dispatch func(transcript string)
}

type VoiceDispatcherOption func(*VoiceDispatcher)

// WithDebounceWindow overrides the settle window after the last qualifying
// transcript.
func WithDebounceWindow(window time.Duration) VoiceDispatcherOption {
	return func(d *VoiceDispatcher) {
		if window > 0 {
			d.window = window
		}
	}
}

// WithMinTranscriptLength overrides the noise filter threshold.
func WithMinTranscriptLength(length int) VoiceDispatcherOption {
	return func(d *VoiceDispatcher) {
		if length >= 0 {
			d.minLength = length
		}
	}
}

// WithImmediateCommands registers interrupt commands that fire without
// debouncing, so navigation works even mid-utterance.
func WithImmediateCommands(commands ...VoiceCommand) VoiceDispatcherOption {
	return func(d *VoiceDispatcher) {
		d.immediate = commands
	}
}

func NewVoiceDispatcher(dispatch func(transcript string), opts ...VoiceDispatcherOption) *VoiceDispatcher {
	d := &VoiceDispatcher{
		window:    defaultDebounceWindow,
		minLength: defaultMinTranscriptLength,
		dispatch:  dispatch,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Handle processes one recognition result. Interim results and transcripts
// below the noise threshold are ignored; immediate commands execute inline;
// everything else (re)starts the debounce window.
func (d *VoiceDispatcher) Handle(result speechtotext.Result) {
	if !result.IsFinal {
		return
	}

	transcript := result.Transcript
	if len([]rune(transcript)) < d.minLength {
		return
	}

	if command, ok := MatchCommand(transcript, d.immediate); ok {
		d.Cancel()
		if command.Action != nil {
			command.Action()
		}
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.lastTranscript = transcript
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *VoiceDispatcher) fire() {
	d.mu.Lock()
	transcript := d.lastTranscript
	d.lastTranscript = ""
	d.timer = nil
	d.mu.Unlock()

	if transcript != "" && d.dispatch != nil {
		d.dispatch(transcript)
	}
}

// Cancel clears any pending debounce. Called on navigation, timeout, or a
// manual answer so a stale utterance cannot fire later.
func (d *VoiceDispatcher) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.lastTranscript = ""
}
