package orchestration

import (
	"context"
	"fmt"

	"github.com/koscakluka/quizvox-core/core/quiz"
)

// SegmentSequencer drives "playback with staged pregeneration": while the
// current segment plays, the next segments are synthesized into the cache,
// hiding synthesis latency behind playback. Pregeneration is staggered
// across the question's playback window so only a couple of synthesis jobs
// are ever in flight at once.
type SegmentSequencer struct {
	orchestrator *Orchestrator
	questions    []quiz.Question
}

func NewSegmentSequencer(orchestrator *Orchestrator, questions []quiz.Question) *SegmentSequencer {
	return &SegmentSequencer{
		orchestrator: orchestrator,
		questions:    questions,
	}
}

// SegmentSet builds the segments for the question at index. Deterministic:
// repeated calls for the same index produce the same keys, so replays hit
// the cache.
func (s *SegmentSequencer) SegmentSet(index int) (SegmentSet, error) {
	if index < 0 || index >= len(s.questions) {
		return SegmentSet{}, fmt.Errorf("question index %d out of range", index)
	}
	return BuildSegmentSet(index, s.questions[index]), nil
}

// PregenerateQuestionIntro requests synthesis of the question segment so a
// session can gate on AwaitCached before its first utterance.
func (s *SegmentSequencer) PregenerateQuestionIntro(ctx context.Context, index int) (string, error) {
	set, err := s.SegmentSet(index)
	if err != nil {
		return "", err
	}

	s.orchestrator.Pregenerate(ctx, set.Question.Key, set.Question.Text)
	return set.Question.Key, nil
}

// PlayQuestion speaks the question and its options in order, interleaving
// pregeneration milestones, then starts listening for an answer. Every step
// re-checks the guard; once stale the remaining sequence is abandoned
// silently.
func (s *SegmentSequencer) PlayQuestion(ctx context.Context, index int, guard Guard) error {
	set, err := s.SegmentSet(index)
	if err != nil {
		return err
	}

	// Feedback segments are needed regardless of the answer, so they are
	// synthesized while the question itself plays.
	s.orchestrator.Pregenerate(ctx, set.FeedbackCorrect.Key, set.FeedbackCorrect.Text)
	s.orchestrator.Pregenerate(ctx, set.FeedbackIncorrect.Key, set.FeedbackIncorrect.Text)

	if err := s.speakSegment(ctx, set.Question, guard); err != nil {
		return err
	}

	nextSet, hasNext := s.peekNext(index)

	for i, option := range set.Options {
		if guard.Stale() {
			return nil
		}

		switch i {
		case 0:
			if set.Explanation != nil {
				s.orchestrator.Pregenerate(ctx, set.Explanation.Key, set.Explanation.Text)
			}
			s.orchestrator.Pregenerate(ctx, set.Next.Key, set.Next.Text)
		case 1:
			if hasNext {
				s.orchestrator.Pregenerate(ctx, nextSet.Question.Key, nextSet.Question.Text)
				if len(nextSet.Options) > 0 {
					s.orchestrator.Pregenerate(ctx, nextSet.Options[0].Key, nextSet.Options[0].Text)
				}
			}
		default:
			if hasNext && i-1 < len(nextSet.Options) {
				s.orchestrator.Pregenerate(ctx, nextSet.Options[i-1].Key, nextSet.Options[i-1].Text)
			}
		}

		if hasNext && i == len(set.Options)-1 {
			// Last staging window before this question's playback ends:
			// request whatever the next question still needs. Pregenerate is
			// idempotent per key, so already-staged segments are no-ops.
			s.orchestrator.Pregenerate(ctx, nextSet.Question.Key, nextSet.Question.Text)
			for _, next := range nextSet.Options {
				s.orchestrator.Pregenerate(ctx, next.Key, next.Text)
			}
		}

		if err := s.speakSegment(ctx, option, guard); err != nil {
			return err
		}
	}

	if guard.Stale() {
		return nil
	}

	return s.orchestrator.StartListening(ctx)
}

// SpeakFeedback speaks the right feedback segment for the answer, then the
// explanation when there is one.
func (s *SegmentSequencer) SpeakFeedback(ctx context.Context, index int, correct bool, guard Guard) error {
	set, err := s.SegmentSet(index)
	if err != nil {
		return err
	}

	feedback := set.FeedbackIncorrect
	if correct {
		feedback = set.FeedbackCorrect
	}

	if err := s.speakSegment(ctx, feedback, guard); err != nil {
		return err
	}

	if set.Explanation != nil {
		if err := s.speakSegment(ctx, *set.Explanation, guard); err != nil {
			return err
		}
	}

	return nil
}

// SpeakNext speaks the transition prompt before the next question.
func (s *SegmentSequencer) SpeakNext(ctx context.Context, index int, guard Guard) error {
	set, err := s.SegmentSet(index)
	if err != nil {
		return err
	}
	return s.speakSegment(ctx, set.Next, guard)
}

// speakSegment plays a segment from the cache when ready, falling back to
// inline synthesis on a miss. A stale guard aborts before any side effect.
func (s *SegmentSequencer) speakSegment(ctx context.Context, segment Segment, guard Guard) error {
	if guard.Stale() {
		return nil
	}

	played, err := s.orchestrator.SpeakCached(ctx, segment.Key, WithoutListeningResume())
	if err != nil {
		return err
	}
	if played {
		return nil
	}

	return s.orchestrator.Speak(ctx, segment.Text, WithoutListeningResume())
}

func (s *SegmentSequencer) peekNext(index int) (SegmentSet, bool) {
	if index+1 >= len(s.questions) {
		return SegmentSet{}, false
	}
	return BuildSegmentSet(index+1, s.questions[index+1]), true
}

// QuestionCount reports how many questions the sequencer drives.
func (s *SegmentSequencer) QuestionCount() int { return len(s.questions) }

// Question returns the question at index.
func (s *SegmentSequencer) Question(index int) (quiz.Question, error) {
	if index < 0 || index >= len(s.questions) {
		return quiz.Question{}, fmt.Errorf("question index %d out of range", index)
	}
	return s.questions[index], nil
}
