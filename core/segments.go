package orchestration

import (
	"fmt"

	"github.com/koscakluka/quizvox-core/core/quiz"
)

// Segment is one atomic unit of speakable text with a stable cache key.
// Within one session the same key always carries the same text; the speech
// cache depends on that.
type Segment struct {
	Key  string
	Text string
}

// SegmentSet holds every speakable segment for one question. Built fresh per
// question index and immutable once built.
type SegmentSet struct {
	Question          Segment
	Options           []Segment
	FeedbackCorrect   Segment
	FeedbackIncorrect Segment
	// Explanation is nil when the question has none.
	Explanation *Segment
	Next        Segment
}

var optionLetters = []string{"A", "B", "C", "D", "E", "F"}

func questionKey(index int) string    { return fmt.Sprintf("q%d.question", index) }
func optionKey(index, opt int) string { return fmt.Sprintf("q%d.opt%d", index, opt) }
func correctKey(index int) string     { return fmt.Sprintf("q%d.correct", index) }
func incorrectKey(index int) string   { return fmt.Sprintf("q%d.incorrect", index) }
func explanationKey(index int) string { return fmt.Sprintf("q%d.explanation", index) }
func nextKey(index int) string        { return fmt.Sprintf("q%d.next", index) }

// BuildSegmentSet derives the speakable segments for the question at the
// given index. Keys are deterministic so repeated calls for the same index
// produce cache hits.
func BuildSegmentSet(index int, question quiz.Question) SegmentSet {
	set := SegmentSet{
		Question: Segment{Key: questionKey(index), Text: question.Text},
		FeedbackCorrect: Segment{
			Key:  correctKey(index),
			Text: "Bonne réponse !",
		},
		Next: Segment{
			Key:  nextKey(index),
			Text: "Question suivante.",
		},
	}

	for i, option := range question.Options {
		letter := optionLetters[min(i, len(optionLetters)-1)]
		set.Options = append(set.Options, Segment{
			Key:  optionKey(index, i),
			Text: fmt.Sprintf("Option %s. %s.", letter, option.Text),
		})
	}

	incorrectText := "Mauvaise réponse."
	if correct := question.CorrectIndex(); correct >= 0 {
		incorrectText = fmt.Sprintf(
			"Mauvaise réponse. La bonne réponse était %s, %s.",
			optionLetters[min(correct, len(optionLetters)-1)],
			question.Options[correct].Text,
		)
	}
	set.FeedbackIncorrect = Segment{Key: incorrectKey(index), Text: incorrectText}

	if question.Explanation != "" {
		set.Explanation = &Segment{
			Key:  explanationKey(index),
			Text: question.Explanation,
		}
	}

	return set
}
