package quiz

import (
	"context"
	"time"
)

// Option is one answer choice of a question.
type Option struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question is one quiz question with its answer choices.
type Question struct {
	ID          string        `json:"id"`
	Text        string        `json:"question"`
	Options     []Option      `json:"options"`
	Explanation string        `json:"explanation,omitempty"`
	Points      int           `json:"points"`
	TimeLimit   time.Duration `json:"-"`
	Category    string        `json:"category,omitempty"`
}

// CorrectIndex returns the index of the correct option, or -1 if the
// question has none marked.
func (q Question) CorrectIndex() int {
	for i, option := range q.Options {
		if option.Correct {
			return i
		}
	}
	return -1
}

// Store is the question source boundary. Implementations own persistence;
// the core only reads.
type Store interface {
	Questions(ctx context.Context) ([]Question, error)
	QuestionsByCategory(ctx context.Context, category string) ([]Question, error)
}
