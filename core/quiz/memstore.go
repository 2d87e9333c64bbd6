package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
)

// MemoryStore serves a fixed in-memory question list. Useful for tests and
// demo wiring.
type MemoryStore struct {
	questions []Question
}

func NewMemoryStore(questions ...Question) *MemoryStore {
	return &MemoryStore{questions: questions}
}

func (s *MemoryStore) Questions(ctx context.Context) ([]Question, error) {
	questions := []Question{}
	if err := copier.Copy(&questions, s.questions); err != nil {
		return nil, fmt.Errorf("failed to copy questions: %w", err)
	}
	return questions, nil
}

func (s *MemoryStore) QuestionsByCategory(ctx context.Context, category string) ([]Question, error) {
	questions, err := s.Questions(ctx)
	if err != nil {
		return nil, err
	}

	filtered := questions[:0]
	for _, question := range questions {
		if strings.EqualFold(question.Category, category) {
			filtered = append(filtered, question)
		}
	}
	return filtered, nil
}
