package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
)

const defaultTimeLimit = 30 * time.Second

// bankFile is the on-disk question bank format.
type bankFile struct {
	Questions []questionRecord `json:"questions"`
}

type questionRecord struct {
	ID               string   `json:"id"`
	Question         string   `json:"question"`
	Options          []Option `json:"options"`
	Explanation      string   `json:"explanation,omitempty"`
	Points           int      `json:"points"`
	TimeLimitSeconds int      `json:"timeLimitSeconds,omitempty"`
	Category         string   `json:"category,omitempty"`
}

// JSONStore serves questions parsed from a JSON bank file. It is immutable
// after construction; Questions hands out copies so callers cannot mutate
// the shared bank.
type JSONStore struct {
	questions []Question
}

func NewJSONStore(fsys fs.FS, path string) (*JSONStore, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	var bank bankFile
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}

	questions := make([]Question, 0, len(bank.Questions))
	for i, record := range bank.Questions {
		if err := validateRecord(record); err != nil {
			return nil, fmt.Errorf("invalid question %d: %w", i, err)
		}

		timeLimit := defaultTimeLimit
		if record.TimeLimitSeconds > 0 {
			timeLimit = time.Duration(record.TimeLimitSeconds) * time.Second
		}

		questions = append(questions, Question{
			ID:          record.ID,
			Text:        record.Question,
			Options:     record.Options,
			Explanation: record.Explanation,
			Points:      record.Points,
			TimeLimit:   timeLimit,
			Category:    record.Category,
		})
	}

	return &JSONStore{questions: questions}, nil
}

func validateRecord(record questionRecord) error {
	if strings.TrimSpace(record.Question) == "" {
		return fmt.Errorf("empty question text")
	}
	if len(record.Options) < 2 {
		return fmt.Errorf("need at least two options, got %d", len(record.Options))
	}

	correct := 0
	for _, option := range record.Options {
		if strings.TrimSpace(option.Text) == "" {
			return fmt.Errorf("empty option text")
		}
		if option.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("need exactly one correct option, got %d", correct)
	}

	return nil
}

func (s *JSONStore) Questions(ctx context.Context) ([]Question, error) {
	questions := []Question{}
	if err := copier.Copy(&questions, s.questions); err != nil {
		return nil, fmt.Errorf("failed to copy questions: %w", err)
	}
	return questions, nil
}

func (s *JSONStore) QuestionsByCategory(ctx context.Context, category string) ([]Question, error) {
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

// BankSchema returns the JSON schema of the question bank format, for
// authoring-time validation of bank files.
func BankSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: false}
	return reflector.Reflect(&bankFile{})
}
