package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"tactical-trivia/internal/domain"
)

// FileQuestionLoader reads the catalog from a YAML document of the form:
//
//	questions:
//	  - id: 1
//	    mode: ranked
//	    tier: tier4
//	    points: 1
//	    prompt: ...
//	    answer: ...
type FileQuestionLoader struct {
	path string
}

func NewFileQuestionLoader(path string) *FileQuestionLoader {
	return &FileQuestionLoader{path: path}
}

type questionFile struct {
	Questions []domain.Question `yaml:"questions"`
}

func (l *FileQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	var doc questionFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse question file: %w", err)
	}

	seen := make(map[int]struct{}, len(doc.Questions))
	for _, q := range doc.Questions {
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("question file: duplicate id %d", q.ID)
		}
		seen[q.ID] = struct{}{}
		if !q.Mode.Valid() {
			return nil, fmt.Errorf("question %d: %w %q", q.ID, domain.ErrInvalidMode, q.Mode)
		}
		if q.Points < 0 {
			return nil, fmt.Errorf("question %d: negative points", q.ID)
		}
	}
	return doc.Questions, nil
}
