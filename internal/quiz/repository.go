package quiz

import (
	"context"
	"errors"

	"interview-prep/internal/content"
)

var (
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrMissingVisitor = errors.New("visitor is required")
)

type QuestionSource interface {
	Quiz(sectionID string) ([]content.QuizQuestion, error)
}

// ResultRepository stores the latest result per visitor and section.
// Saving a result for a section overwrites the previous attempt.
type ResultRepository interface {
	SaveQuizResult(ctx context.Context, visitorID string, result Result) error
	GetQuizResults(ctx context.Context, visitorID string) (map[string]Result, error)
}
