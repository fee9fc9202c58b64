package progress

import (
	"context"
	"errors"
	"strings"
	"time"

	"interview-prep/internal/quiz"
)

var (
	ErrInvalidVisitor = errors.New("invalid visitor")
	ErrInvalidTheme   = errors.New("theme must be light, dark or system")
	ErrInvalidTopic   = errors.New("invalid topic key")
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func ParseTheme(value string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(value))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	case ThemeSystem:
		return ThemeSystem, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Progress is everything remembered about one visitor.
type Progress struct {
	VisitorID       string                 `json:"visitor_id"`
	Theme           Theme                  `json:"theme"`
	QuizResults     map[string]quiz.Result `json:"quiz_results"`
	CompletedTopics map[string]time.Time   `json:"completed_topics"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

type Stats struct {
	QuizzesAttempted int `json:"quizzes_attempted"`
	QuizzesPassed    int `json:"quizzes_passed"`
	TopicsCompleted  int `json:"topics_completed"`
}

// Empty returns the progress of a visitor nothing is stored for yet.
func Empty(visitorID string) Progress {
	return Progress{
		VisitorID:       visitorID,
		Theme:           ThemeSystem,
		QuizResults:     make(map[string]quiz.Result),
		CompletedTopics: make(map[string]time.Time),
	}
}

func (p Progress) Stats() Stats {
	stats := Stats{
		QuizzesAttempted: len(p.QuizResults),
		TopicsCompleted:  len(p.CompletedTopics),
	}
	for _, result := range p.QuizResults {
		if result.Passed {
			stats.QuizzesPassed++
		}
	}
	return stats
}

func (p Progress) TopicCompleted(sectionID, topicID string) bool {
	_, ok := p.CompletedTopics[TopicKey(sectionID, topicID)]
	return ok
}

// isEmpty reports whether nothing has ever been stored for the visitor.
func (p Progress) isEmpty() bool {
	return len(p.QuizResults) == 0 && len(p.CompletedTopics) == 0 &&
		(p.Theme == "" || p.Theme == ThemeSystem) && p.UpdatedAt.IsZero()
}

func (p Progress) clone() Progress {
	out := p
	out.QuizResults = make(map[string]quiz.Result, len(p.QuizResults))
	for key, value := range p.QuizResults {
		out.QuizResults[key] = value
	}
	out.CompletedTopics = make(map[string]time.Time, len(p.CompletedTopics))
	for key, value := range p.CompletedTopics {
		out.CompletedTopics[key] = value
	}
	return out
}

func TopicKey(sectionID, topicID string) string {
	return sectionID + "/" + topicID
}

// Store persists progress. Unknown visitors read as Empty, never as an error.
type Store interface {
	quiz.ResultRepository
	GetProgress(ctx context.Context, visitorID string) (Progress, error)
	SetTheme(ctx context.Context, visitorID string, theme Theme) error
	SetTopicCompleted(ctx context.Context, visitorID, topicKey string, completed bool, at time.Time) error
	Reset(ctx context.Context, visitorID string) error
	Close() error
}

func NormalizeVisitorID(visitorID string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(visitorID))
	if normalized == "" {
		return "", ErrInvalidVisitor
	}
	return normalized, nil
}
