package progress

import (
	"context"
	"sync"
	"time"

	"interview-prep/internal/quiz"
)

type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]Progress
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visitors: make(map[string]Progress),
		now:      time.Now,
	}
}

func (s *MemoryStore) GetProgress(_ context.Context, visitorID string) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.visitors[visitorID]
	if !ok {
		return Empty(visitorID), nil
	}
	return stored.clone(), nil
}

func (s *MemoryStore) SaveQuizResult(_ context.Context, visitorID string, result quiz.Result) error {
	s.update(visitorID, func(p *Progress) {
		p.QuizResults[result.SectionID] = result
	})
	return nil
}

func (s *MemoryStore) GetQuizResults(ctx context.Context, visitorID string) (map[string]quiz.Result, error) {
	stored, err := s.GetProgress(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	return stored.QuizResults, nil
}

func (s *MemoryStore) SetTheme(_ context.Context, visitorID string, theme Theme) error {
	s.update(visitorID, func(p *Progress) {
		p.Theme = theme
	})
	return nil
}

func (s *MemoryStore) SetTopicCompleted(_ context.Context, visitorID, topicKey string, completed bool, at time.Time) error {
	s.update(visitorID, func(p *Progress) {
		if completed {
			p.CompletedTopics[topicKey] = at.UTC()
			return
		}
		delete(p.CompletedTopics, topicKey)
	})
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.visitors, visitorID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) update(visitorID string, fn func(*Progress)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.visitors[visitorID]
	if !ok {
		stored = Empty(visitorID)
	}
	fn(&stored)
	stored.UpdatedAt = s.now().UTC()
	s.visitors[visitorID] = stored
}
