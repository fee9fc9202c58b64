package progress

import (
	"context"
	"strings"
	"sync"
	"time"

	"interview-prep/internal/quiz"
)

// DefaultCacheSize bounds how many visitors the Service keeps in memory.
const DefaultCacheSize = 10000

// Service fronts a Store with a per-visitor read-through cache. Writes go to
// the store first and then evict the visitor's entry. A load that overlaps a
// write for the same visitor is returned but not cached. Visitors with
// nothing stored are never cached.
type Service struct {
	store     Store
	now       func() time.Time
	cacheSize int

	mu    sync.Mutex
	cache map[string]Progress
	// loading counts in-flight store reads per visitor; written records the
	// write sequence seen by a visitor while such reads were running.
	loading map[string]int
	written map[string]uint64
	seq     uint64
}

func NewService(store Store) *Service {
	return &Service{
		store:     store,
		now:       time.Now,
		cacheSize: DefaultCacheSize,
		cache:     make(map[string]Progress),
		loading:   make(map[string]int),
		written:   make(map[string]uint64),
	}
}

func (s *Service) Get(ctx context.Context, visitorID string) (Progress, error) {
	visitorID, err := NormalizeVisitorID(visitorID)
	if err != nil {
		return Progress{}, err
	}

	s.mu.Lock()
	if cached, ok := s.cache[visitorID]; ok {
		s.mu.Unlock()
		return cached.clone(), nil
	}
	s.loading[visitorID]++
	startSeq := s.seq
	s.mu.Unlock()

	loaded, err := s.store.GetProgress(ctx, visitorID)

	s.mu.Lock()
	defer s.mu.Unlock()
	stale := s.written[visitorID] > startSeq
	s.loading[visitorID]--
	if s.loading[visitorID] == 0 {
		delete(s.loading, visitorID)
		delete(s.written, visitorID)
	}
	if err != nil {
		return Progress{}, err
	}
	if !stale && !loaded.isEmpty() {
		s.storeCached(loaded)
	}
	return loaded.clone(), nil
}

func (s *Service) SaveQuizResult(ctx context.Context, visitorID string, result quiz.Result) error {
	visitorID, err := NormalizeVisitorID(visitorID)
	if err != nil {
		return err
	}
	if err := s.store.SaveQuizResult(ctx, visitorID, result); err != nil {
		return err
	}
	s.invalidate(visitorID)
	return nil
}

func (s *Service) GetQuizResults(ctx context.Context, visitorID string) (map[string]quiz.Result, error) {
	loaded, err := s.Get(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	return loaded.QuizResults, nil
}

func (s *Service) SetTheme(ctx context.Context, visitorID string, theme Theme) error {
	visitorID, err := NormalizeVisitorID(visitorID)
	if err != nil {
		return err
	}
	theme, err = ParseTheme(string(theme))
	if err != nil {
		return err
	}
	if err := s.store.SetTheme(ctx, visitorID, theme); err != nil {
		return err
	}
	s.invalidate(visitorID)
	return nil
}

func (s *Service) SetTopicCompleted(ctx context.Context, visitorID, sectionID, topicID string, completed bool) error {
	visitorID, err := NormalizeVisitorID(visitorID)
	if err != nil {
		return err
	}
	sectionID = strings.TrimSpace(sectionID)
	topicID = strings.TrimSpace(topicID)
	if sectionID == "" || topicID == "" {
		return ErrInvalidTopic
	}

	key := TopicKey(sectionID, topicID)
	if err := s.store.SetTopicCompleted(ctx, visitorID, key, completed, s.now().UTC()); err != nil {
		return err
	}
	s.invalidate(visitorID)
	return nil
}

func (s *Service) Reset(ctx context.Context, visitorID string) error {
	visitorID, err := NormalizeVisitorID(visitorID)
	if err != nil {
		return err
	}
	if err := s.store.Reset(ctx, visitorID); err != nil {
		return err
	}
	s.invalidate(visitorID)
	return nil
}

// invalidate runs after every successful store write.
func (s *Service) invalidate(visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	delete(s.cache, visitorID)
	if s.loading[visitorID] > 0 {
		s.written[visitorID] = s.seq
	}
}

// storeCached must be called with mu held. A full cache drops one arbitrary
// entry to make room.
func (s *Service) storeCached(p Progress) {
	if _, ok := s.cache[p.VisitorID]; !ok && s.cacheSize > 0 && len(s.cache) >= s.cacheSize {
		for key := range s.cache {
			delete(s.cache, key)
			break
		}
	}
	s.cache[p.VisitorID] = p.clone()
}
