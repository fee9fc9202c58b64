package quiz

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid quiz transition")
	ErrInvalidOption     = errors.New("option out of range")
	ErrNotAnswered       = errors.New("question not answered")
	ErrEmptyQuiz         = errors.New("quiz has no questions")
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInProgress Phase = "in_progress"
	PhaseReview     Phase = "review"
)

// Session walks one visitor through one quiz: idle -> in_progress -> review,
// and back to in_progress on retake. It is not safe for concurrent use; the
// Sessions registry serializes access.
type Session struct {
	SectionID string
	Questions []Question
	Phase     Phase
	Current   int
	Answers   map[string]int
	Result    *Result
	StartedAt time.Time
}

type ReviewItem struct {
	Question Question
	Chosen   int
	Correct  bool
}

func NewSession(sectionID string, questions []Question) *Session {
	return &Session{
		SectionID: sectionID,
		Questions: questions,
		Phase:     PhaseIdle,
		Answers:   make(map[string]int),
	}
}

func (s *Session) Start(now time.Time) error {
	if s.Phase == PhaseInProgress {
		return ErrInvalidTransition
	}
	if len(s.Questions) == 0 {
		return ErrEmptyQuiz
	}
	s.Phase = PhaseInProgress
	s.Current = 0
	s.Answers = make(map[string]int, len(s.Questions))
	s.Result = nil
	s.StartedAt = now.UTC()
	return nil
}

func (s *Session) CurrentQuestion() (Question, bool) {
	if s.Phase != PhaseInProgress || s.Current < 0 || s.Current >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Current], true
}

// Chosen reports the recorded answer for the current question.
func (s *Session) Chosen() (int, bool) {
	question, ok := s.CurrentQuestion()
	if !ok {
		return -1, false
	}
	chosen, ok := s.Answers[question.QuestionID]
	return chosen, ok
}

func (s *Session) Answer(optionIndex int) error {
	question, ok := s.CurrentQuestion()
	if !ok {
		return ErrInvalidTransition
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return ErrInvalidOption
	}
	s.Answers[question.QuestionID] = optionIndex
	return nil
}

func (s *Session) Next() error {
	if _, ok := s.Chosen(); !ok {
		if s.Phase != PhaseInProgress {
			return ErrInvalidTransition
		}
		return ErrNotAnswered
	}
	if s.Current+1 >= len(s.Questions) {
		return ErrInvalidTransition
	}
	s.Current++
	return nil
}

func (s *Session) Prev() error {
	if s.Phase != PhaseInProgress || s.Current == 0 {
		return ErrInvalidTransition
	}
	s.Current--
	return nil
}

func (s *Session) IsLast() bool {
	return s.Current == len(s.Questions)-1
}

func (s *Session) AnsweredCount() int {
	return len(s.Answers)
}

func (s *Session) Finish(now time.Time) (Result, error) {
	if s.Phase != PhaseInProgress {
		return Result{}, ErrInvalidTransition
	}
	if len(s.Answers) < len(s.Questions) {
		return Result{}, ErrNotAnswered
	}

	result := NewResult(s.SectionID, s.Questions, s.Answers, now)
	s.Result = &result
	s.Phase = PhaseReview
	return result, nil
}

func (s *Session) Review() []ReviewItem {
	if s.Phase != PhaseReview {
		return nil
	}
	items := make([]ReviewItem, 0, len(s.Questions))
	for _, question := range s.Questions {
		chosen, ok := s.Answers[question.QuestionID]
		if !ok {
			chosen = -1
		}
		items = append(items, ReviewItem{
			Question: question,
			Chosen:   chosen,
			Correct:  chosen == question.CorrectIndex,
		})
	}
	return items
}

// SessionIdleTTL is how long a session survives without being touched.
const SessionIdleTTL = 2 * time.Hour

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

// Sessions keeps one Session per visitor and section. Sessions idle for
// longer than the TTL are dropped on a later access.
type Sessions struct {
	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		sessions: make(map[string]*sessionEntry),
		ttl:      SessionIdleTTL,
		now:      time.Now,
	}
}

// With runs fn on the stored session, creating it with create when absent.
// A nil create makes a missing session report ok=false without calling fn.
func (r *Sessions) With(visitorID, sectionID string, create func() *Session, fn func(*Session) error) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	key := sessionKey(visitorID, sectionID)
	entry, ok := r.sessions[key]
	if !ok {
		if create == nil {
			return false, nil
		}
		entry = &sessionEntry{session: create()}
		r.sessions[key] = entry
	}
	entry.lastUsed = now
	return true, fn(entry.session)
}

// sweep must be called with mu held. It scans at most once per ttl/4.
func (r *Sessions) sweep(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl/4 {
		return
	}
	r.lastSweep = now
	for key, entry := range r.sessions {
		if now.Sub(entry.lastUsed) > r.ttl {
			delete(r.sessions, key)
		}
	}
}

func (r *Sessions) Drop(visitorID, sectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey(visitorID, sectionID))
}

// DropVisitor removes every session of a visitor.
func (r *Sessions) DropVisitor(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prefix := visitorID + "::"
	for key := range r.sessions {
		if strings.HasPrefix(key, prefix) {
			delete(r.sessions, key)
		}
	}
}

func sessionKey(visitorID, sectionID string) string {
	return visitorID + "::" + sectionID
}
