package quiz

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"interview-prep/internal/content"
)

type Service struct {
	source   QuestionSource
	results  ResultRepository
	bank     *Bank
	sessions *Sessions
	now      func() time.Time

	mu    sync.RWMutex
	built map[string][]Question
}

// SessionView is a point-in-time copy of a visitor's quiz session.
type SessionView struct {
	SectionID string
	Phase     Phase
	Current   int
	Total     int
	Answered  int
	Question  *Question
	Chosen    int
	IsLast    bool
	Result    *Result
	Review    []ReviewItem
}

func NewService(source QuestionSource, results ResultRepository) *Service {
	return &Service{
		source:   source,
		results:  results,
		bank:     NewBank(),
		sessions: NewSessions(),
		now:      time.Now,
		built:    make(map[string][]Question),
	}
}

func (s *Service) Bank() *Bank {
	return s.bank
}

// Questions returns the section's questions, narrowed to priority when set.
func (s *Service) Questions(sectionID string, priority content.Priority) ([]Question, error) {
	sectionID = strings.TrimSpace(sectionID)

	s.mu.RLock()
	questions, ok := s.built[sectionID]
	s.mu.RUnlock()

	if !ok {
		items, err := s.source.Quiz(sectionID)
		if err != nil {
			if errors.Is(err, content.ErrSectionNotFound) {
				return nil, ErrQuizNotFound
			}
			return nil, err
		}
		questions = BuildQuestions(items)
		s.bank.AddQuestions(questions)

		s.mu.Lock()
		s.built[sectionID] = questions
		s.mu.Unlock()
	}

	return FilterByPriority(questions, priority), nil
}

// Submit scores a full set of letter responses in one call. Every question of
// the quiz gets a review entry; responses for questions outside the quiz are
// reported as invalid_question after them.
func (s *Service) Submit(ctx context.Context, visitorID, sectionID string, priority content.Priority, responses []SubmittedResponse) (Result, []ResponseResult, error) {
	questions, err := s.Questions(sectionID, priority)
	if err != nil {
		return Result{}, nil, err
	}
	if len(questions) == 0 {
		return Result{}, nil, ErrEmptyQuiz
	}

	inQuiz := make(map[string]struct{}, len(questions))
	for _, question := range questions {
		inQuiz[question.QuestionID] = struct{}{}
	}

	answerByID := make(map[string]string, len(responses))
	unknown := make([]ResponseResult, 0)
	for _, response := range responses {
		if _, ok := inQuiz[response.QuestionID]; !ok {
			unknown = append(unknown, ResponseResult{
				QuestionID: response.QuestionID,
				Status:     StatusInvalidQuestion,
			})
			continue
		}
		// First response for a question wins.
		if _, seen := answerByID[response.QuestionID]; !seen {
			answerByID[response.QuestionID] = response.Answer
		}
	}

	chosen := make(map[string]int, len(questions))
	review := make([]ResponseResult, 0, len(questions)+len(unknown))
	for _, question := range questions {
		item, index := evaluate(question, answerByID[question.QuestionID])
		if index >= 0 {
			chosen[question.QuestionID] = index
		}
		review = append(review, item)
	}
	review = append(review, unknown...)

	result := NewResult(strings.TrimSpace(sectionID), questions, chosen, s.now())
	if err := s.save(ctx, visitorID, result); err != nil {
		return Result{}, nil, err
	}
	return result, review, nil
}

// LastResult returns the stored result of the visitor's latest attempt.
func (s *Service) LastResult(ctx context.Context, visitorID, sectionID string) (Result, bool, error) {
	if s.results == nil || strings.TrimSpace(visitorID) == "" {
		return Result{}, false, nil
	}
	results, err := s.results.GetQuizResults(ctx, visitorID)
	if err != nil {
		return Result{}, false, err
	}
	result, ok := results[strings.TrimSpace(sectionID)]
	return result, ok, nil
}

func (s *Service) Session(visitorID, sectionID string) (SessionView, bool) {
	var view SessionView
	ok, _ := s.sessions.With(visitorID, sectionID, nil, func(session *Session) error {
		view = snapshot(session)
		return nil
	})
	return view, ok
}

// StartSession moves the visitor's session into in_progress. Calling it while
// a session is already running returns that session unchanged.
func (s *Service) StartSession(visitorID, sectionID string, priority content.Priority) (SessionView, error) {
	if strings.TrimSpace(visitorID) == "" {
		return SessionView{}, ErrMissingVisitor
	}
	questions, err := s.Questions(sectionID, priority)
	if err != nil {
		return SessionView{}, err
	}

	var view SessionView
	_, err = s.sessions.With(visitorID, sectionID, func() *Session {
		return NewSession(sectionID, questions)
	}, func(session *Session) error {
		if session.Phase != PhaseInProgress {
			session.Questions = questions
			if err := session.Start(s.now()); err != nil {
				return err
			}
		}
		view = snapshot(session)
		return nil
	})
	return view, err
}

func (s *Service) Answer(visitorID, sectionID string, optionIndex int) (SessionView, error) {
	return s.step(visitorID, sectionID, func(session *Session) error {
		return session.Answer(optionIndex)
	})
}

func (s *Service) Next(visitorID, sectionID string) (SessionView, error) {
	return s.step(visitorID, sectionID, (*Session).Next)
}

func (s *Service) Prev(visitorID, sectionID string) (SessionView, error) {
	return s.step(visitorID, sectionID, (*Session).Prev)
}

// Finish moves the session to review and persists the result.
func (s *Service) Finish(ctx context.Context, visitorID, sectionID string) (SessionView, error) {
	var result Result
	view, err := s.step(visitorID, sectionID, func(session *Session) error {
		var err error
		result, err = session.Finish(s.now())
		return err
	})
	if err != nil {
		return view, err
	}
	if err := s.save(ctx, visitorID, result); err != nil {
		return view, err
	}
	return view, nil
}

// ResetVisitor forgets every running session of the visitor.
func (s *Service) ResetVisitor(visitorID string) {
	s.sessions.DropVisitor(visitorID)
}

func (s *Service) step(visitorID, sectionID string, fn func(*Session) error) (SessionView, error) {
	if strings.TrimSpace(visitorID) == "" {
		return SessionView{}, ErrMissingVisitor
	}

	var view SessionView
	ok, err := s.sessions.With(visitorID, sectionID, nil, func(session *Session) error {
		stepErr := fn(session)
		view = snapshot(session)
		return stepErr
	})
	if !ok {
		return SessionView{}, ErrInvalidTransition
	}
	return view, err
}

func (s *Service) save(ctx context.Context, visitorID string, result Result) error {
	if s.results == nil || strings.TrimSpace(visitorID) == "" {
		return nil
	}
	return s.results.SaveQuizResult(ctx, visitorID, result)
}

func snapshot(session *Session) SessionView {
	view := SessionView{
		SectionID: session.SectionID,
		Phase:     session.Phase,
		Current:   session.Current,
		Total:     len(session.Questions),
		Answered:  session.AnsweredCount(),
		Chosen:    -1,
		IsLast:    session.IsLast(),
	}
	if question, ok := session.CurrentQuestion(); ok {
		view.Question = &question
		if chosen, ok := session.Chosen(); ok {
			view.Chosen = chosen
		}
	}
	if session.Result != nil {
		result := *session.Result
		view.Result = &result
	}
	view.Review = session.Review()
	return view
}
