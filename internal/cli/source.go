package cli

import (
	"context"

	"interview-prep/internal/apiclient"
	"interview-prep/internal/content"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
)

// Source is where the command line reads sections and scores quizzes. The
// HTTP client satisfies it for a running server; LocalSource serves the
// embedded catalog in-process.
type Source interface {
	ListSections(ctx context.Context) ([]apiclient.Section, error)
	QuizQuestions(ctx context.Context, sectionID string, priority content.Priority) ([]quiz.PublicQuestion, error)
	SubmitQuiz(ctx context.Context, sectionID string, priority content.Priority, responses []quiz.SubmittedResponse) (apiclient.Submission, error)
	Search(ctx context.Context, query string, itemType content.ItemType, limit int) ([]search.Result, error)
	Health(ctx context.Context) (content.Stats, error)
}

// ProgressSource is a Source that keeps progress for the caller's visitor.
// Only the server does.
type ProgressSource interface {
	Source
	Progress(ctx context.Context) (apiclient.ProgressSummary, error)
	ResetProgress(ctx context.Context) error
}

var (
	_ ProgressSource = (*apiclient.HTTPClient)(nil)
	_ Source         = (*LocalSource)(nil)
)

// LocalSource answers from a catalog without persisting anything.
type LocalSource struct {
	catalog *content.Catalog
	quizzes *quiz.Service
	index   *search.Index
}

func NewLocalSource(catalog *content.Catalog) *LocalSource {
	return &LocalSource{
		catalog: catalog,
		quizzes: quiz.NewService(catalog, nil),
		index:   search.NewIndex(catalog.SearchItems()),
	}
}

func (s *LocalSource) ListSections(_ context.Context) ([]apiclient.Section, error) {
	sections := s.catalog.Sections()
	out := make([]apiclient.Section, 0, len(sections))
	for _, section := range sections {
		out = append(out, apiclient.Section{
			ID:            section.ID,
			Title:         section.Title,
			Description:   section.Description,
			Category:      section.Category,
			CategoryLabel: section.Category.Label(),
			Link:          section.Link(),
			TopicCount:    len(section.Topics),
			QuestionCount: len(section.Quiz),
			MustKnowCount: section.MustKnowCount(),
		})
	}
	return out, nil
}

func (s *LocalSource) QuizQuestions(_ context.Context, sectionID string, priority content.Priority) ([]quiz.PublicQuestion, error) {
	questions, err := s.quizzes.Questions(sectionID, priority)
	if err != nil {
		return nil, err
	}
	return quiz.ToPublicQuestions(questions), nil
}

func (s *LocalSource) SubmitQuiz(ctx context.Context, sectionID string, priority content.Priority, responses []quiz.SubmittedResponse) (apiclient.Submission, error) {
	result, review, err := s.quizzes.Submit(ctx, "", sectionID, priority, responses)
	if err != nil {
		return apiclient.Submission{}, err
	}
	return apiclient.Submission{
		SectionID:   result.SectionID,
		Score:       result.Score,
		Total:       result.Total,
		Percent:     result.Percent(),
		Passed:      result.Passed,
		CompletedAt: result.CompletedAt,
		Results:     review,
	}, nil
}

func (s *LocalSource) Search(_ context.Context, query string, itemType content.ItemType, limit int) ([]search.Result, error) {
	return s.index.Search(query, search.Options{Type: itemType, Limit: limit}), nil
}

func (s *LocalSource) Health(_ context.Context) (content.Stats, error) {
	return s.catalog.Stats(), nil
}
