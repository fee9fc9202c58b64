package httpapi

import (
	"net/http"
	"testing"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
	"interview-prep/internal/visitor"
)

const testVisitorID = "2b0e3c9c-7c61-4d43-9a3d-3f55e2d1f001"

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()

	catalog, err := content.New([]content.Section{
		{
			ID:          "caching",
			Title:       "Caching",
			Description: "Cache strategies.",
			Category:    content.CategorySystemDesign,
			Order:       1,
			Keywords:    []string{"cache", "redis"},
			Topics: []content.Topic{
				{ID: "ttl", Title: "Expiry", Summary: "Time to live.", Priority: content.PriorityMustKnow},
				{ID: "write-through", Title: "Write-through", Summary: "Write both."},
			},
			Quiz: []content.QuizQuestion{
				{ID: "c1", Prompt: "Q1", Options: []string{"right", "wrong"}, CorrectIndex: 0, Explanation: "E1", Priority: content.PriorityMustKnow},
				{ID: "c2", Prompt: "Q2", Options: []string{"wrong", "right"}, CorrectIndex: 1, Explanation: "E2", Priority: content.PriorityMustKnow},
				{ID: "c3", Prompt: "Q3", Options: []string{"right", "wrong", "wrong"}, CorrectIndex: 0, Explanation: "E3", Priority: content.PriorityGoodToKnow},
			},
		},
		{
			ID:          "star",
			Title:       "STAR Stories",
			Description: "Behavioral answers.",
			Category:    content.CategoryBehavioral,
			Order:       0,
			Topics:      []content.Topic{{ID: "situation", Title: "Situation"}},
		},
	})
	if err != nil {
		t.Fatalf("content.New failed: %v", err)
	}
	return catalog
}

type testEnv struct {
	api      *API
	handler  http.Handler
	progress *progress.Service
	quizzes  *quiz.Service
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	catalog := testCatalog(t)
	progressService := progress.NewService(progress.NewMemoryStore())
	quizzes := quiz.NewService(catalog, progressService)
	api := NewAPI(catalog, quizzes, progressService, search.NewIndex(catalog.SearchItems()), nil)

	return testEnv{
		api:      api,
		handler:  withVisitor(testVisitorID, NewRouter(api)),
		progress: progressService,
		quizzes:  quizzes,
	}
}

func withVisitor(visitorID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if visitorID != "" {
			r = r.WithContext(visitor.WithVisitorID(r.Context(), visitorID))
		}
		next.ServeHTTP(w, r)
	})
}

