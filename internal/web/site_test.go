package web

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"interview-prep/internal/content"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
	"interview-prep/internal/visitor"
)

func testCatalog(t *testing.T) *content.Catalog {
	t.Helper()

	catalog, err := content.New([]content.Section{
		{
			ID:          "caching",
			Title:       "Caching",
			Description: "Cache strategies.",
			Category:    content.CategorySystemDesign,
			Keywords:    []string{"cache"},
			Topics: []content.Topic{
				{ID: "ttl", Title: "Expiry", Summary: "Time to live.", Priority: content.PriorityMustKnow},
				{ID: "write-through", Title: "Write-through", Summary: "Write both."},
			},
			Quiz: []content.QuizQuestion{
				{ID: "c1", Prompt: "First question?", Options: []string{"right", "wrong"}, CorrectIndex: 0, Explanation: "Because one.", Priority: content.PriorityMustKnow},
				{ID: "c2", Prompt: "Second question?", Options: []string{"wrong", "right"}, CorrectIndex: 1, Explanation: "Because two.", Priority: content.PriorityGoodToKnow},
			},
		},
		{
			ID:          "star",
			Title:       "STAR Stories",
			Description: "Behavioral answers.",
			Category:    content.CategoryBehavioral,
		},
	})
	if err != nil {
		t.Fatalf("content.New failed: %v", err)
	}
	return catalog
}

type testSite struct {
	server   *httptest.Server
	client   *http.Client
	progress *progress.Service
}

func newTestSite(t *testing.T) testSite {
	t.Helper()

	catalog := testCatalog(t)
	progressService := progress.NewService(progress.NewMemoryStore())
	quizzes := quiz.NewService(catalog, progressService)
	site, err := NewSite(catalog, quizzes, progressService, search.NewIndex(catalog.SearchItems()), nil)
	if err != nil {
		t.Fatalf("NewSite failed: %v", err)
	}
	issuer, err := visitor.NewIssuer(visitor.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}

	router := site.NewRouter()
	router.Use(issuer.Middleware(nil))
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New failed: %v", err)
	}
	return testSite{
		server:   server,
		client:   &http.Client{Jar: jar},
		progress: progressService,
	}
}

func (ts testSite) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := ts.client.Get(ts.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return readBody(t, resp)
}

// post follows the 303 back to the page and returns that page.
func (ts testSite) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := ts.client.PostForm(ts.server.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) (int, string) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp.StatusCode, string(body)
}

func mustContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(body, part) {
			t.Fatalf("expected page to contain %q\n%s", part, body)
		}
	}
}

func TestNewSiteRequiresServices(t *testing.T) {
	catalog := testCatalog(t)
	progressService := progress.NewService(progress.NewMemoryStore())
	quizzes := quiz.NewService(catalog, progressService)
	index := search.NewIndex(catalog.SearchItems())

	cases := []struct {
		name string
		run  func() error
	}{
		{"catalog", func() error { _, err := NewSite(nil, quizzes, progressService, index, nil); return err }},
		{"quizzes", func() error { _, err := NewSite(catalog, nil, progressService, index, nil); return err }},
		{"progress", func() error { _, err := NewSite(catalog, quizzes, nil, index, nil); return err }},
		{"index", func() error { _, err := NewSite(catalog, quizzes, progressService, nil, nil); return err }},
	}
	for _, tc := range cases {
		if err := tc.run(); !errors.Is(err, ErrMissingDependency) {
			t.Fatalf("missing %s: expected ErrMissingDependency, got %v", tc.name, err)
		}
	}
}

func TestHomeGroupsSectionsAndDismissesBanner(t *testing.T) {
	ts := newTestSite(t)

	status, body := ts.get(t, "/")
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	mustContain(t, body, "Caching", "STAR Stories", "System Design", `id="banner"`, `data-theme="system"`)

	status, body = ts.post(t, "/banner/dismiss", url.Values{"return_to": {"/"}})
	if status != http.StatusOK {
		t.Fatalf("dismiss status = %d", status)
	}
	if strings.Contains(body, `id="banner"`) {
		t.Fatalf("banner should be hidden after dismissal")
	}
}

func TestThemeSwitchPersists(t *testing.T) {
	ts := newTestSite(t)

	_, body := ts.post(t, "/theme", url.Values{"theme": {"dark"}, "return_to": {"/search"}})
	mustContain(t, body, `data-theme="dark"`, "<h1>Search</h1>")

	_, body = ts.get(t, "/")
	mustContain(t, body, `data-theme="dark"`)

	status, _ := ts.post(t, "/theme", url.Values{"theme": {"neon"}})
	if status != http.StatusBadRequest {
		t.Fatalf("invalid theme status = %d, want 400", status)
	}
}

func TestThemeRedirectRejectsExternalTargets(t *testing.T) {
	for _, target := range []string{"https://evil.example", "//evil.example", "relative"} {
		if got := safeReturnPath(target); got != "/" {
			t.Fatalf("safeReturnPath(%q) = %q", target, got)
		}
	}
	if got := safeReturnPath("/sections/caching#ttl"); got != "/sections/caching#ttl" {
		t.Fatalf("local path rewritten: %q", got)
	}
}

func TestSectionTopicToggle(t *testing.T) {
	ts := newTestSite(t)

	_, body := ts.get(t, "/sections/caching")
	mustContain(t, body, "0/2 topics completed", "must-know", `id="ttl"`)

	_, body = ts.post(t, "/sections/caching/topics/ttl", url.Values{"completed": {"1"}})
	mustContain(t, body, "1/2 topics completed", `class="topic done" id="ttl"`)

	_, body = ts.post(t, "/sections/caching/topics/ttl", url.Values{"completed": {"0"}})
	mustContain(t, body, "0/2 topics completed")

	status, _ := ts.post(t, "/sections/caching/topics/nope", url.Values{"completed": {"1"}})
	if status != http.StatusNotFound {
		t.Fatalf("unknown topic status = %d, want 404", status)
	}
}

func TestUnknownSectionRendersNotFound(t *testing.T) {
	ts := newTestSite(t)

	status, body := ts.get(t, "/sections/nope")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
	mustContain(t, body, "Section not found")

	status, _ = ts.get(t, "/no/such/page")
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", status)
	}
}

func TestQuizFlowThroughReviewAndRetake(t *testing.T) {
	ts := newTestSite(t)

	_, body := ts.get(t, "/sections/caching/quiz")
	mustContain(t, body, "Start quiz", "Must-know only")

	_, body = ts.post(t, "/sections/caching/quiz/start", url.Values{"priority": {""}})
	mustContain(t, body, "Question 1 of 2", "First question?")

	_, body = ts.post(t, "/sections/caching/quiz/next", nil)
	mustContain(t, body, "Answer this question before moving on.", "Question 1 of 2")

	_, body = ts.post(t, "/sections/caching/quiz/answer", url.Values{"option": {"0"}, "then": {"next"}})
	mustContain(t, body, "Question 2 of 2", "Second question?", "Finish")

	_, body = ts.post(t, "/sections/caching/quiz/prev", nil)
	mustContain(t, body, "Question 1 of 2", `value="0" checked`)

	_, body = ts.post(t, "/sections/caching/quiz/next", nil)
	mustContain(t, body, "Question 2 of 2")

	_, body = ts.post(t, "/sections/caching/quiz/answer", url.Values{"option": {"0"}, "then": {"finish"}})
	mustContain(t, body, "Score: 1/2 (FAIL)", "Because two.", "Retake")

	_, body = ts.get(t, "/progress")
	mustContain(t, body, "1/2 FAIL", "Quizzes passed: 0/1")

	_, body = ts.post(t, "/sections/caching/quiz/start", nil)
	mustContain(t, body, "Question 1 of 2")
	_, _ = ts.post(t, "/sections/caching/quiz/answer", url.Values{"option": {"0"}, "then": {"next"}})
	_, body = ts.post(t, "/sections/caching/quiz/answer", url.Values{"option": {"1"}, "then": {"finish"}})
	mustContain(t, body, "Score: 2/2 (PASS)")

	_, body = ts.get(t, "/sections/caching")
	mustContain(t, body, "Last attempt: 2/2 PASS")
}

func TestQuizMustKnowOnlyAndEmptyQuiz(t *testing.T) {
	ts := newTestSite(t)

	_, body := ts.post(t, "/sections/caching/quiz/start", url.Values{"priority": {"must-know"}})
	mustContain(t, body, "Question 1 of 1", "Finish")

	_, body = ts.get(t, "/sections/star/quiz")
	mustContain(t, body, "This section has no quiz yet.")

	_, body = ts.post(t, "/sections/star/quiz/start", nil)
	mustContain(t, body, "There are no questions to practice here yet.")

	_, body = ts.post(t, "/sections/caching/quiz/answer", url.Values{"option": {"x"}})
	mustContain(t, body, "Pick an option first.")
}

func TestQuizStepWithoutSessionReturnsToQuizPage(t *testing.T) {
	ts := newTestSite(t)

	status, body := ts.post(t, "/sections/caching/quiz/finish", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	mustContain(t, body, "Start quiz")
}

func TestSearchPage(t *testing.T) {
	ts := newTestSite(t)

	_, body := ts.get(t, "/search?q=caching")
	mustContain(t, body, `href="/sections/caching"`, `href="/sections/caching/quiz"`)

	_, body = ts.get(t, "/search?q=caching&type=quiz")
	if strings.Contains(body, `href="/sections/caching"`) {
		t.Fatalf("type filter should drop page results")
	}

	_, body = ts.get(t, "/search?q=zzzz")
	mustContain(t, body, "No results for")

	_, body = ts.get(t, "/search")
	if strings.Contains(body, "No results for") {
		t.Fatalf("empty query should not report missing results")
	}
}

func TestResetProgress(t *testing.T) {
	ts := newTestSite(t)

	_, _ = ts.post(t, "/sections/caching/topics/ttl", url.Values{"completed": {"1"}})
	_, _ = ts.post(t, "/theme", url.Values{"theme": {"dark"}, "return_to": {"/progress"}})

	_, body := ts.post(t, "/progress/reset", nil)
	mustContain(t, body, "Topics completed: 0", `data-theme="system"`)
}
