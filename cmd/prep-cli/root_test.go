package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"interview-prep/internal/cli"
	"interview-prep/internal/content"
	"interview-prep/internal/httpapi"
	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
	"interview-prep/internal/search"
	"interview-prep/internal/visitor"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSectionsCommandUsesEmbeddedCatalog(t *testing.T) {
	out, err := execute(t, "", "sections", "--category", "behavioral")
	if err != nil {
		t.Fatalf("sections failed: %v", err)
	}
	if !strings.HasPrefix(out, "Behavioral:\n") || strings.Contains(out, "System Design:") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "", "sections", "--category", "cooking"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestQuizCommandMustKnow(t *testing.T) {
	out, err := execute(t, "b\nc\n", "quiz", "caching", "--must-know")
	if err != nil {
		t.Fatalf("quiz failed: %v", err)
	}
	if !strings.Contains(out, "Score: 2/2 (PASS)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestSearchCommandValidatesType(t *testing.T) {
	if _, err := execute(t, "", "search", "cache", "--type", "video"); err == nil {
		t.Fatalf("expected error for unknown type")
	}

	out, err := execute(t, "", "search", "cache", "--type", "quiz")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "[quiz]") || strings.Contains(out, "[topic]") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	catalog, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default failed: %v", err)
	}
	progressService := progress.NewService(progress.NewMemoryStore())
	quizzes := quiz.NewService(catalog, progressService)
	index := search.NewIndex(catalog.SearchItems())
	issuer, err := visitor.NewIssuer(visitor.Config{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("NewIssuer failed: %v", err)
	}

	root := mux.NewRouter()
	httpapi.Register(root, httpapi.NewAPI(catalog, quizzes, progressService, index, nil))
	server := httptest.NewServer(issuer.Middleware(nil)(root))
	t.Cleanup(server.Close)
	return server
}

func TestProgressCommandNeedsServer(t *testing.T) {
	if _, err := execute(t, "", "progress"); !errors.Is(err, cli.ErrNoProgress) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProgressFollowsQuizAcrossRuns(t *testing.T) {
	server := newTestServer(t)
	tokenFile := filepath.Join(t.TempDir(), "visitor-token")
	remote := []string{"--server", server.URL, "--token-file", tokenFile}

	out, err := execute(t, "b\nc\n", append([]string{"quiz", "caching", "--must-know"}, remote...)...)
	if err != nil {
		t.Fatalf("quiz failed: %v", err)
	}
	if !strings.Contains(out, "Score: 2/2 (PASS)") {
		t.Fatalf("unexpected quiz output:\n%s", out)
	}
	if raw, err := os.ReadFile(tokenFile); err != nil || strings.TrimSpace(string(raw)) == "" {
		t.Fatalf("expected a saved visitor token, got %q (%v)", raw, err)
	}

	out, err = execute(t, "", append([]string{"progress"}, remote...)...)
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out, "Quizzes attempted: 1") || !strings.Contains(out, "Quizzes passed:    1") {
		t.Fatalf("progress did not follow the quiz:\n%s", out)
	}

	out, err = execute(t, "", append([]string{"progress", "--reset"}, remote...)...)
	if err != nil {
		t.Fatalf("progress --reset failed: %v", err)
	}
	if !strings.Contains(out, "Progress cleared.") || !strings.Contains(out, "Quizzes attempted: 0") {
		t.Fatalf("unexpected reset output:\n%s", out)
	}
}

func TestVisitorTokenFlagOverridesTokenFile(t *testing.T) {
	server := newTestServer(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "first")
	other := filepath.Join(dir, "other")

	if _, err := execute(t, "b\nc\n", "quiz", "caching", "--must-know", "--server", server.URL, "--token-file", first); err != nil {
		t.Fatalf("quiz failed: %v", err)
	}
	raw, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read token: %v", err)
	}

	out, err := execute(t, "", "progress", "--server", server.URL, "--token-file", other, "--visitor-token", strings.TrimSpace(string(raw)))
	if err != nil {
		t.Fatalf("progress failed: %v", err)
	}
	if !strings.Contains(out, "Quizzes attempted: 1") {
		t.Fatalf("token flag was not used:\n%s", out)
	}
	if _, err := os.Stat(other); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("an unchanged token should not be rewritten, stat err = %v", err)
	}
}

func TestHealthCommand(t *testing.T) {
	local, err := execute(t, "", "health")
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if !strings.HasPrefix(local, "ok: ") {
		t.Fatalf("unexpected output: %q", local)
	}

	server := newTestServer(t)
	remote, err := execute(t, "", "health", "--server", server.URL, "--token-file", "")
	if err != nil {
		t.Fatalf("remote health failed: %v", err)
	}
	if remote != local {
		t.Fatalf("remote health %q differs from local %q", remote, local)
	}
}

func TestRemoteSourceReportsUnavailableServer(t *testing.T) {
	_, err := execute(t, "", "--server", "http://127.0.0.1:1", "--timeout", "500ms", "sections")
	if err == nil || err.Error() != "prep server unavailable at http://127.0.0.1:1" {
		t.Fatalf("unexpected error: %v", err)
	}
}
