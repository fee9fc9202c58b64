package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("PREP_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PREP_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, dsn, PoolConfig{MaxConns: 2, MaxConnLifetime: time.Minute})
	if err != nil {
		t.Fatalf("NewPool failed: %v", err)
	}
	store, err := NewStore(ctx, pool)
	if err != nil {
		pool.Close()
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	visitorID := uuid.NewString()
	t.Cleanup(func() { _ = store.Reset(context.Background(), visitorID) })

	empty, err := store.GetProgress(ctx, visitorID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if empty.Theme != progress.ThemeSystem || len(empty.QuizResults) != 0 {
		t.Fatalf("unexpected empty progress: %+v", empty)
	}

	completedAt := time.Now().UTC().Truncate(time.Microsecond)
	result := quiz.Result{
		SectionID:   "sec",
		Score:       4,
		Total:       5,
		Passed:      true,
		Answers:     map[string]int{"q1": 2},
		CompletedAt: completedAt,
	}
	if err := store.SaveQuizResult(ctx, visitorID, result); err != nil {
		t.Fatalf("SaveQuizResult failed: %v", err)
	}
	result.Score = 5
	if err := store.SaveQuizResult(ctx, visitorID, result); err != nil {
		t.Fatalf("SaveQuizResult overwrite failed: %v", err)
	}
	if err := store.SetTheme(ctx, visitorID, progress.ThemeDark); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if err := store.SetTopicCompleted(ctx, visitorID, "sec/t1", true, completedAt); err != nil {
		t.Fatalf("SetTopicCompleted failed: %v", err)
	}

	got, err := store.GetProgress(ctx, visitorID)
	if err != nil {
		t.Fatalf("GetProgress failed: %v", err)
	}
	if got.Theme != progress.ThemeDark {
		t.Fatalf("theme = %q", got.Theme)
	}
	stored := got.QuizResults["sec"]
	if stored.Score != 5 || !stored.Passed || stored.Answers["q1"] != 2 || !stored.CompletedAt.Equal(completedAt) {
		t.Fatalf("unexpected stored result: %+v", stored)
	}
	if !got.TopicCompleted("sec", "t1") {
		t.Fatalf("expected topic completed: %+v", got.CompletedTopics)
	}

	if err := store.Reset(ctx, visitorID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	got, err = store.GetProgress(ctx, visitorID)
	if err != nil {
		t.Fatalf("GetProgress after reset failed: %v", err)
	}
	if len(got.QuizResults) != 0 || len(got.CompletedTopics) != 0 || got.Theme != progress.ThemeSystem {
		t.Fatalf("reset left data behind: %+v", got)
	}
}
