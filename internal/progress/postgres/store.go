package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
)

var _ progress.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	visitor_id TEXT PRIMARY KEY,
	theme TEXT NOT NULL DEFAULT 'system',
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS quiz_results (
	visitor_id TEXT NOT NULL,
	section_id TEXT NOT NULL,
	score INTEGER NOT NULL,
	total INTEGER NOT NULL,
	passed BOOLEAN NOT NULL,
	answers JSONB NOT NULL DEFAULT '{}'::jsonb,
	completed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (visitor_id, section_id)
);

CREATE TABLE IF NOT EXISTS completed_topics (
	visitor_id TEXT NOT NULL,
	topic_key TEXT NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (visitor_id, topic_key)
);
`

// Store keeps visitor progress in PostgreSQL. It owns the pool it is given.
type Store struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewStore creates the tables if they are missing.
func NewStore(ctx context.Context, db *pgxpool.Pool) (*Store, error) {
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func (s *Store) GetProgress(ctx context.Context, visitorID string) (progress.Progress, error) {
	out := progress.Empty(visitorID)

	var (
		theme     string
		updatedAt time.Time
	)
	err := s.db.QueryRow(
		ctx,
		`SELECT theme, updated_at FROM visitors WHERE visitor_id = $1`,
		visitorID,
	).Scan(&theme, &updatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return progress.Progress{}, fmt.Errorf("get visitor: %w", err)
	default:
		out.Theme = progress.Theme(theme)
		out.UpdatedAt = updatedAt.UTC()
	}

	results, err := s.GetQuizResults(ctx, visitorID)
	if err != nil {
		return progress.Progress{}, err
	}
	out.QuizResults = results

	rows, err := s.db.Query(
		ctx,
		`SELECT topic_key, completed_at FROM completed_topics WHERE visitor_id = $1`,
		visitorID,
	)
	if err != nil {
		return progress.Progress{}, fmt.Errorf("get topics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key         string
			completedAt time.Time
		)
		if err := rows.Scan(&key, &completedAt); err != nil {
			return progress.Progress{}, fmt.Errorf("scan topic: %w", err)
		}
		out.CompletedTopics[key] = completedAt.UTC()
	}

	return out, rows.Err()
}

func (s *Store) SaveQuizResult(ctx context.Context, visitorID string, result quiz.Result) error {
	answers := result.Answers
	if answers == nil {
		answers = map[string]int{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return err
	}

	return s.withinTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO quiz_results (visitor_id, section_id, score, total, passed, answers, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (visitor_id, section_id) DO UPDATE SET
				score = excluded.score,
				total = excluded.total,
				passed = excluded.passed,
				answers = excluded.answers,
				completed_at = excluded.completed_at`,
			visitorID,
			result.SectionID,
			result.Score,
			result.Total,
			result.Passed,
			answersJSON,
			result.CompletedAt.UTC(),
		); err != nil {
			return fmt.Errorf("save quiz result: %w", err)
		}
		return s.touchVisitor(ctx, tx, visitorID)
	})
}

func (s *Store) GetQuizResults(ctx context.Context, visitorID string) (map[string]quiz.Result, error) {
	rows, err := s.db.Query(
		ctx,
		`SELECT section_id, score, total, passed, answers, completed_at
		 FROM quiz_results
		 WHERE visitor_id = $1`,
		visitorID,
	)
	if err != nil {
		return nil, fmt.Errorf("get quiz results: %w", err)
	}
	defer rows.Close()

	results := make(map[string]quiz.Result)
	for rows.Next() {
		var (
			result      quiz.Result
			answersJSON []byte
		)
		if err := rows.Scan(&result.SectionID, &result.Score, &result.Total, &result.Passed, &answersJSON, &result.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		if err := json.Unmarshal(answersJSON, &result.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
		result.CompletedAt = result.CompletedAt.UTC()
		results[result.SectionID] = result
	}

	return results, rows.Err()
}

func (s *Store) SetTheme(ctx context.Context, visitorID string, theme progress.Theme) error {
	_, err := s.db.Exec(
		ctx,
		`INSERT INTO visitors (visitor_id, theme, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (visitor_id) DO UPDATE SET
			theme = excluded.theme,
			updated_at = excluded.updated_at`,
		visitorID,
		string(theme),
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}

func (s *Store) SetTopicCompleted(ctx context.Context, visitorID, topicKey string, completed bool, at time.Time) error {
	return s.withinTx(ctx, func(tx pgx.Tx) error {
		var err error
		if completed {
			_, err = tx.Exec(
				ctx,
				`INSERT INTO completed_topics (visitor_id, topic_key, completed_at) VALUES ($1, $2, $3)
				 ON CONFLICT (visitor_id, topic_key) DO UPDATE SET completed_at = excluded.completed_at`,
				visitorID,
				topicKey,
				at.UTC(),
			)
		} else {
			_, err = tx.Exec(
				ctx,
				`DELETE FROM completed_topics WHERE visitor_id = $1 AND topic_key = $2`,
				visitorID,
				topicKey,
			)
		}
		if err != nil {
			return fmt.Errorf("set topic: %w", err)
		}
		return s.touchVisitor(ctx, tx, visitorID)
	})
}

func (s *Store) Reset(ctx context.Context, visitorID string) error {
	return s.withinTx(ctx, func(tx pgx.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM quiz_results WHERE visitor_id = $1`,
			`DELETE FROM completed_topics WHERE visitor_id = $1`,
			`DELETE FROM visitors WHERE visitor_id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, visitorID); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) withinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) touchVisitor(ctx context.Context, tx pgx.Tx, visitorID string) error {
	_, err := tx.Exec(
		ctx,
		`INSERT INTO visitors (visitor_id, updated_at) VALUES ($1, $2)
		 ON CONFLICT (visitor_id) DO UPDATE SET updated_at = excluded.updated_at`,
		visitorID,
		s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("touch visitor: %w", err)
	}
	return nil
}
