package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"interview-prep/internal/progress"
	"interview-prep/internal/quiz"
)

var _ progress.Store = (*SQLiteStore)(nil)

// GetProgress assembles the visitor row, quiz results and completed topics.
// A visitor with no rows at all reads as progress.Empty.
func (s *SQLiteStore) GetProgress(ctx context.Context, visitorID string) (progress.Progress, error) {
	out := progress.Empty(visitorID)

	var (
		theme         string
		updatedAtUnix int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT theme, updated_at_unix FROM visitors WHERE visitor_id = ?`,
		visitorID,
	).Scan(&theme, &updatedAtUnix)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return progress.Progress{}, err
	default:
		out.Theme = progress.Theme(theme)
		out.UpdatedAt = time.Unix(0, updatedAtUnix).UTC()
	}

	results, err := s.GetQuizResults(ctx, visitorID)
	if err != nil {
		return progress.Progress{}, err
	}
	out.QuizResults = results

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT topic_key, completed_at_unix FROM completed_topics WHERE visitor_id = ?`,
		visitorID,
	)
	if err != nil {
		return progress.Progress{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key             string
			completedAtUnix int64
		)
		if err := rows.Scan(&key, &completedAtUnix); err != nil {
			return progress.Progress{}, err
		}
		out.CompletedTopics[key] = time.Unix(0, completedAtUnix).UTC()
	}

	return out, rows.Err()
}

// SaveQuizResult overwrites any earlier attempt for the same section.
func (s *SQLiteStore) SaveQuizResult(ctx context.Context, visitorID string, result quiz.Result) error {
	answers := result.Answers
	if answers == nil {
		answers = map[string]int{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	passed := 0
	if result.Passed {
		passed = 1
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO quiz_results (visitor_id, section_id, score, total, passed, answers_json, completed_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(visitor_id, section_id) DO UPDATE SET
			score = excluded.score,
			total = excluded.total,
			passed = excluded.passed,
			answers_json = excluded.answers_json,
			completed_at_unix = excluded.completed_at_unix`,
		visitorID,
		result.SectionID,
		result.Score,
		result.Total,
		passed,
		string(answersJSON),
		result.CompletedAt.UTC().UnixNano(),
	); err != nil {
		return err
	}

	if err := s.touchVisitor(ctx, tx, visitorID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetQuizResults(ctx context.Context, visitorID string) (map[string]quiz.Result, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT section_id, score, total, passed, answers_json, completed_at_unix
		 FROM quiz_results
		 WHERE visitor_id = ?`,
		visitorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string]quiz.Result)
	for rows.Next() {
		var (
			result          quiz.Result
			passed          int
			answersJSON     string
			completedAtUnix int64
		)
		if err := rows.Scan(&result.SectionID, &result.Score, &result.Total, &passed, &answersJSON, &completedAtUnix); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answersJSON), &result.Answers); err != nil {
			return nil, err
		}
		if result.Answers == nil {
			result.Answers = map[string]int{}
		}
		result.Passed = passed == 1
		result.CompletedAt = time.Unix(0, completedAtUnix).UTC()
		results[result.SectionID] = result
	}

	return results, rows.Err()
}

func (s *SQLiteStore) SetTheme(ctx context.Context, visitorID string, theme progress.Theme) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO visitors (visitor_id, theme, updated_at_unix) VALUES (?, ?, ?)
		 ON CONFLICT(visitor_id) DO UPDATE SET
			theme = excluded.theme,
			updated_at_unix = excluded.updated_at_unix`,
		visitorID,
		string(theme),
		s.now().UTC().UnixNano(),
	)
	return err
}

func (s *SQLiteStore) SetTopicCompleted(ctx context.Context, visitorID, topicKey string, completed bool, at time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if completed {
		_, err = tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO completed_topics (visitor_id, topic_key, completed_at_unix) VALUES (?, ?, ?)`,
			visitorID,
			topicKey,
			at.UTC().UnixNano(),
		)
	} else {
		_, err = tx.ExecContext(
			ctx,
			`DELETE FROM completed_topics WHERE visitor_id = ? AND topic_key = ?`,
			visitorID,
			topicKey,
		)
	}
	if err != nil {
		return err
	}

	if err := s.touchVisitor(ctx, tx, visitorID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Reset(ctx context.Context, visitorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM quiz_results WHERE visitor_id = ?`,
		`DELETE FROM completed_topics WHERE visitor_id = ?`,
		`DELETE FROM visitors WHERE visitor_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, visitorID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) touchVisitor(ctx context.Context, tx *sql.Tx, visitorID string) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO visitors (visitor_id, updated_at_unix) VALUES (?, ?)
		 ON CONFLICT(visitor_id) DO UPDATE SET updated_at_unix = excluded.updated_at_unix`,
		visitorID,
		s.now().UTC().UnixNano(),
	)
	return err
}
