package sqlite

import (
	"context"
)

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	// No FK constraints: visitors rows are created lazily by whichever write
	// comes first, and Reset deletes from every table in one transaction.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			visitor_id TEXT PRIMARY KEY,
			theme TEXT NOT NULL DEFAULT 'system',
			updated_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS quiz_results (
			visitor_id TEXT NOT NULL,
			section_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			total INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			answers_json TEXT NOT NULL,
			completed_at_unix INTEGER NOT NULL,
			PRIMARY KEY (visitor_id, section_id)
		);`,
		`CREATE TABLE IF NOT EXISTS completed_topics (
			visitor_id TEXT NOT NULL,
			topic_key TEXT NOT NULL,
			completed_at_unix INTEGER NOT NULL,
			PRIMARY KEY (visitor_id, topic_key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_visitor ON quiz_results(visitor_id);`,
		`CREATE INDEX IF NOT EXISTS idx_completed_topics_visitor ON completed_topics(visitor_id);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
