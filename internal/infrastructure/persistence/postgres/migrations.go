package postgres

import (
	"context"
	"fmt"
)

// Migrate creates the schema if it does not exist. Statements are
// idempotent so the call is safe on every startup.
func Migrate(ctx context.Context, conn *Connection) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS practice_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			subject TEXT NOT NULL,
			item_count INTEGER NOT NULL,
			time_limit_seconds INTEGER NOT NULL DEFAULT 0,
			review_mode TEXT NOT NULL DEFAULT '',
			current_index INTEGER NOT NULL DEFAULT 0,
			elapsed_seconds INTEGER NOT NULL DEFAULT 0,
			attempted INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_practice_sessions_user
			ON practice_sessions (user_id, started_at DESC)`,
		`CREATE TABLE IF NOT EXISTS review_cards (
			user_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			interval_days INTEGER NOT NULL DEFAULT 1,
			repetitions INTEGER NOT NULL DEFAULT 0,
			ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
			next_review TIMESTAMPTZ NOT NULL,
			last_reviewed TIMESTAMPTZ,
			PRIMARY KEY (user_id, item_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_review_cards_due
			ON review_cards (user_id, next_review)`,
		`CREATE TABLE IF NOT EXISTS user_progress (
			user_id TEXT PRIMARY KEY,
			attempted INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for i, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: statement %d: %v", ErrMigrationFailed, i+1, err)
		}
	}

	return nil
}
