package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prepdesk/prepdesk/internal/application/practice"
)

// ProgressRepo accumulates per-user attempt counters. It implements
// practice.ProgressRecorder.
type ProgressRepo struct {
	conn *Connection
}

var _ practice.ProgressRecorder = (*ProgressRepo)(nil)

// NewProgressRepo creates a new progress repository.
func NewProgressRepo(conn *Connection) *ProgressRepo {
	return &ProgressRepo{conn: conn}
}

// Record adds the update's deltas to the user's running totals.
func (r *ProgressRepo) Record(ctx context.Context, update practice.ProgressUpdate) error {
	query := `
		INSERT INTO user_progress (user_id, attempted, correct, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			attempted = user_progress.attempted + EXCLUDED.attempted,
			correct = user_progress.correct + EXCLUDED.correct,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		update.UserID,
		update.Attempted,
		update.Correct,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record progress for %s: %w", update.UserID, err)
	}

	return nil
}

// Totals returns the user's lifetime attempted and correct counts.
func (r *ProgressRepo) Totals(ctx context.Context, userID string) (attempted, correct int, err error) {
	query := `SELECT attempted, correct FROM user_progress WHERE user_id = $1`

	err = r.conn.QueryRow(ctx, query, userID).Scan(&attempted, &correct)
	if IsNoRows(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("query progress for %s: %w", userID, err)
	}

	return attempted, correct, nil
}
