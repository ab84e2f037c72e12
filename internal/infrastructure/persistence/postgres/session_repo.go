package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prepdesk/prepdesk/internal/domain/session"
)

// SessionRepo persists session records. It implements session.Persistence.
type SessionRepo struct {
	conn *Connection
}

var _ session.Persistence = (*SessionRepo)(nil)

// NewSessionRepo creates a new session repository.
func NewSessionRepo(conn *Connection) *SessionRepo {
	return &SessionRepo{conn: conn}
}

// Create records a new session and returns its ID.
func (r *SessionRepo) Create(ctx context.Context, cfg session.Config) (string, error) {
	id := uuid.NewString()

	query := `
		INSERT INTO practice_sessions (id, user_id, subject, item_count, time_limit_seconds, review_mode, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		id,
		cfg.UserID,
		string(cfg.Subject),
		cfg.ItemCount,
		cfg.TimeLimitSeconds,
		string(cfg.ReviewMode),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return id, nil
}

// Update records mid-session progress.
func (r *SessionRepo) Update(ctx context.Context, sessionID string, p session.Progress) error {
	query := `
		UPDATE practice_sessions
		SET current_index = $2, elapsed_seconds = $3, attempted = $4, correct = $5
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		sessionID,
		p.CurrentIndex,
		p.ElapsedSeconds,
		p.Attempted,
		p.Correct,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update session %s: %w", sessionID, ErrNoRows)
	}

	return nil
}

// End records the completed-session summary.
func (r *SessionRepo) End(ctx context.Context, sessionID string, s session.Summary) error {
	query := `
		UPDATE practice_sessions
		SET attempted = $2, correct = $3, elapsed_seconds = $4, completed = TRUE, ended_at = $5
		WHERE id = $1
	`

	tag, err := r.conn.Exec(ctx, query,
		sessionID,
		s.QuestionsAttempted,
		s.QuestionsCorrect,
		s.ElapsedSeconds,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("end session %s: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("end session %s: %w", sessionID, ErrNoRows)
	}

	return nil
}

// SessionRecord is a stored session row.
type SessionRecord struct {
	ID             string
	UserID         string
	Subject        string
	ItemCount      int
	ElapsedSeconds int
	Attempted      int
	Correct        int
	Completed      bool
	StartedAt      time.Time
	EndedAt        *time.Time
}

// RecentSessions returns the user's most recent sessions, newest first.
func (r *SessionRepo) RecentSessions(ctx context.Context, userID string, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, subject, item_count, elapsed_seconds, attempted, correct, completed, started_at, ended_at
		FROM practice_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Subject,
			&rec.ItemCount,
			&rec.ElapsedSeconds,
			&rec.Attempted,
			&rec.Correct,
			&rec.Completed,
			&rec.StartedAt,
			&rec.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
