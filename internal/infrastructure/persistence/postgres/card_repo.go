package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prepdesk/prepdesk/internal/domain/srs"
)

// CardRepo persists per-user review card state. It implements
// srs.ReviewCardStore.
type CardRepo struct {
	conn *Connection
}

var _ srs.ReviewCardStore = (*CardRepo)(nil)

// NewCardRepo creates a new review card repository.
func NewCardRepo(conn *Connection) *CardRepo {
	return &CardRepo{conn: conn}
}

// LoadAll returns every card stored for the user.
func (r *CardRepo) LoadAll(ctx context.Context, userID string) ([]srs.Card, error) {
	query := `
		SELECT item_id, interval_days, repetitions, ease_factor, next_review, last_reviewed
		FROM review_cards
		WHERE user_id = $1
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query review cards: %w", err)
	}
	defer rows.Close()

	var cards []srs.Card
	for rows.Next() {
		var card srs.Card
		var lastReviewed *time.Time
		if err := rows.Scan(
			&card.ItemID,
			&card.IntervalDays,
			&card.Repetitions,
			&card.EaseFactor,
			&card.NextReview,
			&lastReviewed,
		); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		if lastReviewed != nil {
			card.LastReviewed = *lastReviewed
		}
		cards = append(cards, card)
	}

	return cards, rows.Err()
}

// Save upserts one card for the user.
func (r *CardRepo) Save(ctx context.Context, userID string, card srs.Card) error {
	query := `
		INSERT INTO review_cards (user_id, item_id, interval_days, repetitions, ease_factor, next_review, last_reviewed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			interval_days = EXCLUDED.interval_days,
			repetitions = EXCLUDED.repetitions,
			ease_factor = EXCLUDED.ease_factor,
			next_review = EXCLUDED.next_review,
			last_reviewed = EXCLUDED.last_reviewed
	`

	var lastReviewed *time.Time
	if !card.LastReviewed.IsZero() {
		t := card.LastReviewed.UTC()
		lastReviewed = &t
	}

	_, err := r.conn.Exec(ctx, query,
		userID,
		card.ItemID,
		card.IntervalDays,
		card.Repetitions,
		card.EaseFactor,
		card.NextReview.UTC(),
		lastReviewed,
	)
	if err != nil {
		return fmt.Errorf("save card %s: %w", card.ItemID, err)
	}

	return nil
}
