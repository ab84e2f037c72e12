package srs

import "context"

// ReviewCardStore persists review cards per user. Store failures are
// non-fatal to the engine: callers log them and continue with in-memory
// card state for the remainder of the session.
type ReviewCardStore interface {
	// LoadAll returns every card belonging to the user.
	LoadAll(ctx context.Context, userID string) ([]Card, error)

	// Save upserts one card. Called once per rating event.
	Save(ctx context.Context, userID string, card Card) error
}
