package session

import "context"

// Persistence stores session lifecycle records. All failures are logged and
// non-fatal: the in-memory session is the source of truth until it completes.
type Persistence interface {
	// Create records a new session and returns its ID.
	Create(ctx context.Context, cfg Config) (string, error)

	// Update records mid-session progress.
	Update(ctx context.Context, sessionID string, p Progress) error

	// End records the completed-session summary.
	End(ctx context.Context, sessionID string, s Summary) error
}
