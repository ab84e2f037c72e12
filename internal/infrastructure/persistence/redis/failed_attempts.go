package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prepdesk/prepdesk/internal/application/practice"
)

// maxStashedAttempts caps the per-user failed attempt list so an outage
// cannot grow it without bound.
const maxStashedAttempts = 100

// FailedAttemptStash preserves answers whose grading exhausted its retries.
// It implements practice.FailedAttemptSink.
type FailedAttemptStash struct {
	cache *Cache
}

var _ practice.FailedAttemptSink = (*FailedAttemptStash)(nil)

// NewFailedAttemptStash creates a stash backed by the cache.
func NewFailedAttemptStash(cache *Cache) *FailedAttemptStash {
	return &FailedAttemptStash{cache: cache}
}

func stashKey(userID string) string {
	return PrefixFailedAttempts + userID
}

// Stash prepends the attempt to the user's list, newest first.
func (s *FailedAttemptStash) Stash(ctx context.Context, userID string, attempt practice.FailedAttempt) error {
	if err := s.cache.PushJSON(ctx, stashKey(userID), attempt, maxStashedAttempts, TTLFailedAttempts); err != nil {
		return fmt.Errorf("stash failed attempt: %w", err)
	}
	return nil
}

// List returns the user's stashed attempts, newest first.
func (s *FailedAttemptStash) List(ctx context.Context, userID string) ([]practice.FailedAttempt, error) {
	var attempts []practice.FailedAttempt
	err := s.cache.ListJSON(ctx, stashKey(userID), func(data []byte) error {
		var a practice.FailedAttempt
		if err := json.Unmarshal(data, &a); err != nil {
			return fmt.Errorf("%w: %v", ErrCacheSerialization, err)
		}
		attempts = append(attempts, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// Clear removes the user's stashed attempts.
func (s *FailedAttemptStash) Clear(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, stashKey(userID))
}
