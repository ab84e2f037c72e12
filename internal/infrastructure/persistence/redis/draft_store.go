package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/prepdesk/prepdesk/internal/application/practice"
)

// DraftStore persists in-progress answer text per (user, item). It
// implements practice.DraftStore.
type DraftStore struct {
	cache *Cache
}

var _ practice.DraftStore = (*DraftStore)(nil)

// NewDraftStore creates a draft store backed by the cache.
func NewDraftStore(cache *Cache) *DraftStore {
	return &DraftStore{cache: cache}
}

func draftKey(userID, itemID string) string {
	return fmt.Sprintf("%s%s:%s", PrefixDraft, userID, itemID)
}

// Save stores the draft text. An empty draft clears the key.
func (s *DraftStore) Save(ctx context.Context, userID, itemID, text string) error {
	key := draftKey(userID, itemID)
	if text == "" {
		return s.cache.Delete(ctx, key)
	}
	return s.cache.SetString(ctx, key, text, TTLDraft)
}

// Load returns the stored draft, or empty string when there is none.
func (s *DraftStore) Load(ctx context.Context, userID, itemID string) (string, error) {
	text, err := s.cache.GetString(ctx, draftKey(userID, itemID))
	if errors.Is(err, ErrCacheMiss) {
		return "", nil
	}
	return text, err
}
