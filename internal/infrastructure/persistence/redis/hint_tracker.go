package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prepdesk/prepdesk/internal/application/practice"
)

// hint usage is kept per session with the session TTL; it feeds later
// analysis, not session flow.
const (
	prefixHints   = "hints:"
	ttlHints      = 24 * time.Hour
	maxHintEvents = 500
)

// HintTracker records hint reveals per session. It implements
// practice.HintTracker.
type HintTracker struct {
	cache *Cache
}

var _ practice.HintTracker = (*HintTracker)(nil)

// NewHintTracker creates a tracker backed by the cache.
func NewHintTracker(cache *Cache) *HintTracker {
	return &HintTracker{cache: cache}
}

type hintEvent struct {
	ItemID           string    `json:"item_id"`
	HintIndex        int       `json:"hint_index"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	At               time.Time `json:"at"`
}

// RecordHintUsage appends one hint reveal to the session's event list.
func (t *HintTracker) RecordHintUsage(ctx context.Context, sessionID, itemID string, hintIndex, timeSpentSeconds int) error {
	event := hintEvent{
		ItemID:           itemID,
		HintIndex:        hintIndex,
		TimeSpentSeconds: timeSpentSeconds,
		At:               time.Now().UTC(),
	}
	if err := t.cache.PushJSON(ctx, prefixHints+sessionID, event, maxHintEvents, ttlHints); err != nil {
		return fmt.Errorf("record hint usage: %w", err)
	}
	return nil
}
