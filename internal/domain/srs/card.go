// Package srs implements the spaced-repetition scheduler used by vocabulary
// practice. The algorithm is an SM-2 variant: each self-rating maps to a
// quality score that drives the ease factor and the review interval.
//
// Rate is a pure function of (card, rating, now). Persistence of updated
// cards is the caller's responsibility, which keeps the scheduler fully
// testable in memory.
package srs

import "time"

// Scheduling defaults and bounds.
const (
	// DefaultEaseFactor is the ease factor assigned to new cards.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3

	// FirstInterval is the interval in days after the first successful review.
	FirstInterval = 1

	// SecondInterval is the interval in days after the second successful review.
	SecondInterval = 6

	// passingQuality is the quality threshold separating a successful
	// review from a lapse.
	passingQuality = 3
)

// Card holds the per-item, per-user review scheduling state.
type Card struct {
	ItemID       string    `json:"item_id"`
	IntervalDays int       `json:"interval_days"` // >= 1
	Repetitions  int       `json:"repetitions"`   // >= 0, reset to 0 on lapse
	EaseFactor   float64   `json:"ease_factor"`   // >= 1.3
	NextReview   time.Time `json:"next_review"`
	LastReviewed time.Time `json:"last_reviewed"` // zero before first review
}

// NewCard creates a card with scheduling defaults: interval 1, zero
// repetitions, ease 2.5, due immediately.
func NewCard(itemID string, now time.Time) Card {
	return Card{
		ItemID:       itemID,
		IntervalDays: FirstInterval,
		Repetitions:  0,
		EaseFactor:   DefaultEaseFactor,
		NextReview:   now,
	}
}

// IsDue reports whether the card is due for review at the given time.
// Cards due later the same day count as due.
func (c Card) IsDue(now time.Time) bool {
	return !startOfDay(c.NextReview).After(startOfDay(now))
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.LastReviewed.IsZero()
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
