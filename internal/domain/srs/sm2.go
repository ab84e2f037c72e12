package srs

import (
	"math"
	"sort"
	"time"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

// Rate returns the card's next review state after the given rating.
//
// Quality < 3 (again, hard) is a lapse: repetitions reset to 0, the interval
// drops back to 1 day, and the ease factor is left unchanged. Otherwise the
// repetition count increments, the ease factor is adjusted by the SM-2
// formula (floored at 1.3), and the interval follows the ladder
// 1 -> 6 -> round(previousInterval * easeFactor). The third-plus repetition
// multiplies the interval the card had before this rating, not the new one.
//
// Rate never mutates its input and never touches storage.
func Rate(c Card, r Rating, now time.Time) (Card, error) {
	if !r.IsValid() {
		return Card{}, shared.ErrInvalidRating
	}

	out := c
	q := r.Quality()

	if q < passingQuality {
		out.Repetitions = 0
		out.IntervalDays = FirstInterval
	} else {
		out.Repetitions = c.Repetitions + 1

		ease := c.EaseFactor + (0.1 - float64(5-q)*(0.08+float64(5-q)*0.02))
		if ease < MinEaseFactor {
			ease = MinEaseFactor
		}
		out.EaseFactor = ease

		switch out.Repetitions {
		case 1:
			out.IntervalDays = FirstInterval
		case 2:
			out.IntervalDays = SecondInterval
		default:
			out.IntervalDays = int(math.Round(float64(c.IntervalDays) * ease))
		}
	}

	out.NextReview = now.AddDate(0, 0, out.IntervalDays)
	out.LastReviewed = now
	return out, nil
}

// OrderDue returns a copy of cards stable-sorted ascending by NextReview.
// Cards with identical due times keep their input order; callers rely on
// this for deterministic queue building.
func OrderDue(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NextReview.Before(out[j].NextReview)
	})
	return out
}

// DueCards returns the cards due at the given time, in OrderDue order.
func DueCards(cards []Card, now time.Time) []Card {
	due := make([]Card, 0, len(cards))
	for _, c := range OrderDue(cards) {
		if c.IsDue(now) {
			due = append(due, c)
		}
	}
	return due
}
