package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func rateSequence(t *testing.T, c Card, ratings ...Rating) Card {
	t.Helper()
	now := testNow
	for _, r := range ratings {
		var err error
		c, err = Rate(c, r, now)
		require.NoError(t, err)
		now = now.AddDate(0, 0, c.IntervalDays)
	}
	return c
}

func TestRate_NewCardEasySequence(t *testing.T) {
	c := NewCard("word-1", testNow)
	require.Equal(t, 2.5, c.EaseFactor)

	// First easy: interval 1, ease 2.5 + 0.1.
	c1, err := Rate(c, Easy, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, c1.Repetitions)
	assert.Equal(t, 1, c1.IntervalDays)
	assert.InDelta(t, 2.6, c1.EaseFactor, 1e-9)
	assert.Equal(t, testNow.AddDate(0, 0, 1), c1.NextReview)
	assert.Equal(t, testNow, c1.LastReviewed)

	// Second easy: interval 6, ease 2.7.
	day2 := testNow.AddDate(0, 0, 1)
	c2, err := Rate(c1, Easy, day2)
	require.NoError(t, err)
	assert.Equal(t, 2, c2.Repetitions)
	assert.Equal(t, 6, c2.IntervalDays)
	assert.InDelta(t, 2.7, c2.EaseFactor, 1e-9)

	// Third easy: interval = round(previous interval 6 * new ease 2.8) = 17.
	day8 := day2.AddDate(0, 0, 6)
	c3, err := Rate(c2, Easy, day8)
	require.NoError(t, err)
	assert.Equal(t, 3, c3.Repetitions)
	assert.InDelta(t, 2.8, c3.EaseFactor, 1e-9)
	assert.Equal(t, 17, c3.IntervalDays)
	assert.Equal(t, day8.AddDate(0, 0, 17), c3.NextReview)
}

func TestRate_LapseResets(t *testing.T) {
	tests := []struct {
		name   string
		rating Rating
	}{
		{"again", Again},
		{"hard", Hard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := rateSequence(t, NewCard("word-1", testNow), Easy, Easy, Easy)
			require.Equal(t, 3, c.Repetitions)
			easeBefore := c.EaseFactor

			lapsed, err := Rate(c, tt.rating, testNow.AddDate(0, 0, 30))
			require.NoError(t, err)
			assert.Equal(t, 0, lapsed.Repetitions)
			assert.Equal(t, 1, lapsed.IntervalDays)
			// Ease is untouched by a lapse.
			assert.Equal(t, easeBefore, lapsed.EaseFactor)
		})
	}
}

func TestRate_EasyThenAgain(t *testing.T) {
	c := NewCard("word-1", testNow)

	c, err := Rate(c, Easy, testNow)
	require.NoError(t, err)

	c, err = Rate(c, Again, testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Repetitions)
	assert.Equal(t, 1, c.IntervalDays)
}

func TestRate_MonotonicIntervalWhilePassing(t *testing.T) {
	c := NewCard("word-1", testNow)
	now := testNow
	prev := 0

	for i, r := range []Rating{Medium, Easy, Medium, Medium, Easy, Medium, Easy, Medium} {
		var err error
		c, err = Rate(c, r, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c.IntervalDays, prev, "interval shrank at step %d", i)
		prev = c.IntervalDays
		now = now.AddDate(0, 0, c.IntervalDays)
	}
}

func TestRate_EaseFloor(t *testing.T) {
	c := NewCard("word-1", testNow)
	now := testNow

	// Medium reduces ease by 0.14 per review; it must bottom out at 1.3.
	for i := 0; i < 25; i++ {
		var err error
		c, err = Rate(c, Medium, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, c.EaseFactor, MinEaseFactor)
		now = now.AddDate(0, 0, c.IntervalDays)
	}
	assert.Equal(t, MinEaseFactor, c.EaseFactor)
}

func TestRate_UsesPreviousIntervalForGrowth(t *testing.T) {
	// A card at repetitions=2, interval=6, ease=2.5. Rating medium gives
	// new ease 2.36 and interval round(6 * 2.36) = 14 - computed from the
	// pre-update interval, not the new one.
	c := Card{
		ItemID:       "word-1",
		IntervalDays: 6,
		Repetitions:  2,
		EaseFactor:   2.5,
		NextReview:   testNow,
		LastReviewed: testNow.AddDate(0, 0, -6),
	}

	out, err := Rate(c, Medium, testNow)
	require.NoError(t, err)
	assert.InDelta(t, 2.36, out.EaseFactor, 1e-9)
	assert.Equal(t, 14, out.IntervalDays)
}

func TestRate_InvalidRating(t *testing.T) {
	_, err := Rate(NewCard("word-1", testNow), Rating(0), testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidRating)

	_, err = Rate(NewCard("word-1", testNow), Rating(9), testNow)
	assert.ErrorIs(t, err, shared.ErrInvalidRating)
}

func TestRate_DoesNotMutateInput(t *testing.T) {
	c := NewCard("word-1", testNow)
	before := c

	_, err := Rate(c, Easy, testNow)
	require.NoError(t, err)
	assert.Equal(t, before, c)
}

func TestOrderDue_SortsAscending(t *testing.T) {
	cards := []Card{
		{ItemID: "c", NextReview: testNow.AddDate(0, 0, 3)},
		{ItemID: "a", NextReview: testNow.AddDate(0, 0, -1)},
		{ItemID: "b", NextReview: testNow},
	}

	ordered := OrderDue(cards)
	assert.Equal(t, []string{"a", "b", "c"}, cardIDs(ordered))
	// Input is untouched.
	assert.Equal(t, "c", cards[0].ItemID)
}

func TestOrderDue_StableOnTies(t *testing.T) {
	due := testNow
	cards := []Card{
		{ItemID: "first", NextReview: due},
		{ItemID: "second", NextReview: due},
		{ItemID: "third", NextReview: due},
		{ItemID: "earlier", NextReview: due.AddDate(0, 0, -2)},
	}

	ordered := OrderDue(cards)
	assert.Equal(t, []string{"earlier", "first", "second", "third"}, cardIDs(ordered))
}

func TestDueCards(t *testing.T) {
	cards := []Card{
		{ItemID: "tomorrow", NextReview: testNow.AddDate(0, 0, 1)},
		{ItemID: "overdue", NextReview: testNow.AddDate(0, 0, -3)},
		{ItemID: "later-today", NextReview: testNow.Add(5 * time.Hour)},
	}

	due := DueCards(cards, testNow)
	assert.Equal(t, []string{"overdue", "later-today"}, cardIDs(due))
}

func cardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ItemID
	}
	return ids
}
