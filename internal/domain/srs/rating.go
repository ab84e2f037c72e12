package srs

import (
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/prepdesk/prepdesk/internal/domain/shared"
)

// Rating represents the learner's self-assessment of recall quality.
type Rating int

const (
	Again  Rating = iota + 1 // Complete failure to recall.
	Hard                     // Recalled with significant difficulty.
	Medium                   // Recalled with some effort.
	Easy                     // Recalled effortlessly.
)

var (
	ratingNames = [...]string{Again: "again", Hard: "hard", Medium: "medium", Easy: "easy"}

	ratingByName = map[string]Rating{
		"again":  Again,
		"hard":   Hard,
		"medium": Medium,
		"easy":   Easy,
	}

	// SM-2 quality scores. Quality below 3 counts as a lapse.
	ratingQuality = [...]int{Again: 0, Hard: 2, Medium: 3, Easy: 5}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Rating(0)
	_ json.Marshaler           = Rating(0)
	_ json.Unmarshaler         = (*Rating)(nil)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
)

// String returns the name of the rating ("again", "hard", "medium", "easy").
// For invalid values it returns "Rating(n)".
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// IsValid reports whether r is a valid rating (Again through Easy).
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// Quality returns the SM-2 quality score: again=0, hard=2, medium=3, easy=5.
func (r Rating) Quality() int {
	if !r.IsValid() {
		return 0
	}
	return ratingQuality[r]
}

// IsLapse reports whether the rating resets the repetition streak
// (quality below 3).
func (r Rating) IsLapse() bool {
	return r.Quality() < passingQuality
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", shared.ErrInvalidRating, text)
	}
	*r = v
	return nil
}

// MarshalJSON implements json.Marshaler. Rating serializes as a JSON string.
func (r Rating) MarshalJSON() ([]byte, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (r *Rating) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrInvalidRating, data)
	}
	return r.UnmarshalText([]byte(s))
}
