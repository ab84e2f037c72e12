package srs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingQuality(t *testing.T) {
	assert.Equal(t, 0, Again.Quality())
	assert.Equal(t, 2, Hard.Quality())
	assert.Equal(t, 3, Medium.Quality())
	assert.Equal(t, 5, Easy.Quality())
}

func TestRatingIsLapse(t *testing.T) {
	assert.True(t, Again.IsLapse())
	assert.True(t, Hard.IsLapse())
	assert.False(t, Medium.IsLapse())
	assert.False(t, Easy.IsLapse())
}

func TestRatingString(t *testing.T) {
	assert.Equal(t, "easy", Easy.String())
	assert.Equal(t, "Rating(7)", Rating(7).String())
}

func TestRatingJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Hard)
	require.NoError(t, err)
	assert.Equal(t, `"hard"`, string(data))

	var r Rating
	require.NoError(t, json.Unmarshal([]byte(`"medium"`), &r))
	assert.Equal(t, Medium, r)

	assert.Error(t, json.Unmarshal([]byte(`"impossible"`), &r))

	_, err = json.Marshal(Rating(0))
	assert.Error(t, err)
}
