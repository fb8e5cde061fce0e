package movie

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineshelf/cineshelf/internal/types"
)

func TestParseReleaseDate(t *testing.T) {
	t.Run("PlainDate", func(t *testing.T) {
		got, err := parseReleaseDate("1979-05-25")
		require.NoError(t, err)
		assert.Equal(t, time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC), got.UTC())
	})

	t.Run("RFC3339", func(t *testing.T) {
		got, err := parseReleaseDate("1979-05-25T00:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, 1979, got.Year())
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := parseReleaseDate("sometime in the 70s")
		assert.ErrorIs(t, err, types.ErrValidation)
	})
}

func TestUpdateRequestToParams(t *testing.T) {
	title := "Aliens"
	date := "1986-07-18"
	req := UpdateMovieRequest{Title: &title, ReleaseDate: &date}

	params, err := req.toParams()
	require.NoError(t, err)
	assert.Equal(t, &title, params.Title)
	require.NotNil(t, params.ReleaseDate)
	assert.Equal(t, 1986, params.ReleaseDate.Year())
	assert.Nil(t, params.Rating)
}
