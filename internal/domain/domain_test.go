package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func reviewsWith(ratings ...int) []Review {
	out := make([]Review, len(ratings))
	for i, r := range ratings {
		out[i] = Review{Rating: r}
	}
	return out
}

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 0.0, AverageRating([]Review{}))
	assert.Equal(t, 4.0, AverageRating(reviewsWith(5, 4, 3)))
	assert.InDelta(t, 4.5, AverageRating(reviewsWith(5, 4)), 1e-9)
	assert.Equal(t, AverageOf([]int{1, 2}), AverageRating(reviewsWith(1, 2)))
}

func TestNewMovie_StartsActive(t *testing.T) {
	m := NewMovie(NewMovieParams{Title: "Alien", ReleaseYear: 1979, Genre: "Sci-Fi", Director: "Ridley Scott"}, now)

	assert.NotEmpty(t, m.ID)
	assert.True(t, m.IsActive)
	assert.True(t, m.CanReceiveReviews())
	assert.Equal(t, now, m.CreatedAt)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
}

func TestMovie_DisableIsTerminal(t *testing.T) {
	m := NewMovie(NewMovieParams{Title: "Alien"}, now)
	later := now.Add(time.Hour)

	m.Disable(later)
	assert.False(t, m.IsActive)
	assert.False(t, m.CanReceiveReviews())
	assert.Equal(t, later, m.UpdatedAt)
	assert.Equal(t, now, m.CreatedAt)

	m.Disable(later.Add(time.Hour))
	assert.False(t, m.IsActive)
}

func TestReview_SetRatingBounds(t *testing.T) {
	var r Review
	for _, ok := range []int{1, 3, 5} {
		require.NoError(t, r.SetRating(ok))
		assert.Equal(t, ok, r.Rating)
	}
	for _, bad := range []int{0, 6, -1} {
		err := r.SetRating(bad)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	}
	assert.Equal(t, 5, r.Rating)
}

func TestNewReview(t *testing.T) {
	r, err := NewReview("movie-1", "Ana", "Great", 4, now)
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "movie-1", r.MovieID)
	assert.Equal(t, now, r.CreatedAt)

	_, err = NewReview("movie-1", "Ana", "Great", 9, now)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestMovieDetail_JSONShape(t *testing.T) {
	m := NewMovie(NewMovieParams{Title: "Alien", ReleaseYear: 1979}, now)
	d := NewMovieDetail(*m, nil)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Alien", raw["title"])
	assert.Equal(t, 0.0, raw["averageRating"])
	assert.Equal(t, []any{}, raw["reviews"])
	assert.Equal(t, true, raw["isActive"])
	assert.NotContains(t, raw, "description")
}

func TestParseSortBy(t *testing.T) {
	tests := map[string]SortBy{
		"":          SortByCreatedAt,
		"Title":     SortByTitle,
		"year":      SortByYear,
		" RATING ":  SortByRating,
		"createdat": SortByCreatedAt,
	}
	for in, want := range tests {
		got, err := ParseSortBy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSortBy("Director")
	assert.Error(t, err)
}

func TestSortBy_StringAndJSON(t *testing.T) {
	assert.Equal(t, "Rating", SortByRating.String())
	assert.False(t, SortBy(42).Valid())

	data, err := json.Marshal(SortByYear)
	require.NoError(t, err)
	assert.Equal(t, `"Year"`, string(data))

	var s SortBy
	require.NoError(t, json.Unmarshal([]byte(`"Title"`), &s))
	assert.Equal(t, SortByTitle, s)
}

func TestFilterCriteria_Defaults(t *testing.T) {
	c := DefaultFilterCriteria()
	assert.Equal(t, SortByCreatedAt, c.SortBy)
	assert.Equal(t, 1, c.PageNumber)
	assert.Equal(t, 10, c.PageSize)

	c.Search = "  Nolan  "
	assert.Equal(t, "Nolan", c.SearchTerm())
}
