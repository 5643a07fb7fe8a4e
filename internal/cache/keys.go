package cache

import (
	"fmt"
	"time"

	"github.com/AdrielSA/backend-test/internal/domain"
)

// Key prefixes and the pattern covering every cached movie listing.
const (
	movieKeyPrefix   = "movie:"
	reviewsKeyPrefix = "reviews:movie:"
	listKeyPrefix    = "movies:"

	MovieListPattern = listKeyPrefix + "*"
)

// TTLs per cached shape.
const (
	MovieTTL     = 5 * time.Minute
	MovieListTTL = 2 * time.Minute
	ReviewsTTL   = 5 * time.Minute
)

// MovieKey is the key of a single movie view.
func MovieKey(id string) string {
	return movieKeyPrefix + id
}

// ReviewsKey is the key of a movie's review list.
func ReviewsKey(movieID string) string {
	return reviewsKeyPrefix + movieID
}

// MovieListKey derives the key of one listing page from every criteria
// field. Search is used verbatim, so case and whitespace variants are
// distinct entries. The boolean renders as True/False.
func MovieListKey(c domain.FilterCriteria) string {
	return fmt.Sprintf("%s%s_%s_%s_%d_%d",
		listKeyPrefix, c.Search, c.SortBy, boolName(c.IsDescending), c.PageNumber, c.PageSize)
}

func boolName(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
