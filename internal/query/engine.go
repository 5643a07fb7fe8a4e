// Package query filters, orders and pages movies in process. The Postgres
// repository implements the same criteria in SQL.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/AdrielSA/backend-test/internal/domain"
)

// Matches reports whether term is a case-sensitive substring of the movie's
// title, director, genre or description. An empty term matches everything.
func Matches(m *domain.Movie, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(m.Title, term) ||
		strings.Contains(m.Director, term) ||
		strings.Contains(m.Genre, term) {
		return true
	}
	return m.Description != nil && strings.Contains(*m.Description, term)
}

// Apply runs criteria against movies and returns the requested page plus the
// size of the filtered set. reviews maps movie id to its reviews and feeds
// both the Rating ordering and each item's average. Ties keep the input
// order; a page past the end is empty.
func Apply(movies []domain.Movie, reviews map[string][]domain.Review, c domain.FilterCriteria) ([]domain.MovieView, int) {
	term := c.SearchTerm()

	views := make([]domain.MovieView, 0, len(movies))
	for i := range movies {
		if Matches(&movies[i], term) {
			views = append(views, domain.NewMovieView(movies[i], reviews[movies[i].ID]))
		}
	}
	total := len(views)

	compare := comparator(c.SortBy)
	slices.SortStableFunc(views, func(a, b domain.MovieView) int {
		if c.IsDescending {
			return compare(b, a)
		}
		return compare(a, b)
	})

	return page(views, c.Offset(), c.PageSize), total
}

func comparator(s domain.SortBy) func(a, b domain.MovieView) int {
	switch s {
	case domain.SortByTitle:
		return func(a, b domain.MovieView) int { return strings.Compare(a.Title, b.Title) }
	case domain.SortByYear:
		return func(a, b domain.MovieView) int { return cmp.Compare(a.ReleaseYear, b.ReleaseYear) }
	case domain.SortByRating:
		return func(a, b domain.MovieView) int { return cmp.Compare(a.AverageRating, b.AverageRating) }
	default:
		return func(a, b domain.MovieView) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func page[T any](items []T, offset, size int) []T {
	if offset < 0 || size <= 0 || offset >= len(items) {
		return []T{}
	}
	end := min(offset+size, len(items))
	return items[offset:end]
}
