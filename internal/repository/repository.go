// Package repository declares the durable store contracts of the catalog.
// Implementations return pkg/errors values: NotFound for unknown ids,
// DuplicateTitle for title collisions and Infrastructure for backend failures.
package repository

import (
	"context"

	"github.com/AdrielSA/backend-test/internal/domain"
)

// MovieRepository defines movie persistence operations.
type MovieRepository interface {
	// Create inserts a movie. A title already in the catalog yields
	// DuplicateTitle regardless of the holder's status.
	Create(ctx context.Context, movie *domain.Movie) error

	// GetByID retrieves a movie, active or disabled.
	GetByID(ctx context.Context, id string) (*domain.Movie, error)

	// ExistsByTitle reports whether any movie already uses title.
	ExistsByTitle(ctx context.Context, title string) (bool, error)

	// Update persists the mutable fields of an existing movie.
	Update(ctx context.Context, movie *domain.Movie) error

	// List returns one page of the movies visible under vis that match
	// criteria, each with its average rating, and the size of the whole
	// filtered set.
	List(ctx context.Context, criteria domain.FilterCriteria, vis Visibility) ([]domain.MovieView, int, error)
}

// Visibility selects which movies a listing draws from. It is applied
// before search, so totals count visible movies only.
type Visibility int

const (
	// ActiveOnly hides disabled movies.
	ActiveOnly Visibility = iota
	// AllMovies includes disabled movies.
	AllMovies
)

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	// Create inserts a review. An unknown movie yields NotFound.
	Create(ctx context.Context, review *domain.Review) error

	// ListByMovieID returns every review of a movie, newest first.
	ListByMovieID(ctx context.Context, movieID string) ([]domain.Review, error)
}
