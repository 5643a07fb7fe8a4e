package domain

import (
	"time"
)

// Movie is the aggregate root of the catalog. Average rating is never stored
// on it; see AverageRating.
type Movie struct {
	Base
	Title           string  `json:"title"`
	Description     *string `json:"description,omitempty"`
	ReleaseYear     int     `json:"releaseYear"`
	Genre           string  `json:"genre"`
	Director        string  `json:"director"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	IsActive        bool    `json:"isActive"`
}

// NewMovieParams are the caller-supplied fields of a new movie.
type NewMovieParams struct {
	Title           string
	Description     *string
	ReleaseYear     int
	Genre           string
	Director        string
	DurationMinutes *int
}

// NewMovie creates an active movie with a fresh id.
func NewMovie(p NewMovieParams, now time.Time) *Movie {
	return &Movie{
		Base:            newBase(now),
		Title:           p.Title,
		Description:     p.Description,
		ReleaseYear:     p.ReleaseYear,
		Genre:           p.Genre,
		Director:        p.Director,
		DurationMinutes: p.DurationMinutes,
		IsActive:        true,
	}
}

// Disable moves the movie to its terminal Disabled state and refreshes
// UpdatedAt. Disabling a disabled movie only refreshes the timestamp.
func (m *Movie) Disable(now time.Time) {
	m.IsActive = false
	m.UpdatedAt = now.UTC()
}

// CanReceiveReviews reports whether reviews may be added to the movie.
func (m *Movie) CanReceiveReviews() bool {
	return m.IsActive
}

// MovieView is a movie with its average rating computed at read time. It is
// the shape returned by single and list reads and the shape that is cached.
type MovieView struct {
	Movie
	AverageRating float64 `json:"averageRating"`
}

// NewMovieView pairs m with the average of reviews.
func NewMovieView(m Movie, reviews []Review) MovieView {
	return MovieView{Movie: m, AverageRating: AverageRating(reviews)}
}

// MovieDetail is a movie view together with its reviews, newest first.
type MovieDetail struct {
	MovieView
	Reviews []Review `json:"reviews"`
}

// NewMovieDetail builds a detail view. reviews must already be newest first.
func NewMovieDetail(m Movie, reviews []Review) MovieDetail {
	if reviews == nil {
		reviews = []Review{}
	}
	return MovieDetail{MovieView: NewMovieView(m, reviews), Reviews: reviews}
}
