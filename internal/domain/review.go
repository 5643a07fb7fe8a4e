package domain

import (
	"fmt"
	"time"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review is an immutable rating of one movie.
type Review struct {
	ID           string    `json:"id"`
	MovieID      string    `json:"movieId"`
	ReviewerName string    `json:"reviewerName"`
	Comment      string    `json:"comment"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewReview creates a review for movieID. The rating is checked by SetRating.
func NewReview(movieID, reviewerName, comment string, rating int, now time.Time) (*Review, error) {
	base := newBase(now)
	r := &Review{
		ID:           base.ID,
		MovieID:      movieID,
		ReviewerName: reviewerName,
		Comment:      comment,
		CreatedAt:    base.CreatedAt,
	}
	if err := r.SetRating(rating); err != nil {
		return nil, err
	}
	return r, nil
}

// SetRating assigns rating if it lies in [MinRating, MaxRating].
func (r *Review) SetRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}
	r.Rating = rating
	return nil
}

// AverageRating is the arithmetic mean of the reviews' ratings, exactly 0
// for no reviews. Every caller that needs a movie's rating goes through it.
func AverageRating(reviews []Review) float64 {
	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	return AverageOf(ratings)
}

// AverageOf is the mean of ratings, 0 when empty.
func AverageOf(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
