package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdrielSA/backend-test/internal/cache"
	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/internal/repository"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
	"github.com/AdrielSA/backend-test/pkg/validator"
)

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	movies    repository.MovieRepository
	reviews   repository.ReviewRepository
	cache     cacheAside
	publisher EventPublisher
	now       func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(
	movies repository.MovieRepository,
	reviews repository.ReviewRepository,
	store cache.Store,
	publisher EventPublisher,
	opts Options,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		movies:    movies,
		reviews:   reviews,
		cache:     cacheAside{store: store, fallback: opts.ReadFallback, logger: logger},
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateReviewInput holds the parameters for reviewing a movie.
type CreateReviewInput struct {
	ReviewerName string `json:"reviewerName" validate:"notblank,max=100"`
	Comment      string `json:"comment" validate:"notblank,max=1000"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
}

// CreateReview adds a review to an active movie. The movie's review list and
// its cached view, whose average rating changed, are dropped afterwards.
func (s *ReviewService) CreateReview(ctx context.Context, movieID string, input CreateReviewInput) (*domain.Review, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	movie, err := s.movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	if !movie.CanReceiveReviews() {
		return nil, apperrors.BusinessRule("reviews can only be added to active movies")
	}

	review, err := domain.NewReview(movieID, input.ReviewerName, input.Comment, input.Rating, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	if err := s.cache.remove(ctx, cache.ReviewsKey(movieID), cache.MovieKey(movieID)); err != nil {
		return nil, fmt.Errorf("invalidate movie reviews: %w", err)
	}

	if err := s.publisher.PublishReviewCreated(ctx, review); err != nil {
		s.cache.log(ctx).ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.cache.log(ctx).InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("movie_id", movieID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns a movie's reviews newest first, cache-aside. An
// unknown movie is NotFound rather than an empty list.
func (s *ReviewService) ListReviews(ctx context.Context, movieID string) ([]domain.Review, error) {
	reviews, err := readThrough(ctx, s.cache, cache.ReviewsKey(movieID), cache.ReviewsTTL,
		func(ctx context.Context) ([]domain.Review, error) {
			if _, err := s.movies.GetByID(ctx, movieID); err != nil {
				return nil, err
			}
			return s.reviews.ListByMovieID(ctx, movieID)
		})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}
