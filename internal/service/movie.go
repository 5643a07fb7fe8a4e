package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdrielSA/backend-test/internal/cache"
	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/internal/repository"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
	"github.com/AdrielSA/backend-test/pkg/pagination"
	"github.com/AdrielSA/backend-test/pkg/validator"
)

// MovieService implements the business logic for movie operations.
type MovieService struct {
	movies    repository.MovieRepository
	reviews   repository.ReviewRepository
	cache     cacheAside
	publisher EventPublisher
	now       func() time.Time
}

// NewMovieService creates a new movie service.
func NewMovieService(
	movies repository.MovieRepository,
	reviews repository.ReviewRepository,
	store cache.Store,
	publisher EventPublisher,
	opts Options,
	logger *slog.Logger,
) *MovieService {
	return &MovieService{
		movies:    movies,
		reviews:   reviews,
		cache:     cacheAside{store: store, fallback: opts.ReadFallback, logger: logger},
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateMovieInput holds the parameters for creating a movie.
type CreateMovieInput struct {
	Title           string  `json:"title" validate:"notblank,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	ReleaseYear     int     `json:"releaseYear" validate:"gte=1888,notfutureyear"`
	Genre           string  `json:"genre" validate:"notblank,max=100"`
	Director        string  `json:"director" validate:"notblank,max=200"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitempty,gt=0"`
}

// CreateMovie validates input, rejects a title already in the catalog and
// stores a new active movie. Every cached listing is dropped afterwards.
func (s *MovieService) CreateMovie(ctx context.Context, input CreateMovieInput) (*domain.MovieView, error) {
	if err := validator.Validate(input); err != nil {
		return nil, err
	}

	exists, err := s.movies.ExistsByTitle(ctx, input.Title)
	if err != nil {
		return nil, fmt.Errorf("check movie title: %w", err)
	}
	if exists {
		return nil, apperrors.DuplicateTitle(input.Title)
	}

	movie := domain.NewMovie(domain.NewMovieParams{
		Title:           input.Title,
		Description:     input.Description,
		ReleaseYear:     input.ReleaseYear,
		Genre:           input.Genre,
		Director:        input.Director,
		DurationMinutes: input.DurationMinutes,
	}, s.now())

	if err := s.movies.Create(ctx, movie); err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}

	if err := s.cache.removeLists(ctx); err != nil {
		return nil, fmt.Errorf("invalidate movie lists: %w", err)
	}

	if err := s.publisher.PublishMovieCreated(ctx, movie); err != nil {
		s.cache.log(ctx).ErrorContext(ctx, "failed to publish movie.created event",
			slog.String("movie_id", movie.ID),
			slog.String("error", err.Error()),
		)
	}

	s.cache.log(ctx).InfoContext(ctx, "movie created",
		slog.String("movie_id", movie.ID),
		slog.String("title", movie.Title),
	)

	view := domain.NewMovieView(*movie, nil)
	return &view, nil
}

// GetMovie returns a movie with its average rating, cache-aside. Disabled
// movies are returned too.
func (s *MovieService) GetMovie(ctx context.Context, id string) (*domain.MovieView, error) {
	view, err := readThrough(ctx, s.cache, cache.MovieKey(id), cache.MovieTTL,
		func(ctx context.Context) (domain.MovieView, error) {
			movie, err := s.movies.GetByID(ctx, id)
			if err != nil {
				return domain.MovieView{}, err
			}
			reviews, err := s.reviews.ListByMovieID(ctx, id)
			if err != nil {
				return domain.MovieView{}, err
			}
			return domain.NewMovieView(*movie, reviews), nil
		})
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return &view, nil
}

// GetMovieWithReviews returns a movie with its average rating and every
// review, newest first. It always reads the store.
func (s *MovieService) GetMovieWithReviews(ctx context.Context, id string) (*domain.MovieDetail, error) {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	reviews, err := s.reviews.ListByMovieID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list movie reviews: %w", err)
	}

	detail := domain.NewMovieDetail(*movie, reviews)
	return &detail, nil
}

// ListMovies returns one page of active movies matching criteria, cache-aside
// under a key derived from every criteria field. Disabled movies are neither
// listed nor counted.
func (s *MovieService) ListMovies(ctx context.Context, criteria domain.FilterCriteria) (*pagination.PagedResult[domain.MovieView], error) {
	if err := validateCriteria(criteria); err != nil {
		return nil, err
	}

	page, err := readThrough(ctx, s.cache, cache.MovieListKey(criteria), cache.MovieListTTL,
		func(ctx context.Context) (*pagination.PagedResult[domain.MovieView], error) {
			views, total, err := s.movies.List(ctx, criteria, repository.ActiveOnly)
			if err != nil {
				return nil, err
			}
			return pagination.NewPagedResult(views, total, criteria.Params), nil
		})
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return page, nil
}

// DisableMovie moves a movie to the disabled state. Disabling an already
// disabled movie succeeds. The movie entry and every listing are dropped
// from the cache afterwards.
func (s *MovieService) DisableMovie(ctx context.Context, id string) error {
	movie, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get movie: %w", err)
	}

	movie.Disable(s.now())
	if err := s.movies.Update(ctx, movie); err != nil {
		return fmt.Errorf("disable movie: %w", err)
	}

	if err := s.cache.remove(ctx, cache.MovieKey(id)); err != nil {
		return fmt.Errorf("invalidate movie: %w", err)
	}
	if err := s.cache.removeLists(ctx); err != nil {
		return fmt.Errorf("invalidate movie lists: %w", err)
	}

	if err := s.publisher.PublishMovieDisabled(ctx, movie); err != nil {
		s.cache.log(ctx).ErrorContext(ctx, "failed to publish movie.disabled event",
			slog.String("movie_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.cache.log(ctx).InfoContext(ctx, "movie disabled", slog.String("movie_id", id))
	return nil
}

func validateCriteria(c domain.FilterCriteria) error {
	if !c.SortBy.Valid() {
		return validator.FieldError("sortBy", "must be one of: "+strings.Join(domain.SortByNames(), ", "))
	}
	return validator.Validate(c)
}
