// Package memory is an in-process implementation of the repository
// contracts. Listing runs through the query engine, so it honours the same
// criteria as the Postgres repository.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/internal/query"
	"github.com/AdrielSA/backend-test/internal/repository"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

// Store holds movies and reviews. Movies and Reviews share it so review
// creation can check the movie exists.
type Store struct {
	mu      sync.RWMutex
	order   []string
	movies  map[string]domain.Movie
	titles  map[string]string
	reviews map[string][]domain.Review
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		movies:  make(map[string]domain.Movie),
		titles:  make(map[string]string),
		reviews: make(map[string][]domain.Review),
	}
}

// Movies returns the movie repository view of s.
func (s *Store) Movies() *MovieRepository {
	return &MovieRepository{s: s}
}

// Reviews returns the review repository view of s.
func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{s: s}
}

// MovieRepository implements repository.MovieRepository in memory.
type MovieRepository struct {
	s *Store
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.titles[m.Title]; taken {
		return apperrors.DuplicateTitle(m.Title)
	}
	s.movies[m.ID] = *m
	s.titles[m.Title] = m.ID
	s.order = append(s.order, m.ID)
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return nil, apperrors.NotFound("movie", id)
	}
	return &m, nil
}

func (r *MovieRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.titles[title]
	return ok, nil
}

func (r *MovieRepository) Update(ctx context.Context, m *domain.Movie) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.movies[m.ID]
	if !ok {
		return apperrors.NotFound("movie", m.ID)
	}
	if old.Title != m.Title {
		if _, taken := s.titles[m.Title]; taken {
			return apperrors.DuplicateTitle(m.Title)
		}
		delete(s.titles, old.Title)
		s.titles[m.Title] = m.ID
	}
	s.movies[m.ID] = *m
	return nil
}

// List snapshots the movies visible under vis in creation order and hands
// them to query.Apply.
func (r *MovieRepository) List(ctx context.Context, c domain.FilterCriteria, vis repository.Visibility) ([]domain.MovieView, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s := r.s
	s.mu.RLock()
	movies := make([]domain.Movie, 0, len(s.order))
	for _, id := range s.order {
		m := s.movies[id]
		if vis == repository.ActiveOnly && !m.IsActive {
			continue
		}
		movies = append(movies, m)
	}
	reviews := make(map[string][]domain.Review, len(s.reviews))
	for id, rs := range s.reviews {
		reviews[id] = slices.Clone(rs)
	}
	s.mu.RUnlock()

	views, total := query.Apply(movies, reviews, c)
	return views, total, nil
}

// ReviewRepository implements repository.ReviewRepository in memory.
type ReviewRepository struct {
	s *Store
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.movies[rv.MovieID]; !ok {
		return apperrors.NotFound("movie", rv.MovieID)
	}
	s.reviews[rv.MovieID] = append(s.reviews[rv.MovieID], *rv)
	return nil
}

// ListByMovieID returns a copy of the movie's reviews, newest first. Reviews
// with equal timestamps come back most recently inserted first.
func (r *ReviewRepository) ListByMovieID(ctx context.Context, movieID string) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	out := slices.Clone(s.reviews[movieID])
	s.mu.RUnlock()

	if out == nil {
		return []domain.Review{}, nil
	}
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b domain.Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
