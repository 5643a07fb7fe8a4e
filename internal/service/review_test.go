package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AdrielSA/backend-test/internal/cache"
	"github.com/AdrielSA/backend-test/internal/domain"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
	"github.com/AdrielSA/backend-test/pkg/validator"
)

func TestCreateReview_Success(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.createMovie(t, "Heat")

	r := h.addReview(t, m.ID, 4)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, m.ID, r.MovieID)
	assert.Equal(t, 4, r.Rating)
	assert.Contains(t, h.pub.events, "review.created "+m.ID)
}

func TestCreateReview_InvalidatesMovieAndReviews(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	m := h.createMovie(t, "Heat")
	h.addReview(t, m.ID, 5)

	view, err := h.movies.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, view.AverageRating)
	_, err = h.reviews.ListReviews(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, h.mr.Exists(cache.MovieKey(m.ID)))
	require.True(t, h.mr.Exists(cache.ReviewsKey(m.ID)))

	h.addReview(t, m.ID, 3)

	assert.False(t, h.mr.Exists(cache.MovieKey(m.ID)))
	assert.False(t, h.mr.Exists(cache.ReviewsKey(m.ID)))

	view, err = h.movies.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, view.AverageRating)

	reviews, err := h.reviews.ListReviews(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestCreateReview_InvalidationOrder(t *testing.T) {
	j := &journal{}
	movies := new(mockMovieRepository)
	reviews := new(mockReviewRepository)
	redisStore, _ := newRedisCache(t)
	svc := NewReviewService(movies, reviews, journalStore{Store: redisStore, j: j},
		&recordingPublisher{}, Options{}, newTestLogger())

	m := domain.NewMovie(domain.NewMovieParams{Title: "Heat"}, t0)
	movies.On("GetByID", mock.Anything, m.ID).Return(m, nil)
	reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Run(func(mock.Arguments) { j.add("reviews.create") }).
		Return(nil)

	_, err := svc.CreateReview(context.Background(), m.ID, CreateReviewInput{ReviewerName: "Ann", Comment: "Good", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"reviews.create",
		"cache.remove " + cache.ReviewsKey(m.ID),
		"cache.remove " + cache.MovieKey(m.ID),
	}, j.list())
}

func TestCreateReview_UnknownMovie(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.reviews.CreateReview(context.Background(), "missing", CreateReviewInput{
		ReviewerName: "Ann", Comment: "Good", Rating: 4,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateReview_DisabledMovie(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()
	m := h.createMovie(t, "Heat")
	require.NoError(t, h.movies.DisableMovie(ctx, m.ID))

	_, err := h.reviews.CreateReview(ctx, m.ID, CreateReviewInput{ReviewerName: "Ann", Comment: "Good", Rating: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBusinessRule)
	assert.NotErrorIs(t, err, apperrors.ErrConflict)

	view, err := h.movies.GetMovie(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, view.IsActive)
	assert.Equal(t, 0.0, view.AverageRating)
}

func TestCreateReview_Validation(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.createMovie(t, "Heat")

	tests := []struct {
		name  string
		in    CreateReviewInput
		field string
	}{
		{"rating too low", CreateReviewInput{ReviewerName: "Ann", Comment: "x", Rating: 0}, "rating"},
		{"rating too high", CreateReviewInput{ReviewerName: "Ann", Comment: "x", Rating: 6}, "rating"},
		{"blank reviewer", CreateReviewInput{ReviewerName: " ", Comment: "x", Rating: 3}, "reviewerName"},
		{"missing comment", CreateReviewInput{ReviewerName: "Ann", Rating: 3}, "comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.reviews.CreateReview(context.Background(), m.ID, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

			var verr *validator.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields(), tt.field)
		})
	}
}

func TestListReviews_UnknownMovie(t *testing.T) {
	h := newHarness(t, Options{})

	_, err := h.reviews.ListReviews(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.False(t, h.mr.Exists(cache.ReviewsKey("missing")))
}

func TestListReviews_EmptyIsCachedAsList(t *testing.T) {
	h := newHarness(t, Options{})
	m := h.createMovie(t, "Heat")

	reviews, err := h.reviews.ListReviews(context.Background(), m.ID)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)

	raw, err := h.mr.Get(cache.ReviewsKey(m.ID))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)
	assert.Equal(t, cache.ReviewsTTL, h.mr.TTL(cache.ReviewsKey(m.ID)))
}

func TestListReviews_CacheHitSkipsStore(t *testing.T) {
	movies := new(mockMovieRepository)
	reviews := new(mockReviewRepository)
	store, _ := newRedisCache(t)
	svc := NewReviewService(movies, reviews, store, &recordingPublisher{}, Options{}, newTestLogger())

	m := domain.NewMovie(domain.NewMovieParams{Title: "Heat"}, t0)
	movies.On("GetByID", mock.Anything, m.ID).Return(m, nil).Once()
	reviews.On("ListByMovieID", mock.Anything, m.ID).
		Return([]domain.Review{{ID: "r2", MovieID: m.ID, Rating: 3}, {ID: "r1", MovieID: m.ID, Rating: 5}}, nil).Once()

	for i := 0; i < 2; i++ {
		got, err := svc.ListReviews(context.Background(), m.ID)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "r2", got[0].ID)
	}

	movies.AssertExpectations(t)
	reviews.AssertExpectations(t)
}
