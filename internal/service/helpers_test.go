package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AdrielSA/backend-test/internal/cache"
	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/internal/repository"
	"github.com/AdrielSA/backend-test/internal/repository/memory"
)

// --- Mock Repositories ---

type mockMovieRepository struct {
	mock.Mock
}

func (m *mockMovieRepository) Create(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *mockMovieRepository) GetByID(ctx context.Context, id string) (*domain.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

func (m *mockMovieRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	args := m.Called(ctx, title)
	return args.Bool(0), args.Error(1)
}

func (m *mockMovieRepository) Update(ctx context.Context, movie *domain.Movie) error {
	args := m.Called(ctx, movie)
	return args.Error(0)
}

func (m *mockMovieRepository) List(ctx context.Context, c domain.FilterCriteria, vis repository.Visibility) ([]domain.MovieView, int, error) {
	args := m.Called(ctx, c, vis)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MovieView), args.Int(1), args.Error(2)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepository) ListByMovieID(ctx context.Context, movieID string) ([]domain.Review, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Review), args.Error(1)
}

// --- Event publisher fakes ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(kind, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, kind+" "+id)
	return nil
}

func (p *recordingPublisher) PublishMovieCreated(_ context.Context, m *domain.Movie) error {
	return p.record("movie.created", m.ID)
}

func (p *recordingPublisher) PublishMovieDisabled(_ context.Context, m *domain.Movie) error {
	return p.record("movie.disabled", m.ID)
}

func (p *recordingPublisher) PublishReviewCreated(_ context.Context, r *domain.Review) error {
	return p.record("review.created", r.MovieID)
}

// --- Journal of side effects, for ordering assertions ---

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// journalStore records invalidations before delegating.
type journalStore struct {
	cache.Store
	j *journal
}

func (s journalStore) Remove(ctx context.Context, key string) error {
	s.j.add("cache.remove " + key)
	return s.Store.Remove(ctx, key)
}

func (s journalStore) RemoveByPattern(ctx context.Context, pattern string) error {
	s.j.add("cache.removePattern " + pattern)
	return s.Store.RemoveByPattern(ctx, pattern)
}

// --- Test Helpers ---

var errBoom = errors.New("boom")

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// steppingClock returns a clock that advances one minute per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

func newRedisCache(t *testing.T) (*cache.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisStore(client, 0, nil), mr
}

// harness wires both services to an in-memory store and a miniredis cache.
type harness struct {
	movies  *MovieService
	reviews *ReviewService
	mr      *miniredis.Miniredis
	db      *memory.Store
	pub     *recordingPublisher
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	store, mr := newRedisCache(t)
	db := memory.NewStore()
	pub := &recordingPublisher{}

	ms := NewMovieService(db.Movies(), db.Reviews(), store, pub, opts, newTestLogger())
	ms.now = steppingClock(t0)
	rs := NewReviewService(db.Movies(), db.Reviews(), store, pub, opts, newTestLogger())
	rs.now = steppingClock(t0.Add(24 * time.Hour))

	return &harness{movies: ms, reviews: rs, mr: mr, db: db, pub: pub}
}

func movieInput(title string) CreateMovieInput {
	return CreateMovieInput{
		Title:       title,
		ReleaseYear: 1999,
		Genre:       "Sci-Fi",
		Director:    "Wachowski",
	}
}

func (h *harness) createMovie(t *testing.T, title string) *domain.MovieView {
	t.Helper()
	v, err := h.movies.CreateMovie(context.Background(), movieInput(title))
	require.NoError(t, err)
	return v
}

func (h *harness) addReview(t *testing.T, movieID string, rating int) *domain.Review {
	t.Helper()
	r, err := h.reviews.CreateReview(context.Background(), movieID, CreateReviewInput{
		ReviewerName: "Ann",
		Comment:      "Worth watching",
		Rating:       rating,
	})
	require.NoError(t, err)
	return r
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
