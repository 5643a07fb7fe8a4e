package postgres

import (
	"context"

	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/pkg/database"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review. A missing movie surfaces as a foreign key
// violation and is reported as NotFound.
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (err error) {
	query := `
		INSERT INTO reviews (id, movie_id, reviewer_name, comment, rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		rv.ID,
		rv.MovieID,
		rv.ReviewerName,
		rv.Comment,
		rv.Rating,
		rv.CreatedAt,
	)
	if err != nil {
		if hasSQLState(err, foreignKeyViolation) || hasSQLState(err, invalidTextRepresentation) {
			return apperrors.NotFound("movie", rv.MovieID)
		}
		return dbError("insert review", err)
	}

	return nil
}

// ListByMovieID returns all reviews of a movie, newest first. A malformed
// movie id has no reviews.
func (r *ReviewRepository) ListByMovieID(ctx context.Context, movieID string) (_ []domain.Review, err error) {
	query := `
		SELECT id, movie_id, reviewer_name, comment, rating, created_at
		FROM reviews
		WHERE movie_id = $1
		ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, movieID)
	if err != nil {
		if hasSQLState(err, invalidTextRepresentation) {
			return []domain.Review{}, nil
		}
		return nil, dbError("list reviews", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err = rows.Scan(
			&rv.ID,
			&rv.MovieID,
			&rv.ReviewerName,
			&rv.Comment,
			&rv.Rating,
			&rv.CreatedAt,
		); err != nil {
			return nil, dbError("scan review row", err)
		}
		reviews = append(reviews, rv)
	}

	if err = rows.Err(); err != nil {
		return nil, dbError("iterate review rows", err)
	}

	return reviews, nil
}
