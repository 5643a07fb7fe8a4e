package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/internal/repository"
	"github.com/AdrielSA/backend-test/pkg/database"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

const movieColumns = `m.id, m.title, m.description, m.release_year, m.genre, m.director,
		m.duration_minutes, m.is_active, m.created_at, m.updated_at`

// searchCondition matches $1 as a case-sensitive substring of title,
// director, genre or description.
const searchCondition = `strpos(m.title, $1) > 0
			OR strpos(m.director, $1) > 0
			OR strpos(m.genre, $1) > 0
			OR strpos(COALESCE(m.description, ''), $1) > 0`

// MovieRepository implements repository.MovieRepository using PostgreSQL.
type MovieRepository struct {
	db database.DBTX
}

// NewMovieRepository creates a new PostgreSQL-backed movie repository.
func NewMovieRepository(db database.DBTX) *MovieRepository {
	return &MovieRepository{db: db}
}

// Create inserts a new movie. The UNIQUE constraint on title is reported as
// DuplicateTitle.
func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) (err error) {
	query := `
		INSERT INTO movies (id, title, description, release_year, genre, director, duration_minutes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	ctx, end := database.TraceQuery(ctx, "CreateMovie", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		m.ID,
		m.Title,
		m.Description,
		m.ReleaseYear,
		m.Genre,
		m.Director,
		m.DurationMinutes,
		m.IsActive,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		if hasSQLState(err, uniqueViolation) {
			return apperrors.DuplicateTitle(m.Title)
		}
		return dbError("insert movie", err)
	}

	return nil
}

// GetByID retrieves a movie by its ID regardless of status. An id that is
// not a uuid cannot name a movie and is reported as NotFound.
func (r *MovieRepository) GetByID(ctx context.Context, id string) (_ *domain.Movie, err error) {
	query := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = $1`

	ctx, end := database.TraceQuery(ctx, "GetMovie", query)
	defer func() { end(err) }()

	var m domain.Movie
	err = scanMovie(r.db.QueryRow(ctx, query, id), &m)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || hasSQLState(err, invalidTextRepresentation) {
			return nil, apperrors.NotFound("movie", id)
		}
		return nil, dbError("get movie", err)
	}

	return &m, nil
}

// ExistsByTitle reports whether a movie with exactly this title exists.
func (r *MovieRepository) ExistsByTitle(ctx context.Context, title string) (_ bool, err error) {
	query := `SELECT EXISTS (SELECT 1 FROM movies WHERE title = $1)`

	ctx, end := database.TraceQuery(ctx, "MovieTitleExists", query)
	defer func() { end(err) }()

	var exists bool
	if err = r.db.QueryRow(ctx, query, title).Scan(&exists); err != nil {
		return false, dbError("check movie title", err)
	}
	return exists, nil
}

// Update persists the mutable fields of m.
func (r *MovieRepository) Update(ctx context.Context, m *domain.Movie) (err error) {
	query := `
		UPDATE movies
		SET title = $1, description = $2, release_year = $3, genre = $4, director = $5,
		    duration_minutes = $6, is_active = $7, updated_at = $8
		WHERE id = $9`

	ctx, end := database.TraceQuery(ctx, "UpdateMovie", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query,
		m.Title,
		m.Description,
		m.ReleaseYear,
		m.Genre,
		m.Director,
		m.DurationMinutes,
		m.IsActive,
		m.UpdatedAt,
		m.ID,
	)
	if err != nil {
		switch {
		case hasSQLState(err, uniqueViolation):
			return apperrors.DuplicateTitle(m.Title)
		case hasSQLState(err, invalidTextRepresentation):
			return apperrors.NotFound("movie", m.ID)
		}
		return dbError("update movie", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("movie", m.ID)
	}

	return nil
}

// orderColumns maps each ordering to its SQL expression. Titles compare in
// the C collation so ordering is by byte value, matching strings.Compare.
var orderColumns = map[domain.SortBy]string{
	domain.SortByTitle:     `m.title COLLATE "C"`,
	domain.SortByYear:      `m.release_year`,
	domain.SortByRating:    `(SELECT COALESCE(AVG(rv.rating), 0) FROM reviews rv WHERE rv.movie_id = m.id)`,
	domain.SortByCreatedAt: `m.created_at`,
}

// listFilter renders the WHERE clause shared by the page and count queries.
func listFilter(c domain.FilterCriteria, vis repository.Visibility) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if vis == repository.ActiveOnly {
		conds = append(conds, "m.is_active")
	}
	if term := c.SearchTerm(); term != "" {
		args = append(args, term)
		conds = append(conds, "("+searchCondition+")")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// buildListQuery renders the page query for c and its arguments.
func buildListQuery(c domain.FilterCriteria, vis repository.Visibility) (string, []any) {
	where, args := listFilter(c, vis)

	order, ok := orderColumns[c.SortBy]
	if !ok {
		order = orderColumns[domain.SortByCreatedAt]
	}
	direction := "ASC"
	if c.IsDescending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s,
		       count(*) OVER() AS total_count
		FROM movies m
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`,
		movieColumns, where, order, direction, len(args)+1, len(args)+2,
	)

	args = append(args, c.PageSize, c.Offset())
	return query, args
}

// List returns one page of movies matching c with the filtered total. Average
// ratings for the page are loaded in a single batched query.
func (r *MovieRepository) List(ctx context.Context, c domain.FilterCriteria, vis repository.Visibility) (_ []domain.MovieView, _ int, err error) {
	query, args := buildListQuery(c, vis)

	ctx, end := database.TraceQuery(ctx, "ListMovies", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dbError("list movies", err)
	}
	defer rows.Close()

	var (
		movies     []domain.Movie
		totalCount int
	)

	for rows.Next() {
		var m domain.Movie
		if err = scanMovie(rows, &m, &totalCount); err != nil {
			return nil, 0, dbError("scan movie row", err)
		}
		movies = append(movies, m)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, dbError("iterate movie rows", err)
	}

	// An offset past the last row yields no window to read the total from.
	if len(movies) == 0 && c.Offset() > 0 {
		if totalCount, err = r.count(ctx, c, vis); err != nil {
			return nil, 0, err
		}
	}

	ratings, err := r.ratingsByMovie(ctx, movies)
	if err != nil {
		return nil, 0, err
	}

	views := make([]domain.MovieView, len(movies))
	for i, m := range movies {
		views[i] = domain.MovieView{Movie: m, AverageRating: domain.AverageOf(ratings[m.ID])}
	}

	return views, totalCount, nil
}

func (r *MovieRepository) count(ctx context.Context, c domain.FilterCriteria, vis repository.Visibility) (_ int, err error) {
	where, args := listFilter(c, vis)
	query := `SELECT count(*) FROM movies m`
	if where != "" {
		query += " " + where
	}

	ctx, end := database.TraceQuery(ctx, "CountMovies", query)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, dbError("count movies", err)
	}
	return total, nil
}

// ratingsByMovie loads the bare ratings of every movie in the page.
func (r *MovieRepository) ratingsByMovie(ctx context.Context, movies []domain.Movie) (_ map[string][]int, err error) {
	out := make(map[string][]int, len(movies))
	if len(movies) == 0 {
		return out, nil
	}

	ids := make([]string, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}

	query := `SELECT movie_id, rating FROM reviews WHERE movie_id = ANY($1::uuid[])`

	ctx, end := database.TraceQuery(ctx, "ListRatings", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, dbError("list ratings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movieID string
			rating  int
		)
		if err = rows.Scan(&movieID, &rating); err != nil {
			return nil, dbError("scan rating row", err)
		}
		out[movieID] = append(out[movieID], rating)
	}

	if err = rows.Err(); err != nil {
		return nil, dbError("iterate rating rows", err)
	}
	return out, nil
}

// scanMovie reads the movieColumns of one row into m, followed by any extra
// destinations.
func scanMovie(row pgx.Row, m *domain.Movie, extra ...any) error {
	dest := []any{
		&m.ID,
		&m.Title,
		&m.Description,
		&m.ReleaseYear,
		&m.Genre,
		&m.Director,
		&m.DurationMinutes,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}
