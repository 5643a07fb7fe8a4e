// Package postgres implements the repository contracts on PostgreSQL via pgx.
package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	// invalidTextRepresentation is raised when an id is not a valid uuid.
	invalidTextRepresentation = "22P02"
)

// hasSQLState reports whether err wraps a *pgconn.PgError with the given
// SQLSTATE.
func hasSQLState(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func dbError(op string, err error) error {
	return apperrors.Infrastructure("database", fmt.Errorf("%s: %w", op, err))
}
