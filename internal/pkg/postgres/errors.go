package postgres

import (
	"errors"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the service distinguishes.
const (
	CodeForeignKeyViolation  = "23503"
	CodeUniqueViolation      = "23505"
	CodeSerializationFailure = "40001"
	CodeDeadlockDetected     = "40P01"
)

// Classify maps a driver error onto the errs taxonomy. Foreign-key violations
// become referential faults; everything else is a persistence fault. A nil
// error stays nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == CodeForeignKeyViolation {
		return errs.Referential(op, err)
	}
	return errs.Persistence(op, err)
}

// SQLState returns the SQLSTATE carried by err, or "" when err did not come
// from the server.
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
