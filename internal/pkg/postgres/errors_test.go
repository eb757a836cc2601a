package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fekuna/omnipos-shelf-service/internal/errs"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestClassifyForeignKey(t *testing.T) {
	pgErr := &pgconn.PgError{Code: CodeForeignKeyViolation, ConstraintName: "inventory_system_id_fkey"}
	err := Classify("location.upsert", fmt.Errorf("exec: %w", pgErr))

	require.ErrorIs(t, err, errs.ErrProductReferenceMissing)
	require.False(t, errs.Retryable(err))

	var got *pgconn.PgError
	require.True(t, errors.As(err, &got))
	require.Equal(t, "inventory_system_id_fkey", got.ConstraintName)
}

func TestClassifyOtherFaults(t *testing.T) {
	for _, cause := range []error{
		&pgconn.PgError{Code: CodeUniqueViolation},
		&pgconn.PgError{Code: CodeSerializationFailure},
		context.DeadlineExceeded,
	} {
		err := Classify("location.upsert", cause)
		require.ErrorIs(t, err, errs.ErrPersistence)
		require.True(t, errs.Retryable(err))
	}
}

func TestClassifyNil(t *testing.T) {
	require.NoError(t, Classify("noop", nil))
}

func TestSQLState(t *testing.T) {
	require.Equal(t, CodeDeadlockDetected, SQLState(&pgconn.PgError{Code: CodeDeadlockDetected}))
	require.Empty(t, SQLState(errors.New("boom")))
}
