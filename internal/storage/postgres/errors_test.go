package postgres

import (
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"pricing-intel-engine/internal/storage"
)

func TestMapConnError(t *testing.T) {
	assert.NoError(t, mapConnError(nil))

	// SQLSTATE class 08: connection exception.
	err := mapConnError(&pgconn.PgError{Code: "08006"})
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	// Network-level failure before any SQLSTATE exists.
	err = mapConnError(&net.OpError{Op: "dial", Err: errors.New("connection refused")})
	assert.ErrorIs(t, err, storage.ErrUnavailable)

	// Constraint violations pass through for the per-store mapping.
	dup := mapConnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	assert.False(t, errors.Is(dup, storage.ErrUnavailable))
	assert.True(t, isDuplicateKeyError(dup))

	// No-rows stays recognizable as not-found.
	assert.True(t, isNotFoundError(mapConnError(pgx.ErrNoRows)))
}
