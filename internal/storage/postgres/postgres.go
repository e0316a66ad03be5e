package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricing-intel-engine/internal/storage"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// Exec runs a statement, surfacing connection-class failures as
// storage.ErrUnavailable so callers can treat them as retryable.
func (p *Pool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := p.Pool.Exec(ctx, sql, args...)
	return tag, mapConnError(err)
}

// Query runs a query with the same connection-error mapping as Exec.
func (p *Pool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := p.Pool.Query(ctx, sql, args...)
	return rows, mapConnError(err)
}

// QueryRow runs a single-row query; the mapping applies at Scan time.
func (p *Pool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return mappedRow{p.Pool.QueryRow(ctx, sql, args...)}
}

type mappedRow struct {
	pgx.Row
}

func (r mappedRow) Scan(dest ...any) error {
	return mapConnError(r.Row.Scan(dest...))
}

// mapConnError translates connection-class backend errors to
// storage.ErrUnavailable. Constraint and no-rows errors pass through
// untouched for the per-store sentinel mapping.
func mapConnError(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailableError(err) {
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	}
	return err
}

// PostgreSQL error codes
const (
	pgErrUniqueViolation = "23505" // unique_violation
	pgErrClassConnection = "08"    // connection exception class
)

// isUnavailableError checks if error indicates the backend cannot be
// reached: SQLSTATE class 08 or a network-level failure.
func isUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, pgErrClassConnection)
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// isDuplicateKeyError checks if error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}

	return false
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
