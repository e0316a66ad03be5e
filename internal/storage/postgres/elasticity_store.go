package postgres

import (
	"context"
	"fmt"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// ElasticityStore implements storage.ElasticityStore using PostgreSQL.
type ElasticityStore struct {
	pool *Pool
}

// NewElasticityStore creates a new ElasticityStore.
func NewElasticityStore(pool *Pool) *ElasticityStore {
	return &ElasticityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ElasticityStore = (*ElasticityStore)(nil)

// Insert adds a new coefficient version. Returns ErrDuplicateKey if
// (product_id, version) exists.
func (s *ElasticityStore) Insert(ctx context.Context, e *domain.ElasticityCoefficient) error {
	query := `
		INSERT INTO elasticity_coefficients (
			product_id, version, coefficient, confidence, sample_size, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		e.ProductID,
		e.Version,
		e.Coefficient,
		e.Confidence,
		e.SampleSize,
		e.ComputedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert elasticity coefficient: %w", err)
	}
	return nil
}

// GetActive retrieves the highest version for a product.
func (s *ElasticityStore) GetActive(ctx context.Context, productID string) (*domain.ElasticityCoefficient, error) {
	query := `
		SELECT product_id, version, coefficient, confidence, sample_size, computed_at
		FROM elasticity_coefficients
		WHERE product_id = $1
		ORDER BY version DESC
		LIMIT 1
	`

	var e domain.ElasticityCoefficient
	err := s.pool.QueryRow(ctx, query, productID).Scan(
		&e.ProductID,
		&e.Version,
		&e.Coefficient,
		&e.Confidence,
		&e.SampleSize,
		&e.ComputedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get active elasticity: %w", err)
	}
	return &e, nil
}

// NextVersion returns the next unused version number for a product.
func (s *ElasticityStore) NextVersion(ctx context.Context, productID string) (int64, error) {
	query := `
		SELECT COALESCE(MAX(version), 0) + 1
		FROM elasticity_coefficients
		WHERE product_id = $1
	`

	var next int64
	if err := s.pool.QueryRow(ctx, query, productID).Scan(&next); err != nil {
		return 0, fmt.Errorf("next elasticity version: %w", err)
	}
	return next, nil
}
