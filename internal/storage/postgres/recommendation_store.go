package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// RecommendationStore implements storage.RecommendationStore using PostgreSQL.
type RecommendationStore struct {
	pool *Pool
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(pool *Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Insert adds a recommendation. Returns ErrDuplicateKey if the
// fingerprint exists.
func (s *RecommendationStore) Insert(ctx context.Context, r *domain.PriceRecommendation) error {
	firedRules, err := json.Marshal(r.FiredRules)
	if err != nil {
		return fmt.Errorf("encode fired rules: %w", err)
	}

	query := `
		INSERT INTO price_recommendations (
			input_fingerprint, product_id, recommended_price, direction, position,
			fired_rules, elasticity_used, elasticity_version, confidence, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.pool.Exec(ctx, query,
		r.InputFingerprint,
		r.ProductID,
		r.RecommendedPrice,
		r.Direction,
		r.Position,
		firedRules,
		r.ElasticityUsed,
		r.ElasticityVersion,
		r.Confidence,
		r.ComputedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// GetByFingerprint retrieves a recommendation by its fingerprint.
func (s *RecommendationStore) GetByFingerprint(ctx context.Context, fingerprint string) (*domain.PriceRecommendation, error) {
	query := `
		SELECT input_fingerprint, product_id, recommended_price, direction, position,
			fired_rules, elasticity_used, elasticity_version, confidence, computed_at
		FROM price_recommendations
		WHERE input_fingerprint = $1
	`
	return s.scanOne(ctx, query, fingerprint)
}

// GetLatestByProduct retrieves the most recently computed recommendation
// for a product.
func (s *RecommendationStore) GetLatestByProduct(ctx context.Context, productID string) (*domain.PriceRecommendation, error) {
	query := `
		SELECT input_fingerprint, product_id, recommended_price, direction, position,
			fired_rules, elasticity_used, elasticity_version, confidence, computed_at
		FROM price_recommendations
		WHERE product_id = $1
		ORDER BY computed_at DESC
		LIMIT 1
	`
	return s.scanOne(ctx, query, productID)
}

func (s *RecommendationStore) scanOne(ctx context.Context, query string, arg any) (*domain.PriceRecommendation, error) {
	var r domain.PriceRecommendation
	var firedRules []byte

	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&r.InputFingerprint,
		&r.ProductID,
		&r.RecommendedPrice,
		&r.Direction,
		&r.Position,
		&firedRules,
		&r.ElasticityUsed,
		&r.ElasticityVersion,
		&r.Confidence,
		&r.ComputedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get recommendation: %w", err)
	}

	if len(firedRules) > 0 {
		if err := json.Unmarshal(firedRules, &r.FiredRules); err != nil {
			return nil, fmt.Errorf("decode fired rules: %w", err)
		}
	}
	return &r, nil
}
