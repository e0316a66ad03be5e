package storage

import (
	"context"

	"pricing-intel-engine/internal/domain"
)

// ObservationStore provides access to price_observations storage.
// Observations are append-only; compaction is the only deletion path.
type ObservationStore interface {
	// Append adds a normalized observation. Appending an exact
	// duplicate (same content and timestamps) is a no-op and returns nil.
	Append(ctx context.Context, o *domain.PriceObservation) error

	// AppendBulk adds multiple observations atomically.
	AppendBulk(ctx context.Context, obs []*domain.PriceObservation) error

	// Query retrieves observations for a product within [start, end]
	// (inclusive), ordered by observed_at ASC. competitorID narrows the
	// query to one competitor when non-empty.
	Query(ctx context.Context, productID, competitorID string, start, end int64) ([]*domain.PriceObservation, error)

	// LatestPerCompetitor retrieves the most recent observation per
	// competitor for a product at or before asOf, ordered by competitor_id ASC.
	LatestPerCompetitor(ctx context.Context, productID string, asOf int64) ([]*domain.PriceObservation, error)

	// Compact removes observations with observed_at older than cutoff.
	// Runs as background maintenance, never inline with a decision.
	// Returns the number of removed observations.
	Compact(ctx context.Context, cutoff int64) (int64, error)
}

// SalesStore provides read access to sales_records storage.
type SalesStore interface {
	// Insert adds a sales record delivered by the order system.
	Insert(ctx context.Context, r *domain.SalesRecord) error

	// QueryWindow retrieves sales records for a product whose period
	// overlaps [start, end], ordered by period_start ASC.
	QueryWindow(ctx context.Context, productID string, start, end int64) ([]*domain.SalesRecord, error)
}

// ElasticityStore provides access to versioned elasticity coefficients.
type ElasticityStore interface {
	// Insert adds a new coefficient version. Returns ErrDuplicateKey if
	// (product_id, version) exists. Versions supersede, never mutate.
	Insert(ctx context.Context, e *domain.ElasticityCoefficient) error

	// GetActive retrieves the highest version for a product.
	// Returns ErrNotFound if the product has no coefficient yet.
	GetActive(ctx context.Context, productID string) (*domain.ElasticityCoefficient, error)

	// NextVersion returns the next unused version number for a product.
	NextVersion(ctx context.Context, productID string) (int64, error)
}

// RecommendationStore provides access to the durable recommendation record.
type RecommendationStore interface {
	// Insert adds a recommendation. Returns ErrDuplicateKey if the
	// fingerprint exists; entries are write-once.
	Insert(ctx context.Context, r *domain.PriceRecommendation) error

	// GetByFingerprint retrieves a recommendation by its fingerprint.
	// Returns ErrNotFound if not exists.
	GetByFingerprint(ctx context.Context, fingerprint string) (*domain.PriceRecommendation, error)

	// GetLatestByProduct retrieves the most recently computed
	// recommendation for a product. Returns ErrNotFound if none exists.
	GetLatestByProduct(ctx context.Context, productID string) (*domain.PriceRecommendation, error)
}

// AuditStore provides access to the append-only decision audit log.
type AuditStore interface {
	// Insert appends one audit record.
	Insert(ctx context.Context, rec *domain.AuditRecord) error

	// GetByProduct retrieves audit records for a product, ordered by
	// computed_at ASC.
	GetByProduct(ctx context.Context, productID string) ([]*domain.AuditRecord, error)
}
