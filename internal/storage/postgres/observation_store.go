package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// ObservationStore implements storage.ObservationStore using PostgreSQL.
type ObservationStore struct {
	pool *Pool
}

// NewObservationStore creates a new ObservationStore.
func NewObservationStore(pool *Pool) *ObservationStore {
	return &ObservationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

const insertObservationQuery = `
	INSERT INTO price_observations (
		product_id, competitor_id, observed_price, currency, observed_at, ingested_at, source_confidence, promo_flag
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (product_id, competitor_id, observed_at, observed_price, currency) DO NOTHING
`

// Append adds an observation. An exact duplicate is a no-op: the unique
// index over the content columns absorbs it.
func (s *ObservationStore) Append(ctx context.Context, o *domain.PriceObservation) error {
	_, err := s.pool.Exec(ctx, insertObservationQuery,
		o.ProductID,
		o.CompetitorID,
		o.ObservedPrice,
		o.Currency,
		o.ObservedAt,
		o.IngestedAt,
		o.SourceConfidence,
		o.PromoFlag,
	)
	if err != nil {
		return fmt.Errorf("append observation: %w", err)
	}
	return nil
}

// AppendBulk adds multiple observations atomically.
func (s *ObservationStore) AppendBulk(ctx context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range obs {
		_, err := tx.Exec(ctx, insertObservationQuery,
			o.ProductID,
			o.CompetitorID,
			o.ObservedPrice,
			o.Currency,
			o.ObservedAt,
			o.IngestedAt,
			o.SourceConfidence,
			o.PromoFlag,
		)
		if err != nil {
			return fmt.Errorf("append observation in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// Query retrieves observations within [start, end], ordered by observed_at ASC.
func (s *ObservationStore) Query(ctx context.Context, productID, competitorID string, start, end int64) ([]*domain.PriceObservation, error) {
	query := `
		SELECT product_id, competitor_id, observed_price, currency, observed_at, ingested_at, source_confidence, promo_flag
		FROM price_observations
		WHERE product_id = $1 AND observed_at >= $2 AND observed_at <= $3
	`
	args := []any{productID, start, end}
	if competitorID != "" {
		query += ` AND competitor_id = $4`
		args = append(args, competitorID)
	}
	query += ` ORDER BY observed_at ASC, competitor_id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// LatestPerCompetitor retrieves the most recent observation per
// competitor at or before asOf, ordered by competitor_id ASC.
func (s *ObservationStore) LatestPerCompetitor(ctx context.Context, productID string, asOf int64) ([]*domain.PriceObservation, error) {
	query := `
		SELECT DISTINCT ON (competitor_id)
			product_id, competitor_id, observed_price, currency, observed_at, ingested_at, source_confidence, promo_flag
		FROM price_observations
		WHERE product_id = $1 AND observed_at <= $2
		ORDER BY competitor_id ASC, observed_at DESC
	`

	rows, err := s.pool.Query(ctx, query, productID, asOf)
	if err != nil {
		return nil, fmt.Errorf("latest per competitor: %w", err)
	}
	defer rows.Close()

	return scanObservations(rows)
}

// Compact removes observations with observed_at older than cutoff.
func (s *ObservationStore) Compact(ctx context.Context, cutoff int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM price_observations WHERE observed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("compact observations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanObservations scans multiple rows into a slice of PriceObservation.
func scanObservations(rows pgx.Rows) ([]*domain.PriceObservation, error) {
	var obs []*domain.PriceObservation

	for rows.Next() {
		var o domain.PriceObservation
		err := rows.Scan(
			&o.ProductID,
			&o.CompetitorID,
			&o.ObservedPrice,
			&o.Currency,
			&o.ObservedAt,
			&o.IngestedAt,
			&o.SourceConfidence,
			&o.PromoFlag,
		)
		if err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		obs = append(obs, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}

	return obs, nil
}
