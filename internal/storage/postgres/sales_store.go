package postgres

import (
	"context"
	"fmt"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// SalesStore implements storage.SalesStore using PostgreSQL.
type SalesStore struct {
	pool *Pool
}

// NewSalesStore creates a new SalesStore.
func NewSalesStore(pool *Pool) *SalesStore {
	return &SalesStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SalesStore = (*SalesStore)(nil)

// Insert adds a sales record.
func (s *SalesStore) Insert(ctx context.Context, r *domain.SalesRecord) error {
	query := `
		INSERT INTO sales_records (
			product_id, units_sold, price_at_sale, period_start, period_end
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		r.ProductID,
		r.UnitsSold,
		r.PriceAtSale,
		r.PeriodStart,
		r.PeriodEnd,
	)
	if err != nil {
		return fmt.Errorf("insert sales record: %w", err)
	}
	return nil
}

// QueryWindow retrieves records whose period overlaps [start, end],
// ordered by period_start ASC.
func (s *SalesStore) QueryWindow(ctx context.Context, productID string, start, end int64) ([]*domain.SalesRecord, error) {
	query := `
		SELECT product_id, units_sold, price_at_sale, period_start, period_end
		FROM sales_records
		WHERE product_id = $1 AND period_end >= $2 AND period_start <= $3
		ORDER BY period_start ASC
	`

	rows, err := s.pool.Query(ctx, query, productID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query sales window: %w", err)
	}
	defer rows.Close()

	var records []*domain.SalesRecord
	for rows.Next() {
		var r domain.SalesRecord
		if err := rows.Scan(&r.ProductID, &r.UnitsSold, &r.PriceAtSale, &r.PeriodStart, &r.PeriodEnd); err != nil {
			return nil, fmt.Errorf("scan sales record: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales records: %w", err)
	}

	return records, nil
}
