package ingest

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// InvalidSalesRecordError reports a rejected sales record with the
// offending field.
type InvalidSalesRecordError struct {
	Field  string
	Reason string
}

func (e *InvalidSalesRecordError) Error() string {
	return fmt.Sprintf("invalid sales record: field %s: %s", e.Field, e.Reason)
}

// ElasticityRefresher recomputes the elasticity coefficient for one
// product. Satisfied by *elasticity.Estimator.
type ElasticityRefresher interface {
	Estimate(ctx context.Context, productID string) (*domain.ElasticityCoefficient, error)
}

// SalesIntake records sales data delivered by the order system and
// keeps elasticity current: every accepted batch triggers
// re-estimation for the products it touched.
type SalesIntake struct {
	store     storage.SalesStore
	estimator ElasticityRefresher
	logger    *log.Logger
}

// NewSalesIntake creates a sales intake.
func NewSalesIntake(store storage.SalesStore, estimator ElasticityRefresher, logger *log.Logger) *SalesIntake {
	if logger == nil {
		logger = log.Default()
	}
	return &SalesIntake{
		store:     store,
		estimator: estimator,
		logger:    logger,
	}
}

// Record validates and inserts a batch of sales records, then
// re-estimates elasticity once per touched product. Returns the number
// of accepted records and one error per rejected record; accepted
// records are still written when others fail.
func (s *SalesIntake) Record(ctx context.Context, records []*domain.SalesRecord) (int, []error) {
	accepted := 0
	var rejected []error
	touched := make(map[string]struct{})

	for _, r := range records {
		if err := validateSalesRecord(r); err != nil {
			rejected = append(rejected, err)
			continue
		}
		if err := s.store.Insert(ctx, r); err != nil {
			rejected = append(rejected, fmt.Errorf("insert sales record: %w", err))
			continue
		}
		accepted++
		touched[r.ProductID] = struct{}{}
	}

	products := make([]string, 0, len(touched))
	for id := range touched {
		products = append(products, id)
	}
	sort.Strings(products)

	for _, productID := range products {
		if _, err := s.estimator.Estimate(ctx, productID); err != nil {
			// The records are persisted; the scheduled refresh will
			// retry the estimate.
			s.logger.Printf("[sales] elasticity re-estimate for %s failed: %v", productID, err)
		}
	}

	return accepted, rejected
}

// validateSalesRecord applies the all-or-nothing record checks.
func validateSalesRecord(r *domain.SalesRecord) error {
	if r == nil {
		return &InvalidSalesRecordError{Field: "record", Reason: "missing"}
	}
	if strings.TrimSpace(r.ProductID) == "" {
		return &InvalidSalesRecordError{Field: "product_id", Reason: "missing"}
	}
	if r.UnitsSold < 0 {
		return &InvalidSalesRecordError{Field: "units_sold", Reason: "must be >= 0"}
	}
	if r.PriceAtSale <= 0 {
		return &InvalidSalesRecordError{Field: "price_at_sale", Reason: "must be > 0"}
	}
	if r.PeriodStart <= 0 {
		return &InvalidSalesRecordError{Field: "period_start", Reason: "missing"}
	}
	if r.PeriodEnd < r.PeriodStart {
		return &InvalidSalesRecordError{Field: "period_end", Reason: "must not precede period_start"}
	}
	return nil
}
