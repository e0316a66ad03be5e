package ingest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/elasticity"
	"pricing-intel-engine/internal/storage/memory"
)

type countingEstimator struct {
	calls []string
	err   error
}

func (c *countingEstimator) Estimate(_ context.Context, productID string) (*domain.ElasticityCoefficient, error) {
	c.calls = append(c.calls, productID)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.ElasticityCoefficient{ProductID: productID, Version: 1}, nil
}

func salesBatch(productID string, prices, quantities []float64) []*domain.SalesRecord {
	base := time.Now().UnixMilli() - int64(len(prices)+1)*86_400_000
	records := make([]*domain.SalesRecord, len(prices))
	for i := range prices {
		start := base + int64(i)*86_400_000
		records[i] = &domain.SalesRecord{
			ProductID:   productID,
			UnitsSold:   quantities[i],
			PriceAtSale: prices[i],
			PeriodStart: start,
			PeriodEnd:   start + 86_400_000,
		}
	}
	return records
}

func TestSalesIntake_ArrivalTriggersReestimate(t *testing.T) {
	sales := memory.NewSalesStore()
	coeffs := memory.NewElasticityStore()
	intake := NewSalesIntake(sales, elasticity.NewEstimator(sales, coeffs, elasticity.DefaultConfig()), nil)
	ctx := context.Background()

	prices := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	quantities := make([]float64, len(prices))
	for i, p := range prices {
		quantities[i] = 500 * math.Pow(p, -2.0)
	}

	accepted, rejected := intake.Record(ctx, salesBatch("p1", prices, quantities))
	if accepted != 10 || len(rejected) != 0 {
		t.Fatalf("Expected 10 accepted and 0 rejected, got %d/%d", accepted, len(rejected))
	}

	// The arriving data must be visible through the active coefficient
	// without waiting for the scheduled refresh.
	active, err := coeffs.GetActive(ctx, "p1")
	if err != nil {
		t.Fatalf("No coefficient after sales arrival: %v", err)
	}
	if math.Abs(active.Coefficient-(-2.0)) > 1e-9 {
		t.Errorf("Expected fitted coefficient -2.0, got %v", active.Coefficient)
	}
	if active.Version != 1 {
		t.Errorf("Expected version 1, got %d", active.Version)
	}
}

func TestSalesIntake_RejectsInvalidRecords(t *testing.T) {
	now := time.Now().UnixMilli()
	tests := []struct {
		name   string
		record *domain.SalesRecord
		field  string
	}{
		{"nil record", nil, "record"},
		{"missing product", &domain.SalesRecord{PriceAtSale: 10, UnitsSold: 5, PeriodStart: now - 1000, PeriodEnd: now}, "product_id"},
		{"negative units", &domain.SalesRecord{ProductID: "p1", PriceAtSale: 10, UnitsSold: -1, PeriodStart: now - 1000, PeriodEnd: now}, "units_sold"},
		{"zero price", &domain.SalesRecord{ProductID: "p1", UnitsSold: 5, PeriodStart: now - 1000, PeriodEnd: now}, "price_at_sale"},
		{"missing period start", &domain.SalesRecord{ProductID: "p1", PriceAtSale: 10, UnitsSold: 5, PeriodEnd: now}, "period_start"},
		{"inverted period", &domain.SalesRecord{ProductID: "p1", PriceAtSale: 10, UnitsSold: 5, PeriodStart: now, PeriodEnd: now - 1000}, "period_end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sales := memory.NewSalesStore()
			est := &countingEstimator{}
			intake := NewSalesIntake(sales, est, nil)

			accepted, rejected := intake.Record(context.Background(), []*domain.SalesRecord{tt.record})
			if accepted != 0 || len(rejected) != 1 {
				t.Fatalf("Expected 0 accepted and 1 rejected, got %d/%d", accepted, len(rejected))
			}

			var invalid *InvalidSalesRecordError
			if !errors.As(rejected[0], &invalid) {
				t.Fatalf("Expected InvalidSalesRecordError, got %v", rejected[0])
			}
			if invalid.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, invalid.Field)
			}
			if len(est.calls) != 0 {
				t.Errorf("Rejected-only batch must not trigger estimation, got %v", est.calls)
			}
		})
	}
}

func TestSalesIntake_MixedBatchEstimatesOncePerProduct(t *testing.T) {
	sales := memory.NewSalesStore()
	est := &countingEstimator{}
	intake := NewSalesIntake(sales, est, nil)
	now := time.Now().UnixMilli()

	records := []*domain.SalesRecord{
		{ProductID: "p2", PriceAtSale: 10, UnitsSold: 5, PeriodStart: now - 2000, PeriodEnd: now - 1000},
		{ProductID: "p1", PriceAtSale: 11, UnitsSold: 4, PeriodStart: now - 2000, PeriodEnd: now - 1000},
		{ProductID: "p1", PriceAtSale: 12, UnitsSold: 3, PeriodStart: now - 1000, PeriodEnd: now},
		{ProductID: "", PriceAtSale: 12, UnitsSold: 3, PeriodStart: now - 1000, PeriodEnd: now},
	}

	accepted, rejected := intake.Record(context.Background(), records)
	if accepted != 3 || len(rejected) != 1 {
		t.Fatalf("Expected 3 accepted and 1 rejected, got %d/%d", accepted, len(rejected))
	}
	if len(est.calls) != 2 || est.calls[0] != "p1" || est.calls[1] != "p2" {
		t.Errorf("Expected one estimate per touched product [p1 p2], got %v", est.calls)
	}
}

func TestSalesIntake_EstimateFailureKeepsRecords(t *testing.T) {
	sales := memory.NewSalesStore()
	est := &countingEstimator{err: errors.New("store down")}
	intake := NewSalesIntake(sales, est, nil)
	now := time.Now().UnixMilli()

	accepted, rejected := intake.Record(context.Background(), []*domain.SalesRecord{
		{ProductID: "p1", PriceAtSale: 10, UnitsSold: 5, PeriodStart: now - 1000, PeriodEnd: now},
	})
	if accepted != 1 || len(rejected) != 0 {
		t.Fatalf("Estimate failure must not reject persisted records, got %d/%d", accepted, len(rejected))
	}

	stored, err := sales.QueryWindow(context.Background(), "p1", now-2000, now)
	if err != nil || len(stored) != 1 {
		t.Fatalf("Expected the record persisted, got %d (%v)", len(stored), err)
	}
}
