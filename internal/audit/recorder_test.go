package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/observability"
	"pricing-intel-engine/internal/storage/memory"
)

// gatedAuditStore blocks Insert until the gate opens, standing in for a
// slow or unreachable sink.
type gatedAuditStore struct {
	gate    chan struct{}
	mu      sync.Mutex
	records []*domain.AuditRecord
}

func (s *gatedAuditStore) Insert(ctx context.Context, rec *domain.AuditRecord) error {
	select {
	case <-s.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *gatedAuditStore) GetByProduct(_ context.Context, productID string) ([]*domain.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.AuditRecord
	for _, r := range s.records {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

type failingAuditStore struct{}

func (failingAuditStore) Insert(context.Context, *domain.AuditRecord) error {
	return errors.New("sink down")
}

func (failingAuditStore) GetByProduct(context.Context, string) ([]*domain.AuditRecord, error) {
	return nil, nil
}

func testState() *domain.MarketState {
	return &domain.MarketState{ProductID: "p1", OwnPrice: 100, CostBasis: 60}
}

func testRecommendation() *domain.PriceRecommendation {
	return &domain.PriceRecommendation{
		ProductID:        "p1",
		RecommendedPrice: 105,
		Direction:        domain.DirectionIncrease,
		InputFingerprint: "fp-1",
		ComputedAt:       1_700_000_000_000,
	}
}

func TestRecord_DoesNotBlockOnSlowSink(t *testing.T) {
	store := &gatedAuditStore{gate: make(chan struct{})}
	recorder := NewRecorder(store, nil, nil)

	start := time.Now()
	recorder.Record(testState(), 1, nil, 105, testRecommendation())
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("Record blocked on the sink for %v", elapsed)
	}

	close(store.gate)
	recorder.Flush()

	records, _ := store.GetByProduct(context.Background(), "p1")
	if len(records) != 1 {
		t.Fatalf("Expected 1 record after flush, got %d", len(records))
	}
	if records[0].RecordID == "" {
		t.Error("Expected a record ID")
	}
	if records[0].InputFingerprint != "fp-1" || records[0].FinalPrice != 105 {
		t.Errorf("Record fields not captured: %+v", records[0])
	}
}

func TestRecord_HealthGaugeTracksSink(t *testing.T) {
	metrics := observability.NewMetrics("audit_recorder_test")

	recorder := NewRecorder(failingAuditStore{}, metrics, nil)
	recorder.Record(testState(), 1, nil, 105, testRecommendation())
	recorder.Flush()

	if got := testutil.ToFloat64(metrics.AuditHealthy); got != 0 {
		t.Errorf("Expected health gauge 0 after failed write, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.AuditFailures); got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}

	// A healthy sink restores the gauge.
	recorder = NewRecorder(memory.NewAuditStore(), metrics, nil)
	recorder.Record(testState(), 1, nil, 105, testRecommendation())
	recorder.Flush()

	if got := testutil.ToFloat64(metrics.AuditHealthy); got != 1 {
		t.Errorf("Expected health gauge 1 after successful write, got %v", got)
	}
}
