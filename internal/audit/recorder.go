// Package audit records every decision's inputs, fired rules, and final
// output. Recording is best-effort relative to the decision itself: a
// failed write never blocks returning a recommendation, but persistent
// failure is surfaced through the health gauge.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/observability"
	"pricing-intel-engine/internal/storage"
)

// writeTimeout bounds one audit write so a slow sink cannot hold up the
// decision path past its own return.
const writeTimeout = 5 * time.Second

// Recorder appends decision audit records to the configured sink.
type Recorder struct {
	store   storage.AuditStore
	metrics *observability.Metrics
	logger  *log.Logger
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewRecorder creates a recorder. metrics may be nil in tests.
func NewRecorder(store storage.AuditStore, metrics *observability.Metrics, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Record persists one audit record off the decision path: the write
// runs on its own goroutine so a slow sink adds no decision latency.
// Failures are logged and reflected in the audit health gauge, never
// returned to the caller.
func (r *Recorder) Record(state *domain.MarketState, ruleSetVersion int64, trace []domain.FiredRule, candidate float64, rec *domain.PriceRecommendation) {
	record := &domain.AuditRecord{
		RecordID:           uuid.NewString(),
		ProductID:          state.ProductID,
		InputFingerprint:   rec.InputFingerprint,
		OwnPrice:           state.OwnPrice,
		CostBasis:          state.CostBasis,
		MarginFloor:        state.MarginFloor,
		PriceCeiling:       state.PriceCeiling,
		CompetitorCount:    len(state.Competitors),
		AvgCompetitorPrice: state.AvgCompetitorPrice(),
		RuleSetVersion:     ruleSetVersion,
		FiredRules:         trace,
		CandidatePrice:     candidate,
		FinalPrice:         rec.RecommendedPrice,
		Direction:          rec.Direction,
		ComputedAt:         rec.ComputedAt,
	}
	if state.Elasticity != nil {
		record.ElasticityUsed = state.Elasticity.Coefficient
		record.ElasticityVersion = state.Elasticity.Version
		record.ElasticityConfidence = state.Elasticity.Confidence
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.write(record)
	}()
}

// Flush blocks until every dispatched write has finished. Called at
// shutdown and by tests that assert on the sink contents.
func (r *Recorder) Flush() {
	r.wg.Wait()
}

func (r *Recorder) write(record *domain.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.store.Insert(ctx, record); err != nil {
		r.logger.Printf("[audit] write failed for product %s: %v", record.ProductID, err)
		if r.metrics != nil {
			r.metrics.AuditFailures.Inc()
			r.metrics.AuditHealthy.Set(0)
		}
		return
	}

	if r.metrics != nil {
		r.metrics.AuditWrites.Inc()
		r.metrics.AuditHealthy.Set(1)
	}
}
