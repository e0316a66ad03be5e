// Package engine orchestrates one pricing decision: it assembles the
// market state, runs history → elasticity → rules → guardrails in
// strict order, and serves the result through the deduplicated cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pricing-intel-engine/internal/audit"
	"pricing-intel-engine/internal/cache"
	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/elasticity"
	"pricing-intel-engine/internal/fingerprint"
	"pricing-intel-engine/internal/guardrail"
	"pricing-intel-engine/internal/observability"
	"pricing-intel-engine/internal/rules"
	"pricing-intel-engine/internal/storage"
)

// Decider runs pricing decisions. It is stateless per request and safe
// for concurrent use; the deduper is the only cross-request
// synchronization point.
type Decider struct {
	observations    storage.ObservationStore
	recommendations storage.RecommendationStore
	coefficients    storage.ElasticityStore
	estimator       *elasticity.Estimator
	ruleProvider    *rules.Provider
	ruleEngine      *rules.Engine
	optimizer       *guardrail.Optimizer
	deduper         *cache.Deduper
	catalog         Catalog
	recorder        *audit.Recorder
	metrics         *observability.Metrics
	logger          *log.Logger
	now             func() time.Time
}

// Deps collects the decider's collaborators.
type Deps struct {
	Observations    storage.ObservationStore
	Recommendations storage.RecommendationStore
	Coefficients    storage.ElasticityStore
	Estimator       *elasticity.Estimator
	RuleProvider    *rules.Provider
	Optimizer       *guardrail.Optimizer
	Deduper         *cache.Deduper
	Catalog         Catalog
	Recorder        *audit.Recorder
	Metrics         *observability.Metrics
	Logger          *log.Logger
}

// NewDecider wires a decider from its dependencies.
func NewDecider(deps Deps) *Decider {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Decider{
		observations:    deps.Observations,
		recommendations: deps.Recommendations,
		coefficients:    deps.Coefficients,
		estimator:       deps.Estimator,
		ruleProvider:    deps.RuleProvider,
		ruleEngine:      rules.NewEngine(),
		optimizer:       deps.Optimizer,
		deduper:         deps.Deduper,
		catalog:         deps.Catalog,
		recorder:        deps.Recorder,
		metrics:         deps.Metrics,
		logger:          logger,
		now:             time.Now,
	}
}

// Decide produces the price recommendation for a product as of the
// given time. asOf <= 0 means now. Suspension points are the store
// reads and the cache; no in-process lock is held across them.
func (d *Decider) Decide(ctx context.Context, productID string, asOf int64) (*domain.PriceRecommendation, error) {
	start := d.now()
	rec, err := d.decide(ctx, productID, asOf)
	if d.metrics != nil {
		d.metrics.DecisionDuration.Observe(d.now().Sub(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		d.metrics.DecisionsComputed.WithLabelValues(outcome).Inc()
	}
	return rec, err
}

func (d *Decider) decide(ctx context.Context, productID string, asOf int64) (*domain.PriceRecommendation, error) {
	if asOf <= 0 {
		asOf = d.now().UnixMilli()
	}

	info, err := d.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	// Infeasible guardrails are a configuration error: reject before
	// any computation.
	if info.MarginFloor > info.PriceCeiling {
		return nil, fmt.Errorf("%w: floor=%.4f ceiling=%.4f",
			guardrail.ErrInfeasibleGuardrails, info.MarginFloor, info.PriceCeiling)
	}

	ruleSet, err := d.ruleProvider.Current()
	if err != nil {
		return nil, err
	}

	state, err := d.assembleMarketState(ctx, info, asOf)
	if err != nil {
		return nil, err
	}

	fp := fingerprint.Compute(state, ruleSet.Version)

	return d.deduper.GetOrCompute(ctx, fp, func(computeCtx context.Context) (*domain.PriceRecommendation, error) {
		return d.compute(computeCtx, state, ruleSet, info, fp)
	})
}

// assembleMarketState gathers the latest observation per competitor and
// the active elasticity coefficient into the per-decision view.
func (d *Decider) assembleMarketState(ctx context.Context, info *ProductInfo, asOf int64) (*domain.MarketState, error) {
	latest, err := d.observations.LatestPerCompetitor(ctx, info.ProductID, asOf)
	if err != nil {
		return nil, fmt.Errorf("latest observations: %w", err)
	}

	quotes := make([]domain.CompetitorQuote, 0, len(latest))
	for _, o := range latest {
		quotes = append(quotes, domain.CompetitorQuote{
			CompetitorID: o.CompetitorID,
			Price:        o.ObservedPrice,
			ObservedAt:   o.ObservedAt,
			Confidence:   o.SourceConfidence,
			PromoActive:  o.PromoFlag,
		})
	}

	coeff, err := d.coefficients.GetActive(ctx, info.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		// First decision for this product: bootstrap a coefficient
		// on demand. Insufficient data degrades to the fallback.
		coeff, err = d.estimator.Estimate(ctx, info.ProductID)
	}
	if err != nil {
		return nil, fmt.Errorf("active elasticity: %w", err)
	}

	return &domain.MarketState{
		ProductID:    info.ProductID,
		AsOf:         asOf,
		OwnPrice:     info.OwnPrice,
		CostBasis:    info.CostBasis,
		MarginFloor:  info.MarginFloor,
		PriceCeiling: info.PriceCeiling,
		Competitors:  quotes,
		Elasticity:   coeff,
	}, nil
}

// compute runs rules and guardrails, persists the recommendation, and
// records the audit trail. It executes at most once per fingerprint.
func (d *Decider) compute(ctx context.Context, state *domain.MarketState, ruleSet *domain.RuleSet, info *ProductInfo, fp string) (*domain.PriceRecommendation, error) {
	candidate, trace, err := d.ruleEngine.Evaluate(state, ruleSet)
	if err != nil {
		return nil, fmt.Errorf("evaluate rules: %w", err)
	}

	final, err := d.optimizer.Optimize(guardrail.Input{
		CandidatePrice:       candidate,
		CostBasis:            state.CostBasis,
		MarginFloor:          state.MarginFloor,
		PriceCeiling:         state.PriceCeiling,
		Elasticity:           state.Elasticity.Coefficient,
		ElasticityConfidence: state.Elasticity.Confidence,
		CurrentPrice:         state.OwnPrice,
		CurrentDemand:        info.CurrentDemand,
	})
	if err != nil {
		return nil, err
	}

	rec := &domain.PriceRecommendation{
		ProductID:         state.ProductID,
		RecommendedPrice:  final,
		Direction:         domain.DirectionFor(state.OwnPrice, final),
		Position:          state.Position(),
		FiredRules:        trace,
		ElasticityUsed:    state.Elasticity.Coefficient,
		ElasticityVersion: state.Elasticity.Version,
		Confidence:        decisionConfidence(state),
		ComputedAt:        d.now().UnixMilli(),
		InputFingerprint:  fp,
	}

	if err := d.recommendations.Insert(ctx, rec); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return nil, fmt.Errorf("persist recommendation: %w", err)
	}

	if d.metrics != nil {
		d.metrics.RulesFired.Add(float64(len(trace)))
	}
	d.recorder.Record(state, ruleSet.Version, trace, candidate, rec)

	return rec, nil
}

// decisionConfidence blends elasticity confidence with the mean source
// confidence of the competitor quotes consumed. Missing competitor data
// halves the result rather than zeroing it: the decision still stands
// on the own-price default path.
func decisionConfidence(state *domain.MarketState) float64 {
	base := state.Elasticity.Confidence

	if len(state.Competitors) == 0 {
		return base * 0.5
	}

	sum := 0.0
	for _, c := range state.Competitors {
		sum += c.Confidence
	}
	sourceMean := sum / float64(len(state.Competitors))

	return (base + sourceMean) / 2
}
