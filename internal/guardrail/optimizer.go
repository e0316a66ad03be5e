// Package guardrail enforces the hard price bounds and performs the
// expected-margin optimization inside them. Guardrails are absolute:
// every output is clamped into [floor, ceiling] both before and after
// optimization.
package guardrail

import (
	"errors"
	"fmt"
	"math"
)

// ErrInfeasibleGuardrails is returned when margin_floor > price_ceiling.
// This is a configuration error, rejected before any computation.
var ErrInfeasibleGuardrails = errors.New("infeasible guardrails: margin floor exceeds price ceiling")

// Optimizer defaults.
const (
	DefaultConfidenceThreshold = 0.5
	DefaultSearchRadiusPct     = 5.0
	DefaultSearchSteps         = 21
)

// Config controls when and how the local margin search runs.
type Config struct {
	ConfidenceThreshold float64 // minimum elasticity confidence for the search
	SearchRadiusPct     float64 // neighborhood around the clamped candidate, percent
	SearchSteps         int     // grid points across the neighborhood
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		SearchRadiusPct:     DefaultSearchRadiusPct,
		SearchSteps:         DefaultSearchSteps,
	}
}

// Optimizer clamps candidates and maximizes expected margin.
type Optimizer struct {
	cfg Config
}

// NewOptimizer creates an optimizer. Zero-valued config fields fall back
// to defaults.
func NewOptimizer(cfg Config) *Optimizer {
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if cfg.SearchRadiusPct <= 0 {
		cfg.SearchRadiusPct = DefaultSearchRadiusPct
	}
	if cfg.SearchSteps < 3 {
		cfg.SearchSteps = DefaultSearchSteps
	}
	return &Optimizer{cfg: cfg}
}

// Input carries one optimization request.
type Input struct {
	CandidatePrice       float64
	CostBasis            float64
	MarginFloor          float64
	PriceCeiling         float64
	Elasticity           float64
	ElasticityConfidence float64
	CurrentPrice         float64 // anchor for the demand curve
	CurrentDemand        float64 // observed demand at CurrentPrice; <= 0 disables the search
}

// Optimize clamps the candidate into bounds, runs the expected-margin
// search when elasticity confidence clears the threshold, and re-clamps
// the result. Fails with ErrInfeasibleGuardrails before touching the
// candidate when floor > ceiling.
func (o *Optimizer) Optimize(in Input) (float64, error) {
	if in.MarginFloor > in.PriceCeiling {
		return 0, fmt.Errorf("%w: floor=%.4f ceiling=%.4f", ErrInfeasibleGuardrails, in.MarginFloor, in.PriceCeiling)
	}

	price := clamp(in.CandidatePrice, in.MarginFloor, in.PriceCeiling)

	if in.ElasticityConfidence >= o.cfg.ConfidenceThreshold && in.CurrentDemand > 0 && in.CurrentPrice > 0 {
		price = o.searchMargin(price, in)
	}

	// Guardrails are checked last as well as first.
	return clamp(price, in.MarginFloor, in.PriceCeiling), nil
}

// searchMargin scans a small neighborhood of the clamped price for the
// point maximizing (price - cost) * expectedDemand(price). Only points
// inside the guardrails compete.
func (o *Optimizer) searchMargin(center float64, in Input) float64 {
	radius := center * o.cfg.SearchRadiusPct / 100.0
	lo := math.Max(center-radius, in.MarginFloor)
	hi := math.Min(center+radius, in.PriceCeiling)
	if hi <= lo {
		return center
	}

	best := center
	bestMargin := expectedMargin(center, in)

	step := (hi - lo) / float64(o.cfg.SearchSteps-1)
	for i := 0; i < o.cfg.SearchSteps; i++ {
		p := lo + step*float64(i)
		if m := expectedMargin(p, in); m > bestMargin {
			best = p
			bestMargin = m
		}
	}
	return best
}

// expectedMargin models demand as a constant-elasticity response
// anchored at the currently observed (price, demand) point:
// demand(p) = currentDemand * (p / currentPrice)^elasticity.
func expectedMargin(price float64, in Input) float64 {
	demand := in.CurrentDemand * math.Pow(price/in.CurrentPrice, in.Elasticity)
	return (price - in.CostBasis) * demand
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
