// Package elasticity derives price-demand elasticity coefficients from
// historical (price, units_sold) pairs. Insufficient data degrades to a
// configured fallback coefficient with confidence 0; estimation never
// fails the caller over data quality.
package elasticity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// Estimator defaults.
const (
	DefaultWindowDays       = 90
	DefaultMinSamples       = 8
	DefaultMinPriceVariance = 1e-4
	DefaultFallback         = -1.2
)

// Config controls the estimation window and sufficiency thresholds.
type Config struct {
	WindowDays       int     // trailing sales window
	MinSamples       int     // minimum distinct price points for a fit
	MinPriceVariance float64 // minimum variance of log(price)
	Fallback         float64 // coefficient used when data is insufficient
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		WindowDays:       DefaultWindowDays,
		MinSamples:       DefaultMinSamples,
		MinPriceVariance: DefaultMinPriceVariance,
		Fallback:         DefaultFallback,
	}
}

// Estimator computes and versions elasticity coefficients.
type Estimator struct {
	sales        storage.SalesStore
	coefficients storage.ElasticityStore
	cfg          Config
	now          func() time.Time
}

// NewEstimator creates an estimator. Zero-valued config fields fall back
// to defaults.
func NewEstimator(sales storage.SalesStore, coefficients storage.ElasticityStore, cfg Config) *Estimator {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = DefaultWindowDays
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultMinSamples
	}
	if cfg.MinPriceVariance <= 0 {
		cfg.MinPriceVariance = DefaultMinPriceVariance
	}
	if cfg.Fallback == 0 {
		cfg.Fallback = DefaultFallback
	}
	return &Estimator{
		sales:        sales,
		coefficients: coefficients,
		cfg:          cfg,
		now:          time.Now,
	}
}

// Estimate computes a new ElasticityCoefficient version for the product
// from the trailing sales window and persists it. Callers must treat
// Confidence as a weighting signal, not a boolean gate.
func (e *Estimator) Estimate(ctx context.Context, productID string) (*domain.ElasticityCoefficient, error) {
	now := e.now()
	windowStart := now.AddDate(0, 0, -e.cfg.WindowDays).UnixMilli()

	records, err := e.sales.QueryWindow(ctx, productID, windowStart, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("query sales window: %w", err)
	}

	coeff := e.estimateFromRecords(productID, records, now.UnixMilli())

	version, err := e.coefficients.NextVersion(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("next elasticity version: %w", err)
	}
	coeff.Version = version

	if err := e.coefficients.Insert(ctx, coeff); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// A concurrent estimator claimed this version first. Its
			// result covers the same window; serve it instead of
			// failing the caller.
			return e.coefficients.GetActive(ctx, productID)
		}
		return nil, fmt.Errorf("insert elasticity coefficient: %w", err)
	}
	return coeff, nil
}

// estimateFromRecords runs the fit and applies the sufficiency rules.
func (e *Estimator) estimateFromRecords(productID string, records []*domain.SalesRecord, computedAt int64) *domain.ElasticityCoefficient {
	prices := make([]float64, 0, len(records))
	quantities := make([]float64, 0, len(records))
	for _, r := range records {
		prices = append(prices, r.PriceAtSale)
		quantities = append(quantities, r.UnitsSold)
	}

	fallback := &domain.ElasticityCoefficient{
		ProductID:   productID,
		Coefficient: e.cfg.Fallback,
		Confidence:  0,
		SampleSize:  len(records),
		ComputedAt:  computedAt,
	}

	if distinctCount(prices) < e.cfg.MinSamples {
		return fallback
	}

	fit := fitLogLog(prices, quantities)
	if fit.SampleSize < e.cfg.MinSamples || fit.LogPriceVar < e.cfg.MinPriceVariance {
		fallback.SampleSize = fit.SampleSize
		return fallback
	}

	return &domain.ElasticityCoefficient{
		ProductID:   productID,
		Coefficient: fit.Slope,
		Confidence:  confidenceFor(fit),
		SampleSize:  fit.SampleSize,
		ComputedAt:  computedAt,
	}
}

// confidenceFor maps fit quality to a 0..1 confidence. R-squared carries
// most of the weight; sample size tempers small-n fits.
func confidenceFor(fit fitResult) float64 {
	sizeWeight := 1.0 - 1.0/math.Sqrt(float64(fit.SampleSize))
	c := fit.RSquared * sizeWeight
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
