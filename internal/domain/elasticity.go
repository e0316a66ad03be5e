package domain

// ElasticityCoefficient represents a versioned price-demand elasticity
// estimate for one product. Recomputation inserts a new version; older
// versions are retained for audit and never consulted by the live path.
// Corresponds to elasticity_coefficients table in PostgreSQL.
type ElasticityCoefficient struct {
	ProductID   string  // product identifier
	Version     int64   // monotonically increasing per product
	Coefficient float64 // regression slope of log(quantity) on log(price)
	Confidence  float64 // 0..1; 0 means the fallback coefficient was used
	SampleSize  int     // distinct price points used in the fit
	ComputedAt  int64   // Unix timestamp in milliseconds
}

// Sensitivity classification thresholds on the absolute coefficient.
const (
	SensitivityHighThreshold = 2.0
	SensitivityLowThreshold  = 1.0
)

// Sensitivity labels.
const (
	SensitivityHigh     = "high"
	SensitivityModerate = "moderate"
	SensitivityLow      = "low"
)

// Sensitivity classifies demand sensitivity from the coefficient magnitude.
func (e *ElasticityCoefficient) Sensitivity() string {
	abs := e.Coefficient
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= SensitivityHighThreshold:
		return SensitivityHigh
	case abs >= SensitivityLowThreshold:
		return SensitivityModerate
	default:
		return SensitivityLow
	}
}
