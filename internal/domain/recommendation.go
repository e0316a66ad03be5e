package domain

// Recommendation direction relative to the current own price.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
	DirectionMaintain = "maintain"
)

// PriceRecommendation is the final decision output. Written once per
// fingerprint; cache entries are immutable. A changed input produces a
// new fingerprint and a new entry, never an in-place update.
// Corresponds to price_recommendations table in PostgreSQL.
type PriceRecommendation struct {
	ProductID         string      `json:"product_id"`
	RecommendedPrice  float64     `json:"recommended_price"`
	Direction         string      `json:"direction"`
	Position          string      `json:"position"`
	FiredRules        []FiredRule `json:"fired_rules"`
	ElasticityUsed    float64     `json:"elasticity_used"`
	ElasticityVersion int64       `json:"elasticity_version"`
	Confidence        float64     `json:"confidence"`
	ComputedAt        int64       `json:"computed_at"`
	InputFingerprint  string      `json:"input_fingerprint"`
}

// DirectionFor classifies the recommendation direction. Prices within
// epsilon of the own price count as maintain.
func DirectionFor(ownPrice, recommended float64) string {
	const epsilon = 1e-9
	switch {
	case recommended > ownPrice+epsilon:
		return DirectionIncrease
	case recommended < ownPrice-epsilon:
		return DirectionDecrease
	default:
		return DirectionMaintain
	}
}
