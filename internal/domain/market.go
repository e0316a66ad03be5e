package domain

// CompetitorQuote is the latest observation for one competitor,
// as assembled into the market state.
type CompetitorQuote struct {
	CompetitorID string
	Price        float64
	ObservedAt   int64
	Confidence   float64
	PromoActive  bool
}

// MarketState is the ephemeral view assembled per decision. It is never
// persisted; its content is captured by the decision fingerprint.
type MarketState struct {
	ProductID    string
	AsOf         int64 // Unix timestamp in milliseconds
	OwnPrice     float64
	CostBasis    float64
	MarginFloor  float64
	PriceCeiling float64

	Competitors []CompetitorQuote
	Elasticity  *ElasticityCoefficient
}

// Competitive position thresholds on the average price gap, in percent.
// Gap is (own - competitor_avg) / competitor_avg * 100, so a negative
// gap means we are cheaper.
const (
	PriceAdvantageThresholdPct    = -15.0
	PriceDisadvantageThresholdPct = 10.0
)

// Competitive position labels.
const (
	PositionAdvantage    = "advantage"
	PositionParity       = "parity"
	PositionDisadvantage = "disadvantage"
	PositionUnknown      = "unknown"
)

// AvgCompetitorPrice returns the mean competitor price, or 0 when no
// competitor quotes are present.
func (m *MarketState) AvgCompetitorPrice() float64 {
	if len(m.Competitors) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range m.Competitors {
		sum += c.Price
	}
	return sum / float64(len(m.Competitors))
}

// PriceGapPct returns the percent gap between own price and the average
// competitor price. Returns (0, false) when no competitor data exists.
func (m *MarketState) PriceGapPct() (float64, bool) {
	avg := m.AvgCompetitorPrice()
	if avg <= 0 {
		return 0, false
	}
	return (m.OwnPrice - avg) / avg * 100.0, true
}

// Position classifies the competitive stance from the price gap.
func (m *MarketState) Position() string {
	gap, ok := m.PriceGapPct()
	if !ok {
		return PositionUnknown
	}
	switch {
	case gap <= PriceAdvantageThresholdPct:
		return PositionAdvantage
	case gap >= PriceDisadvantageThresholdPct:
		return PositionDisadvantage
	default:
		return PositionParity
	}
}

// CompetitorPromoActive reports whether any competitor quote carries an
// active promotion flag.
func (m *MarketState) CompetitorPromoActive() bool {
	for _, c := range m.Competitors {
		if c.PromoActive {
			return true
		}
	}
	return false
}
