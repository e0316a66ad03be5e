package domain

// PriceObservation represents a normalized competitor price observation.
// Corresponds to price_observations table in PostgreSQL.
// Immutable once stored; removed only by retention compaction.
type PriceObservation struct {
	ProductID        string  // product identifier
	CompetitorID     string  // competitor identifier
	ObservedPrice    float64 // competitor price, must be > 0
	Currency         string  // ISO 4217 code from the configured known set
	ObservedAt       int64   // Unix timestamp in milliseconds (source clock)
	IngestedAt       int64   // Unix timestamp in milliseconds (our clock)
	SourceConfidence float64 // 0..1 confidence assigned by the source adapter
	PromoFlag        bool    // competitor promotion active at observation time
}

// RawObservation is an unvalidated record as delivered by a source adapter.
// The ingestion normalizer turns it into a PriceObservation or rejects it.
type RawObservation struct {
	ProductID        string  `json:"product_id"`
	CompetitorID     string  `json:"competitor_id"`
	ObservedPrice    float64 `json:"observed_price"`
	Currency         string  `json:"currency"`
	ObservedAt       int64   `json:"observed_at"`
	SourceConfidence float64 `json:"source_confidence"`
	PromoFlag        bool    `json:"promo_flag"`
}
