package domain

// SalesRecord represents aggregated sales for a product over a period.
// Supplied by the external order system; read-only input to the
// elasticity estimator. Corresponds to sales_records table in PostgreSQL.
type SalesRecord struct {
	ProductID   string  `json:"product_id"`
	UnitsSold   float64 `json:"units_sold"`    // units sold during the period
	PriceAtSale float64 `json:"price_at_sale"` // effective own price during the period
	PeriodStart int64   `json:"period_start"`  // Unix timestamp in milliseconds, inclusive
	PeriodEnd   int64   `json:"period_end"`    // Unix timestamp in milliseconds, inclusive
}
