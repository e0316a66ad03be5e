package domain

// AuditRecord is the immutable record of one decision: inputs, fired
// rules, and final output, kept for later explanation and replay.
// Corresponds to decision_audit table in ClickHouse.
type AuditRecord struct {
	RecordID             string // UUID
	ProductID            string
	InputFingerprint     string
	OwnPrice             float64
	CostBasis            float64
	MarginFloor          float64
	PriceCeiling         float64
	CompetitorCount      int
	AvgCompetitorPrice   float64
	ElasticityUsed       float64
	ElasticityVersion    int64
	ElasticityConfidence float64
	RuleSetVersion       int64
	FiredRules           []FiredRule
	CandidatePrice       float64 // rule engine output before guardrails
	FinalPrice           float64
	Direction            string
	ComputedAt           int64 // Unix timestamp in milliseconds
}
