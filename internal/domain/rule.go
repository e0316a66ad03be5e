package domain

// Predicate kinds. Predicates are data, not code: each kind names a
// condition on the market state, with Value as its numeric parameter
// where one applies.
const (
	PredicateAlways          = "always"
	PredicatePriceGapBelow   = "price_gap_below"
	PredicatePriceGapAbove   = "price_gap_above"
	PredicateCompetitorPromo = "competitor_promo_active"
	PredicateElasticityAbove = "elasticity_above"
	PredicateElasticityBelow = "elasticity_below"
)

// Action kinds.
const (
	ActionSetAbsolute   = "set_absolute"
	ActionApplyDelta    = "apply_delta"
	ActionApplyDeltaPct = "apply_delta_pct"
)

// PricingRule is one configured rule. Rules are externally supplied
// configuration and read-only to the engine.
type PricingRule struct {
	RuleID         string  `json:"rule_id"`
	Priority       int     `json:"priority"` // lower fires first
	PredicateKind  string  `json:"predicate_kind"`
	PredicateValue float64 `json:"predicate_value,omitempty"`
	ActionKind     string  `json:"action_kind"`
	ActionValue    float64 `json:"action_value"`
	Terminal       bool    `json:"terminal"` // stop evaluation after this rule fires
}

// RuleSet is a full, atomically swapped rule configuration.
// Version participates in the decision fingerprint.
type RuleSet struct {
	Version int64         `json:"version"`
	Rules   []PricingRule `json:"rules"`
}

// FiredRule is one entry of the evaluation trace: the rule that fired
// and the running candidate price immediately after it.
type FiredRule struct {
	RuleID     string  `json:"rule_id"`
	PriceAfter float64 `json:"price_after"`
}
