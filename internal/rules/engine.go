// Package rules evaluates the configured pricing rule set against the
// assembled market state. Rules are data, not code: tagged predicate and
// action kinds keep evaluation auditable and replayable.
package rules

import (
	"fmt"
	"sort"

	"pricing-intel-engine/internal/domain"
)

// Engine evaluates rule sets.
type Engine struct{}

// NewEngine creates a rule evaluation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs the rules in ascending priority order. Matching rules
// are cumulative: each applies to the running candidate, starting from
// the current own price. A terminal rule stops evaluation immediately
// after it fires. Ties on priority break deterministically by rule_id.
// The trace records each fired rule and the candidate immediately after it.
func (e *Engine) Evaluate(state *domain.MarketState, set *domain.RuleSet) (float64, []domain.FiredRule, error) {
	candidate := state.OwnPrice
	var trace []domain.FiredRule

	if set == nil || len(set.Rules) == 0 {
		return candidate, trace, nil
	}

	ordered := make([]domain.PricingRule, len(set.Rules))
	copy(ordered, set.Rules)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].RuleID < ordered[j].RuleID
	})

	for _, rule := range ordered {
		matched, err := matches(rule, state)
		if err != nil {
			return 0, nil, err
		}
		if !matched {
			continue
		}

		candidate, err = apply(rule, candidate)
		if err != nil {
			return 0, nil, err
		}
		trace = append(trace, domain.FiredRule{RuleID: rule.RuleID, PriceAfter: candidate})

		if rule.Terminal {
			break
		}
	}

	return candidate, trace, nil
}

// matches evaluates the rule predicate against the market state.
func matches(rule domain.PricingRule, state *domain.MarketState) (bool, error) {
	switch rule.PredicateKind {
	case domain.PredicateAlways:
		return true, nil

	case domain.PredicatePriceGapBelow:
		gap, ok := state.PriceGapPct()
		return ok && gap < rule.PredicateValue, nil

	case domain.PredicatePriceGapAbove:
		gap, ok := state.PriceGapPct()
		return ok && gap > rule.PredicateValue, nil

	case domain.PredicateCompetitorPromo:
		return state.CompetitorPromoActive(), nil

	case domain.PredicateElasticityAbove:
		if state.Elasticity == nil {
			return false, nil
		}
		return magnitude(state.Elasticity.Coefficient) > rule.PredicateValue, nil

	case domain.PredicateElasticityBelow:
		if state.Elasticity == nil {
			return false, nil
		}
		return magnitude(state.Elasticity.Coefficient) < rule.PredicateValue, nil

	default:
		return false, fmt.Errorf("unknown predicate kind %q in rule %s", rule.PredicateKind, rule.RuleID)
	}
}

// apply applies the rule action to the running candidate.
func apply(rule domain.PricingRule, candidate float64) (float64, error) {
	switch rule.ActionKind {
	case domain.ActionSetAbsolute:
		return rule.ActionValue, nil
	case domain.ActionApplyDelta:
		return candidate + rule.ActionValue, nil
	case domain.ActionApplyDeltaPct:
		return candidate * (1 + rule.ActionValue/100.0), nil
	default:
		return 0, fmt.Errorf("unknown action kind %q in rule %s", rule.ActionKind, rule.RuleID)
	}
}

func magnitude(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
