package rules

import (
	"math"
	"testing"

	"pricing-intel-engine/internal/domain"
)

func stateWithGap(ownPrice, competitorPrice float64) *domain.MarketState {
	return &domain.MarketState{
		ProductID: "p1",
		OwnPrice:  ownPrice,
		Competitors: []domain.CompetitorQuote{
			{CompetitorID: "a", Price: competitorPrice},
		},
		Elasticity: &domain.ElasticityCoefficient{Coefficient: -1.5, Confidence: 0.8},
	}
}

func TestEvaluate_CumulativeDeltas(t *testing.T) {
	e := NewEngine()
	state := stateWithGap(90, 90)

	set := &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "r1", Priority: 1, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta, ActionValue: 5},
			{RuleID: "r2", Priority: 2, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta, ActionValue: 5},
		},
	}

	price, trace, err := e.Evaluate(state, set)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if price != 100 {
		t.Errorf("Expected 90+5+5=100, got %v", price)
	}
	if len(trace) != 2 {
		t.Fatalf("Expected 2 fired rules, got %d", len(trace))
	}
	if trace[0].PriceAfter != 95 || trace[1].PriceAfter != 100 {
		t.Errorf("Trace must record the running candidate: %+v", trace)
	}
}

func TestEvaluate_TerminalStopsEvaluation(t *testing.T) {
	e := NewEngine()
	state := stateWithGap(90, 90)

	set := &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "r1", Priority: 1, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionSetAbsolute, ActionValue: 100, Terminal: true},
			{RuleID: "r2", Priority: 2, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta, ActionValue: -10},
		},
	}

	price, trace, err := e.Evaluate(state, set)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if price != 100 {
		t.Errorf("Terminal rule must stop evaluation at 100, got %v", price)
	}
	if len(trace) != 1 || trace[0].RuleID != "r1" {
		t.Errorf("Expected only r1 in trace, got %+v", trace)
	}
}

func TestEvaluate_PriorityOrderWithTieBreak(t *testing.T) {
	e := NewEngine()
	state := stateWithGap(100, 100)

	// Same priority: rule_id breaks the tie, so "a" fires before "b".
	// set_absolute then delta is order-sensitive.
	set := &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "b", Priority: 5, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta, ActionValue: 10},
			{RuleID: "a", Priority: 5, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionSetAbsolute, ActionValue: 50},
		},
	}

	price, _, err := e.Evaluate(state, set)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if price != 60 {
		t.Errorf("Expected set(50) then +10 = 60, got %v", price)
	}
}

func TestEvaluate_PriceGapPredicates(t *testing.T) {
	e := NewEngine()

	// Own 80 vs competitor avg 100: gap = -20%.
	state := stateWithGap(80, 100)

	set := &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "below", Priority: 1, PredicateKind: domain.PredicatePriceGapBelow, PredicateValue: -15, ActionKind: domain.ActionApplyDeltaPct, ActionValue: 5},
			{RuleID: "above", Priority: 2, PredicateKind: domain.PredicatePriceGapAbove, PredicateValue: 10, ActionKind: domain.ActionApplyDelta, ActionValue: -50},
		},
	}

	price, trace, err := e.Evaluate(state, set)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(trace) != 1 || trace[0].RuleID != "below" {
		t.Fatalf("Expected only the gap-below rule to fire, got %+v", trace)
	}
	if math.Abs(price-84) > 1e-9 {
		t.Errorf("Expected 80*1.05=84, got %v", price)
	}
}

func TestEvaluate_GapPredicatesNeedCompetitorData(t *testing.T) {
	e := NewEngine()
	state := &domain.MarketState{ProductID: "p1", OwnPrice: 100}

	set := &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "r1", Priority: 1, PredicateKind: domain.PredicatePriceGapBelow, PredicateValue: 0, ActionKind: domain.ActionApplyDelta, ActionValue: -10},
		},
	}

	price, trace, err := e.Evaluate(state, set)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(trace) != 0 {
		t.Errorf("Gap predicate must not fire without competitor data")
	}
	if price != 100 {
		t.Errorf("Expected own price passthrough, got %v", price)
	}
}

func TestEvaluate_PromoAndElasticityPredicates(t *testing.T) {
	e := NewEngine()
	state := stateWithGap(100, 100)
	state.Competitors[0].PromoActive = true

	set := &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "promo", Priority: 1, PredicateKind: domain.PredicateCompetitorPromo, ActionKind: domain.ActionApplyDeltaPct, ActionValue: -3},
			// |elasticity| = 1.5 > 1.0 matches.
			{RuleID: "elastic", Priority: 2, PredicateKind: domain.PredicateElasticityAbove, PredicateValue: 1.0, ActionKind: domain.ActionApplyDelta, ActionValue: -1},
			// |elasticity| = 1.5 is not < 1.0.
			{RuleID: "inelastic", Priority: 3, PredicateKind: domain.PredicateElasticityBelow, PredicateValue: 1.0, ActionKind: domain.ActionApplyDelta, ActionValue: 20},
		},
	}

	price, trace, err := e.Evaluate(state, set)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(trace) != 2 {
		t.Fatalf("Expected promo and elastic to fire, got %+v", trace)
	}
	if math.Abs(price-96) > 1e-9 {
		t.Errorf("Expected 100*0.97-1=96, got %v", price)
	}
}

func TestEvaluate_UnknownKindsFail(t *testing.T) {
	e := NewEngine()
	state := stateWithGap(100, 100)

	_, _, err := e.Evaluate(state, &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "r1", PredicateKind: "sometimes", ActionKind: domain.ActionApplyDelta},
		},
	})
	if err == nil {
		t.Error("Expected error for unknown predicate kind")
	}

	_, _, err = e.Evaluate(state, &domain.RuleSet{
		Version: 1,
		Rules: []domain.PricingRule{
			{RuleID: "r1", PredicateKind: domain.PredicateAlways, ActionKind: "multiply"},
		},
	})
	if err == nil {
		t.Error("Expected error for unknown action kind")
	}
}

func TestEvaluate_EmptySetReturnsOwnPrice(t *testing.T) {
	e := NewEngine()
	state := stateWithGap(77, 100)

	price, trace, err := e.Evaluate(state, &domain.RuleSet{Version: 1})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if price != 77 || len(trace) != 0 {
		t.Errorf("Empty set must pass the own price through, got %v with %d fired", price, len(trace))
	}
}
