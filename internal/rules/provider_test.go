package rules

import (
	"errors"
	"testing"

	"pricing-intel-engine/internal/domain"
)

func validSet(version int64) *domain.RuleSet {
	return &domain.RuleSet{
		Version: version,
		Rules: []domain.PricingRule{
			{RuleID: "r1", Priority: 1, PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta, ActionValue: 1},
		},
	}
}

func TestProvider_CurrentBeforeInstall(t *testing.T) {
	p := NewProvider()
	if _, err := p.Current(); !errors.Is(err, ErrNoRuleSet) {
		t.Errorf("Expected ErrNoRuleSet, got %v", err)
	}
}

func TestProvider_InstallAndCurrent(t *testing.T) {
	p := NewProvider()
	if err := p.Install(validSet(1)); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	set, err := p.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if set.Version != 1 || len(set.Rules) != 1 {
		t.Errorf("Unexpected installed set: %+v", set)
	}
}

func TestProvider_VersionMustMoveForward(t *testing.T) {
	p := NewProvider()
	if err := p.Install(validSet(5)); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	if err := p.Install(validSet(5)); err == nil {
		t.Error("Expected rejection of same version")
	}
	if err := p.Install(validSet(4)); err == nil {
		t.Error("Expected rejection of older version")
	}
	if err := p.Install(validSet(6)); err != nil {
		t.Errorf("Newer version must install: %v", err)
	}
}

func TestProvider_InstallCopiesRules(t *testing.T) {
	p := NewProvider()
	set := validSet(1)
	if err := p.Install(set); err != nil {
		t.Fatalf("Install failed: %v", err)
	}

	// Mutating the caller's slice must not leak into the installed set.
	set.Rules[0].ActionValue = 999

	cur, _ := p.Current()
	if cur.Rules[0].ActionValue == 999 {
		t.Error("Installed set shares memory with the caller's slice")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		set  *domain.RuleSet
	}{
		{"empty rule id", &domain.RuleSet{Version: 1, Rules: []domain.PricingRule{
			{RuleID: "", PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta},
		}}},
		{"duplicate rule id", &domain.RuleSet{Version: 1, Rules: []domain.PricingRule{
			{RuleID: "r1", PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta},
			{RuleID: "r1", PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionApplyDelta},
		}}},
		{"unknown predicate", &domain.RuleSet{Version: 1, Rules: []domain.PricingRule{
			{RuleID: "r1", PredicateKind: "maybe", ActionKind: domain.ActionApplyDelta},
		}}},
		{"unknown action", &domain.RuleSet{Version: 1, Rules: []domain.PricingRule{
			{RuleID: "r1", PredicateKind: domain.PredicateAlways, ActionKind: "halve"},
		}}},
		{"non-positive absolute price", &domain.RuleSet{Version: 1, Rules: []domain.PricingRule{
			{RuleID: "r1", PredicateKind: domain.PredicateAlways, ActionKind: domain.ActionSetAbsolute, ActionValue: 0},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.set); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}
