package rules

import (
	"errors"
	"fmt"
	"sync/atomic"

	"pricing-intel-engine/internal/domain"
)

// ErrNoRuleSet is returned when no rule set has been installed yet.
var ErrNoRuleSet = errors.New("no rule set installed")

// Provider holds the current rule set behind an atomic pointer. Swaps
// are full replacements: readers observe the old set or the new one,
// never a partially applied mix.
type Provider struct {
	current atomic.Pointer[domain.RuleSet]
}

// NewProvider creates an empty provider. Install must run before Current
// can succeed.
func NewProvider() *Provider {
	return &Provider{}
}

// Install validates and atomically swaps in a full rule set. The new
// version must be greater than the installed one so fingerprints only
// move forward.
func (p *Provider) Install(set *domain.RuleSet) error {
	if set == nil {
		return errors.New("nil rule set")
	}
	if err := Validate(set); err != nil {
		return err
	}
	if cur := p.current.Load(); cur != nil && set.Version <= cur.Version {
		return fmt.Errorf("rule set version %d not newer than installed %d", set.Version, cur.Version)
	}

	cp := *set
	cp.Rules = append([]domain.PricingRule(nil), set.Rules...)
	p.current.Store(&cp)
	return nil
}

// Current returns the installed rule set snapshot.
func (p *Provider) Current() (*domain.RuleSet, error) {
	set := p.current.Load()
	if set == nil {
		return nil, ErrNoRuleSet
	}
	return set, nil
}

// Validate checks every rule for known kinds and unique ids before the
// set becomes visible to decisions.
func Validate(set *domain.RuleSet) error {
	seen := make(map[string]struct{}, len(set.Rules))
	for _, r := range set.Rules {
		if r.RuleID == "" {
			return errors.New("rule with empty rule_id")
		}
		if _, dup := seen[r.RuleID]; dup {
			return fmt.Errorf("duplicate rule_id %q", r.RuleID)
		}
		seen[r.RuleID] = struct{}{}

		switch r.PredicateKind {
		case domain.PredicateAlways, domain.PredicatePriceGapBelow, domain.PredicatePriceGapAbove,
			domain.PredicateCompetitorPromo, domain.PredicateElasticityAbove, domain.PredicateElasticityBelow:
		default:
			return fmt.Errorf("rule %s: unknown predicate kind %q", r.RuleID, r.PredicateKind)
		}

		switch r.ActionKind {
		case domain.ActionSetAbsolute, domain.ActionApplyDelta, domain.ActionApplyDeltaPct:
		default:
			return fmt.Errorf("rule %s: unknown action kind %q", r.RuleID, r.ActionKind)
		}

		if r.ActionKind == domain.ActionSetAbsolute && r.ActionValue <= 0 {
			return fmt.Errorf("rule %s: set_absolute requires a positive price", r.RuleID)
		}
	}
	return nil
}
