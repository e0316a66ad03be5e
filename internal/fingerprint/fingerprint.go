// Package fingerprint computes the deterministic content hash of all
// inputs consumed by one pricing decision. Identical inputs always map
// to the same fingerprint, which serves as the recommendation cache key.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"pricing-intel-engine/internal/domain"
)

// Compute derives the decision fingerprint from the assembled market
// state and the rule-set version. Competitor quotes are hashed in
// CompetitorID order so that assembly order cannot change the result.
// Returns hex-encoded SHA256 (64 characters).
func Compute(state *domain.MarketState, ruleSetVersion int64) string {
	quotes := make([]domain.CompetitorQuote, len(state.Competitors))
	copy(quotes, state.Competitors)
	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].CompetitorID < quotes[j].CompetitorID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%s|%.10f|%.10f|%.10f|%.10f|rules=%d",
		state.ProductID,
		state.OwnPrice,
		state.CostBasis,
		state.MarginFloor,
		state.PriceCeiling,
		ruleSetVersion,
	)

	if state.Elasticity != nil {
		fmt.Fprintf(&b, "|elasticity=%s:%d", state.Elasticity.ProductID, state.Elasticity.Version)
	} else {
		b.WriteString("|elasticity=none")
	}

	for _, q := range quotes {
		fmt.Fprintf(&b, "|%s:%.10f:%d:%.4f:%t",
			q.CompetitorID, q.Price, q.ObservedAt, q.Confidence, q.PromoActive)
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:])
}
