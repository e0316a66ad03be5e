// Package cache holds the recommendation cache and the per-fingerprint
// deduplicator. Fingerprints are content-addressed, so entries are
// write-once and never invalidated: a changed input produces a new
// fingerprint and a cache miss.
package cache

import (
	"context"

	"pricing-intel-engine/internal/domain"
)

// Store is a write-once recommendation cache keyed by fingerprint.
type Store interface {
	// Get retrieves a cached recommendation. The second return is false
	// on a miss; an error means the backend itself failed.
	Get(ctx context.Context, fingerprint string) (*domain.PriceRecommendation, bool, error)

	// Put stores a recommendation under its fingerprint. Storing over an
	// existing entry is a no-op: entries are immutable.
	Put(ctx context.Context, fingerprint string, rec *domain.PriceRecommendation) error
}
