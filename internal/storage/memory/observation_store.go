package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// ObservationStore is an in-memory implementation of storage.ObservationStore.
type ObservationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceObservation // keyed by composite key
}

// NewObservationStore creates a new in-memory observation store.
func NewObservationStore() *ObservationStore {
	return &ObservationStore{
		data: make(map[string]*domain.PriceObservation),
	}
}

// Compile-time interface check.
var _ storage.ObservationStore = (*ObservationStore)(nil)

// observationKey generates a unique key for an observation. Content and
// observed_at participate so an exact duplicate maps to the same key.
func observationKey(o *domain.PriceObservation) string {
	return fmt.Sprintf("%s|%s|%d|%.10f|%s", o.ProductID, o.CompetitorID, o.ObservedAt, o.ObservedPrice, o.Currency)
}

// Append adds an observation. An exact duplicate is a no-op.
func (s *ObservationStore) Append(_ context.Context, o *domain.PriceObservation) error {
	if o == nil || o.ProductID == "" || o.CompetitorID == "" {
		return storage.ErrInvalidInput
	}

	key := observationKey(o)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return nil // idempotent append
	}

	cp := *o
	s.data[key] = &cp
	return nil
}

// AppendBulk adds multiple observations atomically.
func (s *ObservationStore) AppendBulk(_ context.Context, obs []*domain.PriceObservation) error {
	if len(obs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range obs {
		if o == nil || o.ProductID == "" || o.CompetitorID == "" {
			return storage.ErrInvalidInput
		}
	}
	for _, o := range obs {
		key := observationKey(o)
		if _, exists := s.data[key]; exists {
			continue
		}
		cp := *o
		s.data[key] = &cp
	}
	return nil
}

// Query retrieves observations within [start, end], ordered by observed_at ASC.
func (s *ObservationStore) Query(_ context.Context, productID, competitorID string, start, end int64) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceObservation
	for _, o := range s.data {
		if o.ProductID != productID {
			continue
		}
		if competitorID != "" && o.CompetitorID != competitorID {
			continue
		}
		if o.ObservedAt < start || o.ObservedAt > end {
			continue
		}
		cp := *o
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].ObservedAt != result[j].ObservedAt {
			return result[i].ObservedAt < result[j].ObservedAt
		}
		return result[i].CompetitorID < result[j].CompetitorID
	})
	return result, nil
}

// LatestPerCompetitor retrieves the most recent observation per
// competitor at or before asOf, ordered by competitor_id ASC.
func (s *ObservationStore) LatestPerCompetitor(_ context.Context, productID string, asOf int64) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]*domain.PriceObservation)
	for _, o := range s.data {
		if o.ProductID != productID || o.ObservedAt > asOf {
			continue
		}
		cur, ok := latest[o.CompetitorID]
		if !ok || o.ObservedAt > cur.ObservedAt {
			latest[o.CompetitorID] = o
		}
	}

	result := make([]*domain.PriceObservation, 0, len(latest))
	for _, o := range latest {
		cp := *o
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CompetitorID < result[j].CompetitorID
	})
	return result, nil
}

// Compact removes observations with observed_at older than cutoff.
func (s *ObservationStore) Compact(_ context.Context, cutoff int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, o := range s.data {
		if o.ObservedAt < cutoff {
			delete(s.data, key)
			removed++
		}
	}
	return removed, nil
}
