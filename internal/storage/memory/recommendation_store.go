package memory

import (
	"context"
	"sync"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// RecommendationStore is an in-memory implementation of storage.RecommendationStore.
type RecommendationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceRecommendation // keyed by fingerprint
}

// NewRecommendationStore creates a new in-memory recommendation store.
func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{
		data: make(map[string]*domain.PriceRecommendation),
	}
}

// Compile-time interface check.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Insert adds a recommendation. Entries are write-once per fingerprint.
func (s *RecommendationStore) Insert(_ context.Context, r *domain.PriceRecommendation) error {
	if r == nil || r.InputFingerprint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.InputFingerprint]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *r
	cp.FiredRules = append([]domain.FiredRule(nil), r.FiredRules...)
	s.data[r.InputFingerprint] = &cp
	return nil
}

// GetByFingerprint retrieves a recommendation by its fingerprint.
func (s *RecommendationStore) GetByFingerprint(_ context.Context, fingerprint string) (*domain.PriceRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[fingerprint]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *r
	cp.FiredRules = append([]domain.FiredRule(nil), r.FiredRules...)
	return &cp, nil
}

// GetLatestByProduct retrieves the most recently computed recommendation
// for a product.
func (s *RecommendationStore) GetLatestByProduct(_ context.Context, productID string) (*domain.PriceRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.PriceRecommendation
	for _, r := range s.data {
		if r.ProductID != productID {
			continue
		}
		if latest == nil || r.ComputedAt > latest.ComputedAt {
			latest = r
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	cp := *latest
	cp.FiredRules = append([]domain.FiredRule(nil), latest.FiredRules...)
	return &cp, nil
}
