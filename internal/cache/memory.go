package cache

import (
	"context"
	"sync"

	"pricing-intel-engine/internal/domain"
)

// MemoryStore is an in-process implementation of Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceRecommendation
}

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*domain.PriceRecommendation),
	}
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// Get retrieves a cached recommendation.
func (s *MemoryStore) Get(_ context.Context, fingerprint string) (*domain.PriceRecommendation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[fingerprint]
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	cp.FiredRules = append([]domain.FiredRule(nil), rec.FiredRules...)
	return &cp, true, nil
}

// Put stores a recommendation. Existing entries are kept as-is.
func (s *MemoryStore) Put(_ context.Context, fingerprint string, rec *domain.PriceRecommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[fingerprint]; exists {
		return nil
	}
	cp := *rec
	cp.FiredRules = append([]domain.FiredRule(nil), rec.FiredRules...)
	s.data[fingerprint] = &cp
	return nil
}
