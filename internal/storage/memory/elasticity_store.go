package memory

import (
	"context"
	"fmt"
	"sync"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// ElasticityStore is an in-memory implementation of storage.ElasticityStore.
type ElasticityStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.ElasticityCoefficient // keyed by product|version
	active map[string]int64                         // highest version per product
}

// NewElasticityStore creates a new in-memory elasticity store.
func NewElasticityStore() *ElasticityStore {
	return &ElasticityStore{
		data:   make(map[string]*domain.ElasticityCoefficient),
		active: make(map[string]int64),
	}
}

// Compile-time interface check.
var _ storage.ElasticityStore = (*ElasticityStore)(nil)

func elasticityKey(productID string, version int64) string {
	return fmt.Sprintf("%s|%d", productID, version)
}

// Insert adds a new coefficient version. Returns ErrDuplicateKey if
// (product_id, version) exists.
func (s *ElasticityStore) Insert(_ context.Context, e *domain.ElasticityCoefficient) error {
	if e == nil || e.ProductID == "" || e.Version <= 0 {
		return storage.ErrInvalidInput
	}

	key := elasticityKey(e.ProductID, e.Version)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *e
	s.data[key] = &cp
	if e.Version > s.active[e.ProductID] {
		s.active[e.ProductID] = e.Version
	}
	return nil
}

// GetActive retrieves the highest version for a product.
func (s *ElasticityStore) GetActive(_ context.Context, productID string) (*domain.ElasticityCoefficient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.active[productID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	e := s.data[elasticityKey(productID, version)]
	cp := *e
	return &cp, nil
}

// NextVersion returns the next unused version number for a product.
func (s *ElasticityStore) NextVersion(_ context.Context, productID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active[productID] + 1, nil
}
