package memory

import (
	"context"
	"sort"
	"sync"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// SalesStore is an in-memory implementation of storage.SalesStore.
type SalesStore struct {
	mu   sync.RWMutex
	data []*domain.SalesRecord
}

// NewSalesStore creates a new in-memory sales store.
func NewSalesStore() *SalesStore {
	return &SalesStore{}
}

// Compile-time interface check.
var _ storage.SalesStore = (*SalesStore)(nil)

// Insert adds a sales record.
func (s *SalesStore) Insert(_ context.Context, r *domain.SalesRecord) error {
	if r == nil || r.ProductID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.data = append(s.data, &cp)
	return nil
}

// QueryWindow retrieves records whose period overlaps [start, end],
// ordered by period_start ASC.
func (s *SalesStore) QueryWindow(_ context.Context, productID string, start, end int64) ([]*domain.SalesRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SalesRecord
	for _, r := range s.data {
		if r.ProductID != productID {
			continue
		}
		if r.PeriodEnd < start || r.PeriodStart > end {
			continue
		}
		cp := *r
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PeriodStart < result[j].PeriodStart
	})
	return result, nil
}
