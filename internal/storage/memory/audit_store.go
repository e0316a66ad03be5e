package memory

import (
	"context"
	"sort"
	"sync"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// AuditStore is an in-memory implementation of storage.AuditStore.
type AuditStore struct {
	mu   sync.RWMutex
	data []*domain.AuditRecord
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Compile-time interface check.
var _ storage.AuditStore = (*AuditStore)(nil)

// Insert appends one audit record.
func (s *AuditStore) Insert(_ context.Context, rec *domain.AuditRecord) error {
	if rec == nil || rec.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.FiredRules = append([]domain.FiredRule(nil), rec.FiredRules...)
	s.data = append(s.data, &cp)
	return nil
}

// GetByProduct retrieves audit records for a product, ordered by computed_at ASC.
func (s *AuditStore) GetByProduct(_ context.Context, productID string) ([]*domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AuditRecord
	for _, rec := range s.data {
		if rec.ProductID != productID {
			continue
		}
		cp := *rec
		cp.FiredRules = append([]domain.FiredRule(nil), rec.FiredRules...)
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ComputedAt < result[j].ComputedAt
	})
	return result, nil
}
