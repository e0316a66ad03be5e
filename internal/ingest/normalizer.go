// Package ingest validates and canonicalizes raw competitor price
// observations before they reach the history store. Validation is
// all-or-nothing per record: a rejected record leaves no partial write.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// DefaultClockSkewTolerance bounds how far in the future observed_at may
// be before the record is rejected rather than trusted.
const DefaultClockSkewTolerance = 5 * time.Minute

// InvalidObservationError reports a rejected raw observation with the
// offending field.
type InvalidObservationError struct {
	Field  string
	Reason string
}

func (e *InvalidObservationError) Error() string {
	return fmt.Sprintf("invalid observation: field %s: %s", e.Field, e.Reason)
}

// Normalizer validates raw observations and appends accepted ones to the
// history store.
type Normalizer struct {
	store      storage.ObservationStore
	currencies map[string]struct{}
	skew       time.Duration
	now        func() time.Time
}

// NewNormalizer creates a normalizer accepting the given currency codes.
// skew <= 0 falls back to DefaultClockSkewTolerance.
func NewNormalizer(store storage.ObservationStore, currencies []string, skew time.Duration) *Normalizer {
	if skew <= 0 {
		skew = DefaultClockSkewTolerance
	}
	set := make(map[string]struct{}, len(currencies))
	for _, c := range currencies {
		set[strings.ToUpper(c)] = struct{}{}
	}
	return &Normalizer{
		store:      store,
		currencies: set,
		skew:       skew,
		now:        time.Now,
	}
}

// Normalize validates a raw observation and returns the canonical record
// without persisting it. Ingestion time is stamped alongside the
// observed time to distinguish late-arriving data from stale data.
func (n *Normalizer) Normalize(raw *domain.RawObservation) (*domain.PriceObservation, error) {
	if raw == nil {
		return nil, &InvalidObservationError{Field: "record", Reason: "missing"}
	}
	if strings.TrimSpace(raw.ProductID) == "" {
		return nil, &InvalidObservationError{Field: "product_id", Reason: "missing"}
	}
	if strings.TrimSpace(raw.CompetitorID) == "" {
		return nil, &InvalidObservationError{Field: "competitor_id", Reason: "missing"}
	}
	if raw.ObservedPrice <= 0 {
		return nil, &InvalidObservationError{Field: "observed_price", Reason: "must be > 0"}
	}

	currency := strings.ToUpper(strings.TrimSpace(raw.Currency))
	if _, ok := n.currencies[currency]; !ok {
		return nil, &InvalidObservationError{Field: "currency", Reason: fmt.Sprintf("unknown currency %q", raw.Currency)}
	}

	now := n.now()
	if raw.ObservedAt <= 0 {
		return nil, &InvalidObservationError{Field: "observed_at", Reason: "missing"}
	}
	if raw.ObservedAt > now.Add(n.skew).UnixMilli() {
		return nil, &InvalidObservationError{Field: "observed_at", Reason: "in the future beyond clock-skew tolerance"}
	}

	confidence := raw.SourceConfidence
	if confidence < 0 || confidence > 1 {
		return nil, &InvalidObservationError{Field: "source_confidence", Reason: "must be within [0, 1]"}
	}

	return &domain.PriceObservation{
		ProductID:        strings.TrimSpace(raw.ProductID),
		CompetitorID:     strings.TrimSpace(raw.CompetitorID),
		ObservedPrice:    raw.ObservedPrice,
		Currency:         currency,
		ObservedAt:       raw.ObservedAt,
		IngestedAt:       now.UnixMilli(),
		SourceConfidence: confidence,
		PromoFlag:        raw.PromoFlag,
	}, nil
}

// Ingest normalizes one raw observation and appends it to the history
// store. A validation failure writes nothing.
func (n *Normalizer) Ingest(ctx context.Context, raw *domain.RawObservation) (*domain.PriceObservation, error) {
	obs, err := n.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if err := n.store.Append(ctx, obs); err != nil {
		return nil, fmt.Errorf("append observation: %w", err)
	}
	return obs, nil
}

// IngestBatch normalizes a batch and appends all accepted records.
// Returns the accepted observations and the first validation error per
// rejected record; accepted records are still written when others fail.
func (n *Normalizer) IngestBatch(ctx context.Context, raws []*domain.RawObservation) ([]*domain.PriceObservation, []error) {
	var accepted []*domain.PriceObservation
	var rejected []error

	for _, raw := range raws {
		obs, err := n.Normalize(raw)
		if err != nil {
			rejected = append(rejected, err)
			continue
		}
		accepted = append(accepted, obs)
	}

	if len(accepted) > 0 {
		if err := n.store.AppendBulk(ctx, accepted); err != nil {
			return nil, append(rejected, fmt.Errorf("append batch: %w", err))
		}
	}
	return accepted, rejected
}
