package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/observability"
)

// ErrComputationTimeout is returned to callers when a computation does
// not finish within the lease. The lease is released so a subsequent
// caller can retry.
var ErrComputationTimeout = errors.New("computation timed out")

// DefaultLeaseTimeout bounds how long one in-flight computation may hold
// its fingerprint before waiters give up and the key is released.
const DefaultLeaseTimeout = 30 * time.Second

// ComputeFunc produces a recommendation for one fingerprint.
type ComputeFunc func(ctx context.Context) (*domain.PriceRecommendation, error)

// flight is one in-progress computation shared by all callers of the
// same fingerprint.
type flight struct {
	done     chan struct{}
	rec      *domain.PriceRecommendation
	err      error
	deadline time.Time
}

// Deduper guarantees at most one in-flight computation per fingerprint.
// Successful results go to the Store; failures are never cached and the
// next caller recomputes. The computation runs detached from any single
// caller's context: a cancelled caller stops waiting, but the flight may
// still complete and populate the cache for subsequent callers.
type Deduper struct {
	store   Store
	lease   time.Duration
	metrics *observability.Metrics

	mu      sync.Mutex
	flights map[string]*flight
}

// NewDeduper creates a deduplicator over the given cache store.
// lease <= 0 falls back to DefaultLeaseTimeout; metrics may be nil.
func NewDeduper(store Store, lease time.Duration, metrics *observability.Metrics) *Deduper {
	if lease <= 0 {
		lease = DefaultLeaseTimeout
	}
	return &Deduper{
		store:   store,
		lease:   lease,
		metrics: metrics,
		flights: make(map[string]*flight),
	}
}

// GetOrCompute returns the cached recommendation for the fingerprint or
// runs computeFn exactly once across all concurrent callers for it.
func (d *Deduper) GetOrCompute(ctx context.Context, fingerprint string, computeFn ComputeFunc) (*domain.PriceRecommendation, error) {
	if rec, ok, err := d.store.Get(ctx, fingerprint); err != nil {
		return nil, err
	} else if ok {
		if d.metrics != nil {
			d.metrics.CacheHits.Inc()
		}
		return rec, nil
	}
	if d.metrics != nil {
		d.metrics.CacheMisses.Inc()
	}

	f, leader := d.joinFlight(fingerprint)
	if leader {
		d.run(fingerprint, f, computeFn)
	} else if d.metrics != nil {
		d.metrics.DedupSharedWaits.Inc()
	}

	select {
	case <-f.done:
		if f.err != nil {
			return nil, f.err
		}
		return f.rec, nil
	case <-ctx.Done():
		// The flight keeps running; only this caller stops waiting.
		return nil, ctx.Err()
	case <-time.After(time.Until(f.deadline)):
		d.release(fingerprint, f)
		return nil, ErrComputationTimeout
	}
}

// joinFlight returns the live flight for the fingerprint, creating one
// when none exists or the existing lease has expired. The second return
// reports whether this caller became the leader and must run computeFn.
func (d *Deduper) joinFlight(fingerprint string) (*flight, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f, ok := d.flights[fingerprint]; ok && time.Now().Before(f.deadline) {
		return f, false
	}

	// No flight, or a crashed/abandoned one past its lease: take over.
	f := &flight{
		done:     make(chan struct{}),
		deadline: time.Now().Add(d.lease),
	}
	d.flights[fingerprint] = f
	return f, true
}

// run executes the computation in its own goroutine under the lease
// deadline, decoupled from the leader's caller context.
func (d *Deduper) run(fingerprint string, f *flight, computeFn ComputeFunc) {
	go func() {
		ctx, cancel := context.WithDeadline(context.Background(), f.deadline)
		defer cancel()

		rec, err := computeFn(ctx)
		if err == nil {
			if putErr := d.store.Put(ctx, fingerprint, rec); putErr != nil {
				err = putErr
			}
		}

		f.rec, f.err = rec, err
		if err != nil {
			f.rec = nil
		}
		close(f.done)

		d.release(fingerprint, f)
	}()
}

// release removes the flight if it is still the registered one.
func (d *Deduper) release(fingerprint string, f *flight) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.flights[fingerprint]; ok && cur == f {
		delete(d.flights, fingerprint)
	}
}
