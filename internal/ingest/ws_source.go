package ingest

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"pricing-intel-engine/internal/domain"
)

const (
	maxDialRetries = 3
	baseRetryDelay = 500 * time.Millisecond
	readTimeout    = 90 * time.Second
)

// WSObservationSource streams raw competitor observations from a
// provider's WebSocket feed. One source per competitor-data provider.
type WSObservationSource struct {
	endpoint string
	provider string
	logger   *log.Logger
}

// NewWSObservationSource creates a WebSocket observation source.
func NewWSObservationSource(endpoint, provider string, logger *log.Logger) *WSObservationSource {
	if logger == nil {
		logger = log.Default()
	}
	return &WSObservationSource{
		endpoint: endpoint,
		provider: provider,
		logger:   logger,
	}
}

// dial connects with exponential backoff: 500ms, 1s, 2s.
func (s *WSObservationSource) dial(ctx context.Context) (*websocket.Conn, error) {
	var lastErr error
	for attempt := 0; attempt < maxDialRetries; attempt++ {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.endpoint, nil)
		if err == nil {
			return conn, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		delay := baseRetryDelay * time.Duration(1<<attempt)
		s.logger.Printf("[ws-%s] Retry %d/%d after %v: %v", s.provider, attempt+1, maxDialRetries, delay, err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// Subscribe returns a channel of raw observations from the feed. The
// channel is closed when the context is cancelled or the connection is
// lost past retries. Malformed frames are logged and skipped; actual
// validation happens in the normalizer.
func (s *WSObservationSource) Subscribe(ctx context.Context) (<-chan *domain.RawObservation, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan *domain.RawObservation, 100)

	go func() {
		defer close(out)
		defer conn.Close()

		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
				s.logger.Printf("[ws-%s] set read deadline: %v", s.provider, err)
				return
			}

			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Printf("[ws-%s] read: %v", s.provider, err)
				}
				return
			}

			var raw domain.RawObservation
			if err := json.Unmarshal(data, &raw); err != nil {
				s.logger.Printf("[ws-%s] skip malformed frame: %v", s.provider, err)
				continue
			}
			if raw.CompetitorID == "" {
				raw.CompetitorID = s.provider
			}

			select {
			case out <- &raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Run consumes the feed and pushes every frame through the normalizer
// until the context is cancelled. Rejected records are counted and
// logged, never stored.
func (s *WSObservationSource) Run(ctx context.Context, normalizer *Normalizer) error {
	obsCh, err := s.Subscribe(ctx)
	if err != nil {
		return err
	}

	accepted, rejected := 0, 0
	for raw := range obsCh {
		if _, err := normalizer.Ingest(ctx, raw); err != nil {
			rejected++
			s.logger.Printf("[ws-%s] rejected: %v", s.provider, err)
			continue
		}
		accepted++
	}

	s.logger.Printf("[ws-%s] feed closed: accepted=%d rejected=%d", s.provider, accepted, rejected)
	return ctx.Err()
}
