// Command ingest loads competitor price observations into the history
// store. Two modes:
// - batch: read a JSON-lines file of raw observations
// - live: consume a provider WebSocket feed until interrupted
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pricing-intel-engine/internal/config"
	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/ingest"
	"pricing-intel-engine/internal/storage"
	"pricing-intel-engine/internal/storage/memory"
	"pricing-intel-engine/internal/storage/migrations"
	pgstore "pricing-intel-engine/internal/storage/postgres"
)

func main() {
	mode := flag.String("mode", "batch", "Ingestion mode: batch or live")
	input := flag.String("input", "", "JSON-lines file of raw observations (batch mode)")
	wsEndpoint := flag.String("ws-endpoint", "", "Provider WebSocket endpoint (live mode)")
	provider := flag.String("provider", "default", "Competitor-data provider name, used as fallback competitor_id")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	currencies := flag.String("currencies", "", "Comma-separated accepted currency codes (defaults to configuration)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stdout, "[ingest] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	store, cleanup, err := createObservationStore(ctx, *postgresDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create store: %v", err)
	}
	defer cleanup()

	normalizer := ingest.NewNormalizer(store, resolveCurrencies(*currencies), 0)

	switch *mode {
	case "batch":
		err = runBatch(ctx, logger, normalizer, *input)
	case "live":
		err = runLive(ctx, logger, normalizer, *wsEndpoint, *provider)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Ingestion error: %v", err)
	}
	logger.Println("Done")
}

// resolveCurrencies returns the flag override or the configured set.
func resolveCurrencies(flagValue string) []string {
	if flagValue != "" {
		var list []string
		for _, c := range strings.Split(flagValue, ",") {
			c = strings.TrimSpace(c)
			if c != "" {
				list = append(list, c)
			}
		}
		return list
	}

	cfg, err := config.Load("")
	if err != nil {
		// Unreachable with defaults only, but keep the fallback explicit.
		return []string{"USD", "EUR"}
	}
	return cfg.Currencies.Known
}

// createObservationStore builds the history store backend.
func createObservationStore(ctx context.Context, postgresDSN string, useMemory bool) (storage.ObservationStore, func(), error) {
	if useMemory {
		return memory.NewObservationStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}
	return pgstore.NewObservationStore(pool), func() { pool.Close() }, nil
}

// runBatch streams a JSON-lines file through the normalizer.
func runBatch(ctx context.Context, logger *log.Logger, normalizer *ingest.Normalizer, input string) error {
	if input == "" {
		return fmt.Errorf("--input is required in batch mode")
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	const flushSize = 500

	var (
		batch     []*domain.RawObservation
		accepted  int
		rejected  int
		lineCount int
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		ok, errs := normalizer.IngestBatch(ctx, batch)
		accepted += len(ok)
		for _, e := range errs {
			rejected++
			logger.Printf("rejected: %v", e)
		}
		batch = batch[:0]
		return ctx.Err()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineCount++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw domain.RawObservation
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			rejected++
			logger.Printf("line %d: malformed JSON: %v", lineCount, err)
			continue
		}
		batch = append(batch, &raw)

		if len(batch) >= flushSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	logger.Printf("Batch complete: %d lines, %d accepted, %d rejected", lineCount, accepted, rejected)
	return nil
}

// runLive consumes a provider WebSocket feed until cancelled.
func runLive(ctx context.Context, logger *log.Logger, normalizer *ingest.Normalizer, endpoint, provider string) error {
	if endpoint == "" {
		return fmt.Errorf("--ws-endpoint is required in live mode")
	}

	source := ingest.NewWSObservationSource(endpoint, provider, logger)
	logger.Printf("Consuming live feed from %s (provider %s)...", endpoint, provider)
	return source.Run(ctx, normalizer)
}
