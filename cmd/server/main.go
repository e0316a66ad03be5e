// Package main provides the unified pricing service that runs all
// components together:
// - API (continuous): recommendation, observation ingest, rule management
// - Compaction (scheduled): observation retention enforcement
// - Elasticity refresh (scheduled): re-estimation for the full catalog
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"pricing-intel-engine/internal/audit"
	"pricing-intel-engine/internal/cache"
	"pricing-intel-engine/internal/config"
	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/elasticity"
	"pricing-intel-engine/internal/engine"
	"pricing-intel-engine/internal/guardrail"
	"pricing-intel-engine/internal/ingest"
	"pricing-intel-engine/internal/observability"
	"pricing-intel-engine/internal/rules"
	"pricing-intel-engine/internal/storage"
	chstore "pricing-intel-engine/internal/storage/clickhouse"
	"pricing-intel-engine/internal/storage/memory"
	"pricing-intel-engine/internal/storage/migrations"
	pgstore "pricing-intel-engine/internal/storage/postgres"
)

// Server holds all components of the unified service.
type Server struct {
	cfg *config.Config

	stores     *allStores
	cacheStore cache.Store

	decider      *engine.Decider
	normalizer   *ingest.Normalizer
	salesIntake  *ingest.SalesIntake
	ruleProvider *rules.Provider
	estimator    *elasticity.Estimator
	catalog      *engine.StaticCatalog
	recorder     *audit.Recorder
	metrics      *observability.Metrics
	logger       *log.Logger

	// State
	mu                 sync.Mutex
	started            time.Time
	lastCompactionRun  time.Time
	lastElasticityRun  time.Time
	compactionRuns     int
	elasticityRefreshs int
}

// allStores holds all storage implementations.
type allStores struct {
	observationStore    storage.ObservationStore
	salesStore          storage.SalesStore
	elasticityStore     storage.ElasticityStore
	recommendationStore storage.RecommendationStore
	auditStore          storage.AuditStore
}

func main() {
	loadEnvFile()

	configPath := flag.String("config", os.Getenv("PRICING_ENGINE_CONFIG"), "Path to YAML config file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the shared recommendation cache")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	catalogPath := flag.String("catalog", "", "JSON file with initial product catalog entries")
	rulesPath := flag.String("rules", "", "JSON file with the initial rule set")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := loadConfig(*configPath, *postgresDSN, *clickhouseDSN, *redisAddr, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.Storage.UseMemory && cfg.Storage.PostgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	server, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to build server: %v", err)
	}
	defer cleanup()

	if *catalogPath != "" {
		if err := server.loadCatalogFile(*catalogPath); err != nil {
			logger.Fatalf("Failed to load catalog %s: %v", *catalogPath, err)
		}
	}
	if *rulesPath != "" {
		if err := server.loadRulesFile(*rulesPath); err != nil {
			logger.Fatalf("Failed to load rules %s: %v", *rulesPath, err)
		}
	}

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

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
			// Normal shutdown completed
		}
	}()

	go server.startMetricsServer(cfg.Server.MetricsAddr)

	err = server.Run(ctx)
	server.recorder.Flush()
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// loadConfig loads the viper configuration and applies flag overrides.
func loadConfig(path, postgresDSN, clickhouseDSN, redisAddr string, useMemory bool) (*config.Config, error) {
	// Flag overrides come before Load's Validate, so a DSN supplied only
	// on the command line still satisfies validation.
	if postgresDSN != "" {
		os.Setenv("PRICING_ENGINE_STORAGE_POSTGRES_DSN", postgresDSN)
	}
	if clickhouseDSN != "" {
		os.Setenv("PRICING_ENGINE_STORAGE_CLICKHOUSE_DSN", clickhouseDSN)
	}
	if redisAddr != "" {
		os.Setenv("PRICING_ENGINE_STORAGE_REDIS_ADDR", redisAddr)
	}
	if useMemory {
		os.Setenv("PRICING_ENGINE_STORAGE_USE_MEMORY", "true")
	}
	return config.Load(path)
}

// buildServer wires stores and components from configuration.
func buildServer(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Server, func(), error) {
	stores, cacheStore, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	metrics := observability.NewMetrics("pricing_engine")

	estimator := elasticity.NewEstimator(stores.salesStore, stores.elasticityStore, elasticity.Config{
		WindowDays:       cfg.Elasticity.WindowDays,
		MinSamples:       cfg.Elasticity.MinSamples,
		MinPriceVariance: cfg.Elasticity.MinPriceVariance,
		Fallback:         cfg.Elasticity.FallbackCoefficient,
	})

	ruleProvider := rules.NewProvider()
	catalog := engine.NewStaticCatalog()

	optimizer := guardrail.NewOptimizer(guardrail.Config{
		ConfidenceThreshold: cfg.Optimizer.ConfidenceThreshold,
		SearchRadiusPct:     cfg.Optimizer.SearchRadiusPct,
		SearchSteps:         cfg.Optimizer.SearchSteps,
	})

	deduper := cache.NewDeduper(cacheStore, cfg.Cache.LeaseTimeout, metrics)

	recorder := audit.NewRecorder(stores.auditStore, metrics,
		log.New(os.Stdout, "[audit] ", log.LstdFlags))

	decider := engine.NewDecider(engine.Deps{
		Observations:    stores.observationStore,
		Recommendations: stores.recommendationStore,
		Coefficients:    stores.elasticityStore,
		Estimator:       estimator,
		RuleProvider:    ruleProvider,
		Optimizer:       optimizer,
		Deduper:         deduper,
		Catalog:         catalog,
		Recorder:        recorder,
		Metrics:         metrics,
		Logger:          log.New(os.Stdout, "[engine] ", log.LstdFlags),
	})

	normalizer := ingest.NewNormalizer(stores.observationStore, cfg.Currencies.Known, 0)
	salesIntake := ingest.NewSalesIntake(stores.salesStore, estimator,
		log.New(os.Stdout, "[sales] ", log.LstdFlags))

	server := &Server{
		cfg:          cfg,
		stores:       stores,
		cacheStore:   cacheStore,
		decider:      decider,
		normalizer:   normalizer,
		salesIntake:  salesIntake,
		ruleProvider: ruleProvider,
		estimator:    estimator,
		catalog:      catalog,
		recorder:     recorder,
		metrics:      metrics,
		logger:       logger,
		started:      time.Now(),
	}
	return server, cleanup, nil
}

// createStores creates all required stores plus the recommendation cache backend.
func createStores(ctx context.Context, cfg *config.Config) (*allStores, cache.Store, func(), error) {
	if cfg.Storage.UseMemory {
		stores := &allStores{
			observationStore:    memory.NewObservationStore(),
			salesStore:          memory.NewSalesStore(),
			elasticityStore:     memory.NewElasticityStore(),
			recommendationStore: memory.NewRecommendationStore(),
			auditStore:          memory.NewAuditStore(),
		}
		return stores, cache.NewMemoryStore(), func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse (audit log). Falls back to in-memory audit when no DSN
	// is configured.
	var (
		auditStore storage.AuditStore
		chConn     *chstore.Conn
	)
	if cfg.Storage.ClickhouseDSN != "" {
		chConn, err = migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		auditStore = chstore.NewAuditStore(chConn)
	} else {
		auditStore = memory.NewAuditStore()
	}

	// Redis (shared recommendation cache). Falls back to the in-process
	// cache when no address is configured.
	var (
		cacheStore cache.Store
		redisStore *cache.RedisStore
	)
	if cfg.Storage.RedisAddr != "" {
		redisStore, err = cache.NewRedisStore(cfg.Storage.RedisAddr, cfg.Storage.RedisPassword,
			cfg.Storage.RedisDB, cfg.Cache.RedisTTL)
		if err != nil {
			if chConn != nil {
				chConn.Close()
			}
			pool.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		cacheStore = redisStore
	} else {
		cacheStore = cache.NewMemoryStore()
	}

	stores := &allStores{
		observationStore:    pgstore.NewObservationStore(pool),
		salesStore:          pgstore.NewSalesStore(pool),
		elasticityStore:     pgstore.NewElasticityStore(pool),
		recommendationStore: pgstore.NewRecommendationStore(pool),
		auditStore:          auditStore,
	}

	cleanup := func() {
		if redisStore != nil {
			redisStore.Close()
		}
		if chConn != nil {
			chConn.Close()
		}
		pool.Close()
	}

	return stores, cacheStore, cleanup, nil
}

// Run starts the API server and background loops.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Println("Starting pricing service...")

	errCh := make(chan error, 3)

	go func() {
		if err := s.runAPI(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("api: %w", err)
		}
	}()

	go func() {
		if err := s.runCompactionLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("compaction: %w", err)
		}
	}()

	go func() {
		if err := s.runElasticityLoop(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("elasticity refresh: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// runAPI serves the decision and admin endpoints until ctx is done.
func (s *Server) runAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/v1/recommendation", s.handleRecommendation)
	mux.HandleFunc("/v1/observations", s.handleObservations)
	mux.HandleFunc("/v1/sales", s.handleSales)
	mux.HandleFunc("/v1/rules", s.handleRules)
	mux.HandleFunc("/v1/catalog", s.handleCatalog)

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  s.cfg.Server.RequestTimeout,
		WriteTimeout: s.cfg.Server.RequestTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Printf("API listening on %s", s.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

// runCompactionLoop enforces observation retention on schedule.
func (s *Server) runCompactionLoop(ctx context.Context) error {
	interval := s.cfg.History.CompactionInterval
	s.logger.Printf("Starting compaction loop (interval: %v, retention: %dd)...",
		interval, s.cfg.History.RetentionDays)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -s.cfg.History.RetentionDays).UnixMilli()
			removed, err := s.stores.observationStore.Compact(ctx, cutoff)
			if err != nil {
				s.logger.Printf("Compaction error: %v", err)
				continue
			}
			s.metrics.CompactionRuns.Inc()
			s.metrics.ObservationsCompacted.Add(float64(removed))
			s.mu.Lock()
			s.lastCompactionRun = time.Now()
			s.compactionRuns++
			s.mu.Unlock()
			if removed > 0 {
				s.logger.Printf("Compaction removed %d observations older than %d", removed, cutoff)
			}
		}
	}
}

// runElasticityLoop re-estimates coefficients for every cataloged product
// on schedule.
func (s *Server) runElasticityLoop(ctx context.Context) error {
	interval := s.cfg.Elasticity.RefreshInterval
	s.logger.Printf("Starting elasticity refresh loop (interval: %v)...", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.refreshElasticity(ctx)
		}
	}
}

// refreshElasticity runs one estimation pass over the catalog.
func (s *Server) refreshElasticity(ctx context.Context) {
	products := s.catalog.List()
	for _, info := range products {
		coeff, err := s.estimator.Estimate(ctx, info.ProductID)
		if err != nil {
			s.logger.Printf("Elasticity refresh for %s failed: %v", info.ProductID, err)
			continue
		}
		s.metrics.ElasticityRefreshes.Inc()
		if coeff.Confidence == 0 {
			s.metrics.ElasticityFallbacksUsed.Inc()
		}
	}
	s.mu.Lock()
	s.lastElasticityRun = time.Now()
	s.elasticityRefreshs++
	s.mu.Unlock()
	s.logger.Printf("Elasticity refresh completed for %d products", len(products))
}

// startMetricsServer starts the Prometheus scrape listener.
func (s *Server) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	s.logger.Printf("Metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		s.logger.Printf("Metrics server error: %v", err)
	}
}

// recommendationRequest is the body of POST /v1/recommendation.
type recommendationRequest struct {
	ProductID string `json:"product_id"`
	AsOfTime  int64  `json:"as_of_time,omitempty"`
}

// handleRecommendation computes (or serves from cache) one price
// recommendation.
func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	rec, err := s.decider.Decide(r.Context(), req.ProductID, req.AsOfTime)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrProductUnknown):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, rules.ErrNoRuleSet):
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, guardrail.ErrInfeasibleGuardrails):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, cache.ErrComputationTimeout):
			writeError(w, http.StatusGatewayTimeout, err.Error())
		case errors.Is(err, storage.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "storage unavailable, retry later")
		default:
			s.logger.Printf("Decision error for %s: %v", req.ProductID, err)
			writeError(w, http.StatusInternalServerError, "decision failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// observationsResponse reports per-item ingest outcomes.
type observationsResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// handleObservations ingests a batch of raw competitor observations.
func (s *Server) handleObservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var raws []*domain.RawObservation
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	accepted, rejects := s.normalizer.IngestBatch(r.Context(), raws)
	s.metrics.ObservationsAccepted.Add(float64(len(accepted)))

	resp := observationsResponse{
		Accepted: len(accepted),
		Rejected: len(rejects),
	}
	for _, err := range rejects {
		resp.Errors = append(resp.Errors, err.Error())
		var invalid *ingest.InvalidObservationError
		if errors.As(err, &invalid) {
			s.metrics.ObservationsRejected.WithLabelValues(invalid.Field).Inc()
		} else {
			s.metrics.ObservationsRejected.WithLabelValues("storage").Inc()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// salesResponse reports per-record sales intake outcomes.
type salesResponse struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
}

// handleSales ingests a batch of sales records and re-estimates
// elasticity for the touched products.
func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var records []*domain.SalesRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	accepted, rejects := s.salesIntake.Record(r.Context(), records)

	resp := salesResponse{
		Accepted: accepted,
		Rejected: len(rejects),
	}
	for _, err := range rejects {
		resp.Errors = append(resp.Errors, err.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRules atomically replaces the active rule set.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var set domain.RuleSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if err := s.ruleProvider.Install(&set); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.logger.Printf("Installed rule set version %d (%d rules)", set.Version, len(set.Rules))
	writeJSON(w, http.StatusOK, map[string]int64{"version": set.Version})
}

// handleCatalog upserts product economics.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var products []engine.ProductInfo
	if err := json.NewDecoder(r.Body).Decode(&products); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	for i := range products {
		if products[i].ProductID == "" {
			writeError(w, http.StatusBadRequest, "product_id is required for every entry")
			return
		}
	}
	for i := range products {
		s.catalog.Upsert(&products[i])
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": len(products)})
}

// handleHealthz is the liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// StatusResponse is the JSON response for the /status endpoint.
type StatusResponse struct {
	Status             string    `json:"status"`
	Uptime             string    `json:"uptime"`
	Started            time.Time `json:"started"`
	LastCompactionRun  time.Time `json:"last_compaction_run,omitempty"`
	LastElasticityRun  time.Time `json:"last_elasticity_run,omitempty"`
	CompactionRuns     int       `json:"compaction_runs"`
	ElasticityRefreshs int       `json:"elasticity_refreshes"`
	CatalogSize        int       `json:"catalog_size"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Status:             "running",
		Uptime:             time.Since(s.started).String(),
		Started:            s.started,
		LastCompactionRun:  s.lastCompactionRun,
		LastElasticityRun:  s.lastElasticityRun,
		CompactionRuns:     s.compactionRuns,
		ElasticityRefreshs: s.elasticityRefreshs,
	}
	s.mu.Unlock()
	resp.CatalogSize = len(s.catalog.List())

	writeJSON(w, http.StatusOK, resp)
}

// loadCatalogFile seeds the catalog from a JSON array of products.
func (s *Server) loadCatalogFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var products []engine.ProductInfo
	if err := json.Unmarshal(data, &products); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	for i := range products {
		s.catalog.Upsert(&products[i])
	}
	s.logger.Printf("Loaded %d catalog products from %s", len(products), path)
	return nil
}

// loadRulesFile installs the initial rule set from a JSON file.
func (s *Server) loadRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var set domain.RuleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return fmt.Errorf("parse rule set: %w", err)
	}
	if err := s.ruleProvider.Install(&set); err != nil {
		return err
	}
	s.logger.Printf("Installed rule set version %d (%d rules) from %s", set.Version, len(set.Rules), path)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
