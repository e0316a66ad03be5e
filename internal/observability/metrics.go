// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	ObservationsAccepted prometheus.Counter
	ObservationsRejected *prometheus.CounterVec

	// Decision metrics
	DecisionsComputed *prometheus.CounterVec
	DecisionDuration  prometheus.Histogram
	RulesFired        prometheus.Counter

	// Cache metrics
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	DedupSharedWaits prometheus.Counter

	// Elasticity metrics
	ElasticityRefreshes     prometheus.Counter
	ElasticityFallbacksUsed prometheus.Counter

	// Maintenance metrics
	CompactionRuns        prometheus.Counter
	ObservationsCompacted prometheus.Counter

	// Audit health
	AuditWrites   prometheus.Counter
	AuditFailures prometheus.Counter
	AuditHealthy  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pricing_engine"
	}

	m := &Metrics{
		ObservationsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "observations_accepted_total",
			Help:      "Total number of observations accepted into the history store",
		}),
		ObservationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "observations_rejected_total",
			Help:      "Total number of observations rejected at validation, by field",
		}, []string{"field"}),

		DecisionsComputed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "computed_total",
			Help:      "Total number of decisions, by outcome",
		}, []string{"outcome"}),
		DecisionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "duration_seconds",
			Help:      "Decision computation latency",
			Buckets:   prometheus.DefBuckets,
		}),
		RulesFired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "rules_fired_total",
			Help:      "Total number of rules that fired across all decisions",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of recommendation cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of recommendation cache misses",
		}),
		DedupSharedWaits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "dedup_shared_waits_total",
			Help:      "Total number of callers that waited on an in-flight computation",
		}),

		ElasticityRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "elasticity",
			Name:      "refreshes_total",
			Help:      "Total number of elasticity recomputations",
		}),
		ElasticityFallbacksUsed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "elasticity",
			Name:      "fallbacks_total",
			Help:      "Total number of estimates that used the fallback coefficient",
		}),

		CompactionRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "compaction_runs_total",
			Help:      "Total number of retention compaction runs",
		}),
		ObservationsCompacted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "observations_compacted_total",
			Help:      "Total number of observations removed by compaction",
		}),

		AuditWrites: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "writes_total",
			Help:      "Total number of audit records written",
		}),
		AuditFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "failures_total",
			Help:      "Total number of failed audit writes",
		}),
		AuditHealthy: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "healthy",
			Help:      "1 when the last audit write succeeded, 0 otherwise",
		}),
	}

	m.AuditHealthy.Set(1)
	return m
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
