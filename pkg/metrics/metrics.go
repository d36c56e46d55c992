// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graph_store_query_duration_seconds",
		Help:    "Latency of graph store statements and transactions",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode", "outcome"})

	EmailsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "emails_created_total",
		Help: "Total number of emails created",
	})

	EmailsIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "emails_indexed_total",
		Help: "Embedding index attempts by outcome",
	}, []string{"outcome"})

	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "search_requests_total",
		Help: "Search requests by retrieval mode (semantic or text)",
	}, []string{"mode"})

	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_provider_calls_total",
		Help: "Calls to external embedding and completion providers",
	}, []string{"capability", "outcome"})

	// ProviderFallbacks counts operations served by the deterministic
	// fallback because the provider is not configured.
	ProviderFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_provider_fallbacks_total",
		Help: "Operations answered by the offline fallback",
	}, []string{"operation"})
)

// Outcome maps an error to the "outcome" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveStoreQuery records the latency of one store round trip.
func ObserveStoreQuery(mode string, start time.Time, err error) {
	StoreQueryDuration.WithLabelValues(mode, Outcome(err)).Observe(time.Since(start).Seconds())
}
