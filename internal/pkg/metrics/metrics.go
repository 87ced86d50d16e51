package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trenchcard"

var (
	ChainEndpointAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_endpoint_attempts_total",
		Help:      "Chain RPC endpoint attempts by endpoint host and outcome.",
	}, []string{"endpoint", "outcome"})

	ChainFetchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_fetch_failures_total",
		Help:      "Chain data fetches that failed on every configured endpoint.",
	})

	PriceFetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_fetch_attempts_total",
		Help:      "Price oracle attempts by outcome (ok, rate_limited, error).",
	}, []string{"outcome"})

	PriceFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_fallback_total",
		Help:      "Price fetches answered with the static fallback table.",
	})

	PriceCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_cache_hits_total",
		Help:      "Price fetches answered from the live price cache.",
	})

	SnapshotDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "snapshot_duration_seconds",
		Help:      "Wallet snapshot build time by result.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"result"})

	CardRenderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "card_render_duration_seconds",
		Help:      "Card image render time by output format.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Snapshot result label values besides OutcomeOK.
const (
	ResultInvalidAddress   = "invalid_address"
	ResultChainUnavailable = "chain_unavailable"
)

var registerOnce sync.Once

// MustRegisterMetrics registers every collector with the default registry.
// Calling it more than once is a no-op.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ChainEndpointAttempts,
			ChainFetchFailures,
			PriceFetchAttempts,
			PriceFallbacks,
			PriceCacheHits,
			SnapshotDuration,
			CardRenderDuration,
		)
	})
}

// ObserveSince records the time elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
