package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lookupOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phoneapi_lookups_total",
			Help: "Lookup attempts by outcome.",
		},
		[]string{"outcome"},
	)
	lookupDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phoneapi_lookup_duration_seconds",
			Help:    "Lookup latency from admission to result, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	cacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phoneapi_lookup_cache_total",
			Help: "Lookup cache accesses by result (hit, miss).",
		},
		[]string{"result"},
	)
	ledgerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "phoneapi_ledger_write_failures_total",
			Help: "Usage log rows that could not be written.",
		},
	)
)

func init() {
	prometheus.MustRegister(lookupOutcomes, lookupDuration, cacheResults, ledgerFailures)
}

// outcomeLabel maps a Lookup error to a low-cardinality metric label.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrKeyMissing):
		return "key_missing"
	case errors.Is(err, ErrKeyInvalid):
		return "key_invalid"
	case errors.Is(err, ErrQueryMissing):
		return "query_missing"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
