package jobs

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/atharvsharma432199/phone-api/internal/services"
)

var (
	recordsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phoneapi_records",
		Help: "Rows in the record store.",
	})
	storeAvailable = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phoneapi_record_store_available",
		Help: "1 when the record store can be queried.",
	})
	keysGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "phoneapi_api_keys",
		Help: "API keys by state (total, active).",
	}, []string{"state"})
	keyUsage = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phoneapi_api_key_usage",
		Help: "Sum of usage counters over all keys.",
	})
	callsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "phoneapi_usage_calls",
		Help: "Usage log rows by kind (total, success, today).",
	}, []string{"kind"})
	successRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phoneapi_usage_success_rate_percent",
		Help: "Successful lookups as a percentage of all attempts.",
	})
	cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phoneapi_lookup_cache_entries",
		Help: "Entries held by the lookup cache.",
	})
	lastRefresh = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "phoneapi_status_refresh_timestamp_seconds",
		Help: "Unix time of the last successful status refresh.",
	})
	refreshFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "phoneapi_status_refresh_failures_total",
		Help: "Status refreshes that failed.",
	})
)

func init() {
	prometheus.MustRegister(
		recordsGauge, storeAvailable, keysGauge, keyUsage,
		callsGauge, successRate, cacheEntries, lastRefresh, refreshFailures,
	)
}

func publish(st *services.Status) {
	recordsGauge.Set(float64(st.Records))
	if st.RecordStoreAvailable {
		storeAvailable.Set(1)
	} else {
		storeAvailable.Set(0)
	}
	keysGauge.WithLabelValues("total").Set(float64(st.TotalKeys))
	keysGauge.WithLabelValues("active").Set(float64(st.ActiveKeys))
	keyUsage.Set(float64(st.TotalKeyUsage))
	callsGauge.WithLabelValues("total").Set(float64(st.Usage.TotalCalls))
	callsGauge.WithLabelValues("success").Set(float64(st.Usage.SuccessCalls))
	callsGauge.WithLabelValues("today").Set(float64(st.Usage.TodayCalls))
	successRate.Set(st.Usage.SuccessRate)
	cacheEntries.Set(float64(st.CacheEntries))
}
