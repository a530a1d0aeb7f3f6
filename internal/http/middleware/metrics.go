// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the HTTP-level Prometheus collectors and the Metrics()
// middleware that feeds them. Lookup-specific counters (outcomes, cache hits,
// ledger write failures) live in the services package; the ones here only
// see the transport.
//
// Label set:
//
//   - method: the HTTP verb
//   - route:  the registered Gin pattern, e.g. /api/admin/keys/:key, or
//     "unmatched" when no route was selected
//   - status: the numeric status code as a string (request counter only)
//
// The route label is the pattern, never c.Request.URL.Path, so a key in a
// path segment cannot become a label value and cardinality stays bounded by
// the route table. Everything here is safe for concurrent use.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// httpReqs counts finished requests by method, route and status.
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phoneapi",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	// httpLat is request latency by method and route. Status is left out to
	// keep the histogram series count down. The upper buckets cover initdb,
	// which can run for minutes.
	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "phoneapi",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"method", "route"},
	)

	// httpInflight is the number of requests currently being served.
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "phoneapi",
			Name:      "http_requests_inflight",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	// httpRespSize is the response body size in bytes before gzip. Lookup
	// and error envelopes sit in the low buckets; key listings reach the top.
	httpRespSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "phoneapi",
			Name:      "http_response_size_bytes",
			Help:      "Size of HTTP responses in bytes.",
			Buckets:   prometheus.ExponentialBuckets(128, 2, 10), // 128B..64KiB
		},
		[]string{"method", "route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight, httpRespSize)
}

// Metrics instruments every request with the collectors above. Serve them
// with gin.WrapH(promhttp.Handler()).
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		method := c.Request.Method
		route := routeOf(c)
		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}
