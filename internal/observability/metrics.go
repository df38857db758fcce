package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpDurationBuckets  = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	fetchDurationBuckets = []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}
)

// Metrics holds the Prometheus instruments of the server and the query
// engine.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	GraphQLOperationsTotal   *prometheus.CounterVec
	GraphQLOperationDuration *prometheus.HistogramVec

	QueryFetchesTotal       *prometheus.CounterVec
	QueryFetchDuration      *prometheus.HistogramVec
	QueryCacheHitsTotal     *prometheus.CounterVec
	QueryInvalidationsTotal *prometheus.CounterVec
}

// InitMetrics creates and registers every instrument on reg.
func InitMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myfeed_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myfeed_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: httpDurationBuckets,
		}, []string{"method", "path_pattern"}),

		GraphQLOperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myfeed_graphql_operations_total",
			Help: "Total number of executed GraphQL root fields.",
		}, []string{"operation", "field", "code"}),
		GraphQLOperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myfeed_graphql_operation_duration_seconds",
			Help:    "GraphQL root field resolution time in seconds.",
			Buckets: fetchDurationBuckets,
		}, []string{"operation", "field"}),

		QueryFetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myfeed_query_fetches_total",
			Help: "Total number of page fetches issued by the query engine.",
		}, []string{"operation", "outcome"}),
		QueryFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "myfeed_query_fetch_duration_seconds",
			Help:    "Page fetch duration in seconds, retries included.",
			Buckets: fetchDurationBuckets,
		}, []string{"operation"}),
		QueryCacheHitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myfeed_query_cache_hits_total",
			Help: "Total number of fetches served from fresh cache.",
		}, []string{"operation"}),
		QueryInvalidationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "myfeed_query_invalidations_total",
			Help: "Total number of cache entries marked stale.",
		}, []string{"domain"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GraphQLOperationsTotal,
		m.GraphQLOperationDuration,
		m.QueryFetchesTotal,
		m.QueryFetchDuration,
		m.QueryCacheHitsTotal,
		m.QueryInvalidationsTotal,
	)

	return m
}

func (m *Metrics) RecordHTTPRequest(method, pathPattern string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// RecordGraphQLField records one resolved root field. code is the error code
// it failed with, or "OK".
func (m *Metrics) RecordGraphQLField(operation, field, code string, duration time.Duration) {
	m.GraphQLOperationsTotal.WithLabelValues(operation, field, code).Inc()
	m.GraphQLOperationDuration.WithLabelValues(operation, field).Observe(duration.Seconds())
}

func (m *Metrics) RecordQueryFetch(operation string, err error, duration time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.QueryFetchesTotal.WithLabelValues(operation, outcome).Inc()
	m.QueryFetchDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) RecordQueryCacheHit(operation string) {
	m.QueryCacheHitsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) RecordQueryInvalidation(domain string, keys int) {
	m.QueryInvalidationsTotal.WithLabelValues(domain).Add(float64(keys))
}

// Middleware records request metrics under chi's route pattern rather than
// the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, routePattern(r), sw.status, time.Since(start))
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := strings.TrimSuffix(strings.Join(rctx.RoutePatterns, ""), "/*")
	if pattern == "" {
		return r.URL.Path
	}
	return pattern
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}
