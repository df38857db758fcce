package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return InitMetrics(reg), reg
}

func TestInitMetrics_registersAllMetrics(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.RecordHTTPRequest("POST", "/query", 200, time.Millisecond)
	m.RecordGraphQLField("UserBlocked", "userBlocked", "OK", time.Millisecond)
	m.RecordQueryFetch("userBlocked", nil, time.Millisecond)
	m.RecordQueryCacheHit("userBlocked")
	m.RecordQueryInvalidation("contentPreference", 2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, name := range []string{
		"myfeed_http_requests_total",
		"myfeed_http_request_duration_seconds",
		"myfeed_graphql_operations_total",
		"myfeed_graphql_operation_duration_seconds",
		"myfeed_query_fetches_total",
		"myfeed_query_fetch_duration_seconds",
		"myfeed_query_cache_hits_total",
		"myfeed_query_invalidations_total",
	} {
		require.True(t, names[name], "metric %q not registered", name)
	}
}

func TestRecordQueryFetch_outcome(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordQueryFetch("userBlocked", nil, time.Millisecond)
	m.RecordQueryFetch("userBlocked", errors.New("boom"), time.Millisecond)
	m.RecordQueryFetch("userBlocked", errors.New("boom"), time.Millisecond)

	require.Equal(t, 1.0, testutil.ToFloat64(m.QueryFetchesTotal.WithLabelValues("userBlocked", "success")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.QueryFetchesTotal.WithLabelValues("userBlocked", "error")))

	m.RecordQueryInvalidation("contentPreference", 3)
	require.Equal(t, 3.0, testutil.ToFloat64(m.QueryInvalidationsTotal.WithLabelValues("contentPreference")))
}

func TestMiddleware_usesRoutePattern(t *testing.T) {
	m, _ := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/{id}", "418")))
}
