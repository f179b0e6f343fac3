package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ignite/pkg/metrics"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	h := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/brew", "418"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/brew", "418")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.RequestInFlight))
}

func TestHandler_ExposesServerMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "ignite_server_listening")
	assert.Contains(t, body, "ignite_server_bind_failures_total")
}
