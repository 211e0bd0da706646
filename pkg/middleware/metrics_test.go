package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectMetric returns the first sample of c whose labels include labels.
func collectMetric(c prometheus.Collector, labels map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}
		have := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			have[lp.GetName()] = lp.GetValue()
		}
		match := true
		for k, v := range labels {
			if have[k] != v {
				match = false
				break
			}
		}
		if match {
			return d
		}
	}
	return nil
}

func metricsRouter(service string, h http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/products/{id}", h)
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := metricsRouter("count-svc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "c"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/"+id, nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	m := collectMetric(httpRequestsTotal, map[string]string{
		"service": "count-svc", "method": "GET", "route": "/api/products/{id}", "status": "200",
	})
	require.NotNil(t, m)
	assert.Equal(t, float64(3), m.GetCounter().GetValue())
}

func TestPrometheusMetrics_RecordsStatusAndSize(t *testing.T) {
	r := metricsRouter("size-svc", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{}}`))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products/x", nil))

	total := collectMetric(httpRequestsTotal, map[string]string{"service": "size-svc", "status": "404"})
	require.NotNil(t, total)

	size := collectMetric(httpResponseSize, map[string]string{"service": "size-svc", "route": "/api/products/{id}"})
	require.NotNil(t, size)
	assert.Equal(t, uint64(1), size.GetHistogram().GetSampleCount())
	assert.Equal(t, float64(12), size.GetHistogram().GetSampleSum())

	dur := collectMetric(httpRequestDuration, map[string]string{"service": "size-svc", "method": "GET"})
	require.NotNil(t, dur)
	assert.Equal(t, uint64(1), dur.GetHistogram().GetSampleCount())
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	r := metricsRouter("unmatched-svc", func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	m := collectMetric(httpRequestsTotal, map[string]string{"service": "unmatched-svc", "route": unmatchedRoute})
	require.NotNil(t, m)
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	var during float64 = -1
	r := metricsRouter("inflight-svc", func(w http.ResponseWriter, r *http.Request) {
		if m := collectMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			during = m.GetGauge().GetValue()
		}
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/1", nil))

	assert.Equal(t, float64(1), during)
	after := collectMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"})
	require.NotNil(t, after)
	assert.Equal(t, float64(0), after.GetGauge().GetValue())
}
