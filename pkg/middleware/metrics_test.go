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

// findMetric collects from c and returns the first series whose labels are a
// superset of want, or nil.
func findMetric(c prometheus.Collector, want map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 64)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}

		got := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}

		matched := true
		for k, v := range want {
			if got[k] != v {
				matched = false
				break
			}
		}
		if matched {
			return d
		}
	}
	return nil
}

// metricsRouter mounts the middleware on a chi router so the route pattern is
// available as the path label.
func metricsRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/books/{id}", handler)
	return r
}

func TestPrometheusMetrics_CountsRequests(t *testing.T) {
	r := metricsRouter("count-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/"+id, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	m := findMetric(requestsTotal, map[string]string{
		"service": "count-svc", "method": "GET", "path": "/books/{id}", "status": "200",
	})
	require.NotNil(t, m, "expected a counter series for GET /books/{id} 200")
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_PathLabelIsRoutePattern(t *testing.T) {
	r := metricsRouter("pattern-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/def", nil))

	// Distinct ids collapse into one series under the route pattern.
	m := findMetric(requestsTotal, map[string]string{"service": "pattern-svc", "path": "/books/{id}"})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(2))

	assert.Nil(t, findMetric(requestsTotal, map[string]string{"service": "pattern-svc", "path": "/books/abc"}))
}

func TestPrometheusMetrics_ObservesDuration(t *testing.T) {
	r := metricsRouter("hist-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/books/1", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	m := findMetric(requestDuration, map[string]string{
		"service": "hist-svc", "method": "GET", "path": "/books/{id}", "status": "201",
	})
	require.NotNil(t, m, "expected a histogram series")
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_InFlightGauge(t *testing.T) {
	seen := float64(-1)
	r := metricsRouter("inflight-svc", func(w http.ResponseWriter, _ *http.Request) {
		if m := findMetric(requestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			seen = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/1", nil))

	assert.GreaterOrEqual(t, seen, float64(1), "gauge should be up while the handler runs")

	// And back down once the request has finished.
	m := findMetric(requestsInFlight, map[string]string{"service": "inflight-svc"})
	require.NotNil(t, m)
	assert.Equal(t, float64(0), m.GetGauge().GetValue())
}

func TestPrometheusMetrics_RecordsErrorStatus(t *testing.T) {
	r := metricsRouter("error-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/1", nil))

	m := findMetric(requestsTotal, map[string]string{"service": "error-svc", "status": "500"})
	require.NotNil(t, m, "expected a series labelled with status 500")
}

func TestPrometheusMetrics_DefaultsToStatus200(t *testing.T) {
	r := metricsRouter("implicit-svc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok")) // no explicit WriteHeader
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/books/1", nil))

	m := findMetric(requestsTotal, map[string]string{"service": "implicit-svc", "status": "200"})
	require.NotNil(t, m, "implicit writes should count as 200")
}

func TestStatusRecorder_CapturesCode(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	rec.WriteHeader(http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rec.status)
}
