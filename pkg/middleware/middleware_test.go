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
	"go.opentelemetry.io/otel/attribute"
)

func newRouter(mw ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, m := range mw {
		r.Use(m)
	}
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chi.URLParam(r, "id")))
	})
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	return r
}

// family gathers reg and returns the named metric family.
func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

// counter returns the value of the counter whose label values are values,
// in label name order.
func counter(f *dto.MetricFamily, values ...string) float64 {
	for _, m := range f.GetMetric() {
		labels := m.GetLabel()
		if len(labels) != len(values) {
			continue
		}
		match := true
		for i, l := range labels {
			if l.GetValue() != values[i] {
				match = false
				break
			}
		}
		if match {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPrometheus_LabelsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg))
	r := newRouter(m.Handler)

	serve(r, "/items/1")
	serve(r, "/items/2")
	serve(r, "/fail")
	serve(r, "/missing")

	requests := family(t, reg, "eghact_devtools_requests_total")
	assert.Equal(t, 2.0, counter(requests, "/items/{id}", "2xx"))
	assert.Equal(t, 1.0, counter(requests, "/fail", "5xx"))
	assert.Equal(t, 1.0, counter(requests, "unmatched", "4xx"))
	assert.Len(t, family(t, reg, "eghact_devtools_request_duration_seconds").GetMetric(), 3)
}

func TestPrometheus_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewMetrics(WithRegistry(reg))
	b := NewMetrics(WithRegistry(reg))

	a.FeedConnected()
	b.FeedConnected()
	b.FeedDisconnected()

	assert.Same(t, a.requests, b.requests)
	clients := family(t, reg, "eghact_devtools_feed_clients")
	assert.Equal(t, 1.0, clients.GetMetric()[0].GetGauge().GetValue())
}

func TestPrometheus_Options(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRouter(Prometheus(
		WithRegistry(reg),
		WithNamespace("tool"),
		WithSubsystem("http"),
		WithConstLabels(prometheus.Labels{"instance": "a"}),
		WithBuckets([]float64{0.1, 1}),
	))
	serve(r, "/items/1")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "tool_http_requests_total")
	assert.Contains(t, names, "tool_http_request_duration_seconds")
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 101: "1xx", 404: "4xx", 503: "5xx"}
	for status, want := range tests {
		assert.Equal(t, want, statusClass(status))
	}
}

func TestOpenTelemetry_StoresSpan(t *testing.T) {
	var sawSpan bool
	r := chi.NewRouter()
	r.Use(OpenTelemetry(
		WithTracerName("test"),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))
	r.Get("/tree", func(w http.ResponseWriter, r *http.Request) {
		sawSpan = SpanFromContext(r.Context()) != nil
	})

	rec := serve(r, "/tree")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sawSpan, "handler should see the request span")
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	var sawSpan bool
	r := chi.NewRouter()
	r.Use(OpenTelemetry(WithRequestFilter(func(r *http.Request) bool {
		return r.URL.Path != "/metrics"
	})))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		sawSpan = SpanFromContext(r.Context()) != nil
	})

	serve(r, "/metrics")
	assert.False(t, sawSpan)
}

func TestOpenTelemetry_ErrorResponse(t *testing.T) {
	r := newRouter(OpenTelemetry())
	rec := serve(r, "/fail")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Nil(t, SpanFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
