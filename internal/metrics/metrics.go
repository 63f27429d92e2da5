// Package metrics exposes Prometheus instruments for extraction, model calls
// and the relay. A nil *Metrics is a no-op so packages can take one optionally.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docexplain"

type Metrics struct {
	registry *prometheus.Registry

	extractions    *prometheus.CounterVec
	extractSeconds *prometheus.HistogramVec
	llmRequests    *prometheus.CounterVec
	llmSeconds     *prometheus.HistogramVec
	relayResponses *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	sessions       prometheus.Gauge
}

// New registers every instrument on a fresh registry, with Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "extractions_total",
			Help: "Document extractions by kind, method and outcome.",
		}, []string{"kind", "method", "outcome"}),
		extractSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "extraction_duration_seconds",
			Help:    "Time spent extracting text.",
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 180},
		}, []string{"kind"}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "llm_requests_total",
			Help: "Chat completion attempts by model and outcome.",
		}, []string{"model", "outcome"}),
		llmSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "llm_request_duration_seconds",
			Help:    "Chat completion latency.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"model"}),
		relayResponses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "relay_responses_total",
			Help: "Responses written by the explain proxy, by status code.",
		}, []string{"code"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
		sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "sessions_active",
			Help: "Sessions currently held in memory.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveExtraction(kind, method string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(kind, method, outcome(err)).Inc()
	m.extractSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) ObserveLLM(model string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(model, outcome(err)).Inc()
	m.llmSeconds.WithLabelValues(model).Observe(d.Seconds())
}

func (m *Metrics) ObserveRelay(code int) {
	if m == nil {
		return
	}
	m.relayResponses.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveHTTP(route string, code int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessions.Set(float64(n))
}
