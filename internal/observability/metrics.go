package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dailylesson"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	httpInflight  prometheus.Gauge
	resolutions   *prometheus.CounterVec
	synthesis     *prometheus.CounterVec
	synthLatency  prometheus.Histogram
	renderSubmits *prometheus.CounterVec
	renderPending prometheus.Gauge
	dnaLoads      *prometheus.CounterVec
}

func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "HTTP request latency.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "lesson", Name: "resolutions_total",
			Help: "Lesson resolutions by cache outcome (hit, miss, error).",
		}, []string{"outcome"}),
		synthesis: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "lesson", Name: "synthesis_total",
			Help: "Lesson syntheses by result.",
		}, []string{"result"}),
		synthLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "lesson", Name: "synthesis_duration_seconds",
			Help: "Time spent synthesizing and storing a variation.", Buckets: prometheus.DefBuckets,
		}),
		renderSubmits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "render", Name: "submissions_total",
			Help: "Render submissions by outcome (accepted, rejected, error, breaker_open).",
		}, []string{"outcome"}),
		renderPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "render", Name: "dispatches_inflight",
			Help: "Render dispatches not yet finished.",
		}),
		dnaLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "dna", Name: "loads_total",
			Help: "DNA lookups by result (found, missing, error).",
		}, []string{"result"}),
	}
	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpLatency, m.httpInflight,
		m.resolutions, m.synthesis, m.synthLatency,
		m.renderSubmits, m.renderPending, m.dnaLoads,
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.httpInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.httpInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Resolution(outcome string) {
	if m != nil {
		m.resolutions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Synthesis(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.synthesis.WithLabelValues(result).Inc()
	m.synthLatency.Observe(d.Seconds())
}

func (m *Metrics) RenderSubmit(outcome string) {
	if m != nil {
		m.renderSubmits.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) RenderPending(delta float64) {
	if m != nil {
		m.renderPending.Add(delta)
	}
}

func (m *Metrics) DNALoad(result string) {
	if m != nil {
		m.dnaLoads.WithLabelValues(result).Inc()
	}
}
