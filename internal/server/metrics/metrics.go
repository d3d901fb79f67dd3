// Package metrics holds the Prometheus collectors shared by the HTTP and gRPC
// transports.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopkeeper"

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	rateLimitHits  *prometheus.CounterVec
	cartOperations *prometheus.CounterVec
	grpcRequests   *prometheus.CounterVec
}

// New registers the collectors on reg. Collectors already present on reg
// are reused, so several transports may share one registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{gatherer: reg}

	m.httpRequests = registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"method", "route", "status"}))

	m.httpLatency = registerHistogram(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of HTTP handlers",
		Buckets:   histogramBuckets,
	}, []string{"method", "route", "status"}))

	m.rateLimitHits = registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limit_hits_total",
		Help:      "Number of rate-limited responses",
	}, []string{"route"}))

	m.cartOperations = registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "operations_total",
		Help:      "Cart operations by kind and outcome",
	}, []string{"op", "result"}))

	m.grpcRequests = registerCounter(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grpc",
		Name:      "requests_total",
		Help:      "Count of processed gRPC calls",
	}, []string{"method", "code"}))

	return m
}

// NewWithRuntime returns Metrics on a fresh registry that also carries the Go
// runtime and process collectors.
func NewWithRuntime() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return New(reg)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.httpRequests.With(labels).Inc()
	m.httpLatency.With(labels).Observe(d.Seconds())
}

func (m *Metrics) RateLimited(route string) {
	m.rateLimitHits.WithLabelValues(route).Inc()
}

// CartOperation counts one cart call; op is add, remove or read.
func (m *Metrics) CartOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.cartOperations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ObserveGRPC(method, code string) {
	m.grpcRequests.WithLabelValues(method, code).Inc()
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return h
}
