// Package metrics provides Prometheus metrics for the chatprd service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and turns
// every Record* call into a no-op, so core packages can be tested without a
// registry.
type Metrics struct {
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec

	LLMCallsTotal   *prometheus.CounterVec
	LLMCallSeconds  *prometheus.HistogramVec
	StorageOpsTotal *prometheus.CounterVec

	OptimizationsTotal prometheus.Counter
	TokenSavings       prometheus.Histogram
}

// New creates and registers all collectors against reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate-registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatprd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		HTTPRequestSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatprd_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		LLMCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatprd_llm_calls_total",
				Help: "Total number of chat-completion calls",
			},
			[]string{"op", "status"},
		),
		LLMCallSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chatprd_llm_call_duration_seconds",
				Help:    "Duration of chat-completion calls in seconds",
				Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"op"},
		),
		StorageOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatprd_storage_ops_total",
				Help: "Total number of blob store operations",
			},
			[]string{"op", "status"},
		),
		OptimizationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chatprd_optimizations_total",
				Help: "Total number of completed conversation optimizations",
			},
		),
		TokenSavings: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatprd_token_savings",
				Help:    "Tokens saved per conversation optimization",
				Buckets: []float64{0, 100, 500, 1000, 2500, 5000, 10000, 25000, 50000},
			},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
	m.HTTPRequestSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) RecordLLMCall(op, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.LLMCallsTotal.WithLabelValues(op, status).Inc()
	m.LLMCallSeconds.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *Metrics) RecordStorageOp(op, status string) {
	if m == nil {
		return
	}
	m.StorageOpsTotal.WithLabelValues(op, status).Inc()
}

func (m *Metrics) RecordOptimization(tokenSavings int) {
	if m == nil {
		return
	}
	m.OptimizationsTotal.Inc()
	m.TokenSavings.Observe(float64(tokenSavings))
}
