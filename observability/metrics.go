package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded by RecordOutcome.
const (
	OutcomeSuccess        = "success"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
)

// Metrics holds Prometheus instruments for the relay.
type Metrics struct {
	InvocationsTotal    *prometheus.CounterVec
	TargetOutcomesTotal *prometheus.CounterVec
	TargetLatency       prometheus.Histogram
	FanoutTargets       prometheus.Histogram
}

// NewMetrics creates and registers relay instruments on reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InvocationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanrelay_invocations_total",
			Help: "Inbound webhooks handled, by method and result.",
		}, []string{"method", "result"}),
		TargetOutcomesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fanrelay_target_outcomes_total",
			Help: "Per-target delivery outcomes.",
		}, []string{"outcome"}),
		TargetLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fanrelay_target_latency_seconds",
			Help:    "Latency of individual target calls.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		FanoutTargets: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fanrelay_fanout_targets",
			Help:    "Number of targets per dispatched invocation.",
			Buckets: []float64{1, 2, 3, 5, 8, 13},
		}),
	}
}

// RecordInvocation counts one inbound webhook.
func (m *Metrics) RecordInvocation(method, result string) {
	m.InvocationsTotal.WithLabelValues(method, result).Inc()
}

// RecordOutcome records a single target call.
func (m *Metrics) RecordOutcome(outcome string, latencySeconds float64) {
	m.TargetOutcomesTotal.WithLabelValues(outcome).Inc()
	m.TargetLatency.Observe(latencySeconds)
}
