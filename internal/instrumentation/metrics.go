package instrumentation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the MCP service.
type Metrics struct {
	// Upstream (DeBank) calls
	UpstreamRequests  *prometheus.CounterVec
	UpstreamFailures  *prometheus.CounterVec
	UpstreamLatencyMs *prometheus.HistogramVec

	// Tool invocations
	ToolCalls     *prometheus.CounterVec
	ToolLatencyMs *prometheus.HistogramVec

	// Transport
	SSESessions prometheus.Gauge
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demcp_upstream_requests_total",
			Help: "Total number of upstream API requests by method and outcome",
		}, []string{"method", "outcome"}),

		// Failure kinds never reach the tool result; this is where they surface.
		UpstreamFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demcp_upstream_failures_total",
			Help: "Total number of failed upstream API requests by failure kind",
		}, []string{"kind"}),

		UpstreamLatencyMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "demcp_upstream_latency_ms",
			Help:    "Upstream API request latency in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"method"}),

		ToolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demcp_tool_calls_total",
			Help: "Total number of MCP tool invocations by tool and outcome",
		}, []string{"tool", "outcome"}),

		ToolLatencyMs: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "demcp_tool_latency_ms",
			Help:    "MCP tool invocation latency in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}, []string{"tool"}),

		SSESessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "demcp_sse_sessions",
			Help: "Number of open SSE sessions",
		}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "demcp_errors_total",
			Help: "Total number of errors by component and type",
		}, []string{"component", "error_type"}),
	}
}

// RecordUpstream records the outcome and latency of one upstream request.
// An empty kind means the request succeeded.
func (m *Metrics) RecordUpstream(method string, kind string, latencyMs float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if kind != "" {
		outcome = "failure"
		m.UpstreamFailures.WithLabelValues(kind).Inc()
	}
	m.UpstreamRequests.WithLabelValues(method, outcome).Inc()
	m.UpstreamLatencyMs.WithLabelValues(method).Observe(latencyMs)
}

// RecordToolCall records one tool invocation.
func (m *Metrics) RecordToolCall(tool string, outcome string, latencyMs float64) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
	m.ToolLatencyMs.WithLabelValues(tool).Observe(latencyMs)
}

// SessionOpened increments the open session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.SSESessions.Inc()
}

// SessionClosed decrements the open session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.SSESessions.Dec()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
