// Package metrics defines the Prometheus metrics exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Broadcast metrics
	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grocerychat_broadcasts_total",
			Help: "Total room broadcasts",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "grocerychat_connections_active",
			Help: "Currently subscribed WebSocket connections",
		},
	)

	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerychat_pipeline_runs_total",
			Help: "Total pipeline invocations by branch",
		},
		[]string{"branch"},
	)

	MessagesPosted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "grocerychat_messages_posted_total",
			Help: "Total messages posted over REST",
		},
	)

	// Generation metrics
	LLMCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grocerychat_llm_calls_total",
			Help: "Total generation calls by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grocerychat_llm_call_duration_seconds",
			Help:    "Generation call duration",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"backend"},
	)
)
