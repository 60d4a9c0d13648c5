// Package metrics provides Prometheus metrics for the AI orchestration
// layer: call counts, latencies, quota rejections, and fallback usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aicore"

// LatencyBuckets covers the latency range of remote completion calls,
// from sub-second up to the 60s default deadline and beyond.
var LatencyBuckets = []float64{
	0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0, 15.0, 30.0, 45.0, 60.0, 90.0, 120.0,
}

var (
	// CallsTotal counts orchestrated AI calls by feature kind and outcome.
	// Outcome is "success" or the error kind.
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Total number of orchestrated AI calls",
		},
		[]string{"kind", "outcome"},
	)

	// CallDuration tracks end-to-end call latency per feature kind.
	CallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "AI call latency in seconds",
			Buckets:   LatencyBuckets,
		},
		[]string{"kind"},
	)

	// InFlight tracks calls currently holding a concurrency permit.
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inflight_calls",
			Help:      "AI calls currently holding a concurrency permit",
		},
	)

	// QuotaRejections counts calls refused by the daily quota.
	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Calls rejected by the per-caller daily quota",
		},
	)

	// FallbacksTotal counts heuristic substitutions by feature and the
	// error kind that triggered them.
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Rule-based fallback results served instead of model output",
		},
		[]string{"feature", "reason"},
	)

	// OutcomesDropped counts outcome records dropped because the
	// recorder queue was full.
	OutcomesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_dropped_total",
			Help:      "Call outcomes dropped by the non-blocking recorder",
		},
	)
)
