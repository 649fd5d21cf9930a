package tools

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ventia/ventia-backend/internal/entity"
)

// Telemetry is an observability side channel only: it records around the
// call and never alters the returned payload.
var (
	toolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tool_calls_total",
			Help: "Total number of tool invocations by outcome status",
		},
		[]string{"tool", "status"},
	)

	toolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tool_call_duration_ms",
			Help:    "Duration of tool invocations in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"tool"},
	)
)

func observe(tool string, status entity.OutcomeStatus, start time.Time) {
	toolCalls.WithLabelValues(tool, string(status)).Inc()
	toolDuration.WithLabelValues(tool).Observe(float64(time.Since(start).Milliseconds()))
}
