package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(handlerErrorsTotal, handlerLatencyMs, promptsTotal)
}

var (
	handlerErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_handler_errors_total",
			Help: "Handler failures that aborted an event chain, by event type.",
		},
		[]string{"event"},
	)

	handlerLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_event_latency_ms",
			Help:    "Time to run the full handler chain of an event, in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"event"},
	)

	promptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompts_total",
			Help: "Prompt lifecycle transitions by kind and outcome.",
		},
		[]string{"kind", "outcome"}, // 'requested', 'completed', 'superseded', 'expired', 'cancelled'
	)
)

// eventFamily collapses per-name event types so label cardinality stays bounded.
func eventFamily(event string) string {
	for _, p := range []string{"command.", "prompt.request.", "prompt.complete."} {
		if strings.HasPrefix(event, p) {
			return p + "*"
		}
	}
	return event
}

func IncHandlerError(event string) {
	handlerErrorsTotal.WithLabelValues(eventFamily(event)).Inc()
}

func ObserveEventLatency(event string, ms float64) {
	handlerLatencyMs.WithLabelValues(eventFamily(event)).Observe(ms)
}

func IncPrompt(kind, outcome string) {
	promptsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}
