package worker

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeHandled = "handled"
	outcomeFailed  = "failed"
	outcomeUnknown = "unknown"
)

var eventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "activityhub",
	Subsystem: "worker",
	Name:      "events_total",
	Help:      "Number of stream events processed grouped by type and outcome.",
}, []string{"type", "outcome"})

func init() {
	prometheus.MustRegister(eventsCounter)
}

func recordEvent(eventType, outcome string) {
	eventsCounter.WithLabelValues(eventType, outcome).Inc()
}
