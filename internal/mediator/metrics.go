package mediator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeFailure  = "failure"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

var (
	requestsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "activityhub",
		Subsystem: "mediator",
		Name:      "requests_total",
		Help:      "Number of dispatched requests grouped by request name and outcome.",
	}, []string{"request", "outcome"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "activityhub",
		Subsystem: "mediator",
		Name:      "request_duration_seconds",
		Help:      "Handler latency per request name.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"request"})
)

func init() {
	prometheus.MustRegister(requestsCounter, requestDuration)
}

func observe(name, outcome string, start time.Time) {
	requestsCounter.WithLabelValues(name, outcome).Inc()
	requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
