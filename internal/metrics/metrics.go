package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cryant"

const OutcomeOK = "ok"

var (
	ClientRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Outbound API requests by service, operation and outcome.",
	}, []string{"service", "op", "outcome"})

	ClientDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Outbound API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "op"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Inbound HTTP requests by method and status code.",
	}, []string{"method", "status"})
)

// ObserveClient records one finished outbound call.
func ObserveClient(service, op, outcome string, elapsed time.Duration) {
	ClientRequests.WithLabelValues(service, op, outcome).Inc()
	ClientDuration.WithLabelValues(service, op).Observe(elapsed.Seconds())
}

func ObserveHTTP(method string, status int) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
