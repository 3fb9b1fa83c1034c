package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgate_queries_total",
			Help: "Total number of statements routed through the gateway",
		},
		[]string{"profile", "outcome"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlgate_query_duration_seconds",
			Help:    "Backend statement execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"profile"},
	)

	sessionsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgate_sessions_discarded_total",
			Help: "Sessions torn down after failing a post-error health probe",
		},
		[]string{"profile"},
	)
)

// Query outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeDenied  = "denied"
)

// ObserveQuery records one routed statement
func ObserveQuery(profile, outcome string, seconds float64) {
	queriesTotal.WithLabelValues(profile, outcome).Inc()
	if outcome != OutcomeDenied {
		queryDuration.WithLabelValues(profile).Observe(seconds)
	}
}

// ObserveSessionDiscard records a poisoned-session teardown
func ObserveSessionDiscard(profile string) {
	sessionsDiscarded.WithLabelValues(profile).Inc()
}
