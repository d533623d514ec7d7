package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConflictChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflict_checks_total",
			Help: "Total number of conflict checks performed (count)",
		},
		[]string{"result"},
	)

	ConflictCheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conflict_check_duration_ms",
			Help:    "Duration of a conflict check over one queue in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"result"},
	)

	ConflictCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conflict_cache_requests_total",
			Help: "Conflict badge cache lookups by outcome (count)",
		},
		[]string{"outcome"},
	)

	RuleMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "condition_rule_mutations_total",
			Help: "Total number of condition rule mutations (count)",
		},
		[]string{"action"},
	)

	TemplateMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_template_mutations_total",
			Help: "Total number of message template mutations (count)",
		},
		[]string{"action"},
	)

	ActiveRules = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "condition_active_rules",
			Help: "Number of condition rules in the store (count)",
		},
	)

	ChangeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "change_events_total",
			Help: "Change events published to the broker (count)",
		},
		[]string{"status"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Requests through the rate limiter by outcome (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failed requests through circuit breaker (count)",
		},
		[]string{"name"},
	)
)

func RegisterConditionMetrics() {
	prometheus.MustRegister(
		ConflictChecksTotal,
		ConflictCheckDuration,
		ConflictCacheRequestsTotal,
		RuleMutationsTotal,
		TemplateMutationsTotal,
		ActiveRules,
		ChangeEventsTotal,
		RateLimitRequestsTotal,
	)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerFailures,
	)
}

func ObserveConflictCheckDuration(d time.Duration, result string) {
	ConflictCheckDuration.WithLabelValues(result).Observe(float64(d.Milliseconds()))
}

func SetActiveRules(count int) {
	ActiveRules.Set(float64(count))
}
