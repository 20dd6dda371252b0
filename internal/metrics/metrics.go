package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solomanager_api_requests_total",
			Help: "Total number of API requests issued",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solomanager_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solomanager_member_searches_total",
			Help: "Total number of member search requests issued",
		},
	)

	StaleResponsesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solomanager_stale_responses_dropped_total",
			Help: "List responses discarded because their input was superseded",
		},
	)

	MemberMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solomanager_member_mutations_total",
			Help: "Total number of member and subscription mutations",
		},
		[]string{"action"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solomanager_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"status"},
	)
)

func RecordAPIRequest(method, path, status string, duration float64) {
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordSearch() {
	SearchesTotal.Inc()
}

func RecordStaleResponse() {
	StaleResponsesDropped.Inc()
}

func RecordMemberMutation(action string) {
	MemberMutationsTotal.WithLabelValues(action).Inc()
}

func RecordLogin(status string) {
	LoginsTotal.WithLabelValues(status).Inc()
}
