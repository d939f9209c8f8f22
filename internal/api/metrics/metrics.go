// Package metrics defines the portal's Prometheus metrics. It is the single
// source of truth for metric names, labels and help strings.
//
// Metrics are registered with the default registry on package init and are
// served by the /metrics endpoint.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portal"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login submissions.
// Label:
//   - result: "success", "invalid_credentials", "error" or "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// HydrationsTotal counts session hydrations.
// Label:
//   - outcome: "anonymous", "restored", "rejected" or "store_error"
var HydrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_hydrations_total",
		Help:      "Total number of session hydrations, by outcome.",
	},
	[]string{"outcome"},
)

// GuardDecisionsTotal counts route guard verdicts.
// Labels:
//   - guard: "auth", "admin" or "service_achat"
//   - decision: "allow", "redirect" or "loading"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions.",
	},
	[]string{"guard", "decision"},
)

// LogoutsTotal counts explicit logouts.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts.",
	},
)

// ActiveSessions tracks sessions held in memory.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Number of sessions currently held in memory.",
	},
)

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts calls to the backend API.
// Labels:
//   - method, route: request method and path template (e.g. "/orders/{id}")
//   - status: response status code, "0" when no response arrived
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of backend API calls.",
	},
	[]string{"method", "route", "status"},
)

// BackendRequestDuration measures backend round trips.
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of backend API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ObserveBackend records one backend round trip. Its signature matches
// backend.Observer.
func ObserveBackend(method, route string, status int, elapsed time.Duration) {
	BackendRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	BackendRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveHydration records a hydration outcome.
func ObserveHydration(outcome string) {
	HydrationsTotal.WithLabelValues(outcome).Inc()
}
