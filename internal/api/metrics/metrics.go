// Package metrics defines and registers all custom Prometheus metrics for the
// admin dashboard. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts access-token refreshes.
// Label:
//   - result: "success", "failure", or "reused" (another request already refreshed)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access-token refresh outcomes.",
	},
	[]string{"result"},
)

// TokenRefreshCoalescedTotal counts requests that waited on a refresh started
// by another request instead of issuing their own.
var TokenRefreshCoalescedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_coalesced_total",
		Help:      "Total number of refresh calls served by an in-flight refresh.",
	},
)

// SessionsExpiredTotal counts sessions ended because credentials could not be renewed.
var SessionsExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_expired_total",
		Help:      "Total number of sessions expired by the credential pipeline.",
	},
)

// ActiveSessions tracks the browser sessions currently held in memory.
var ActiveSessions = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Current number of browser sessions held by the registry.",
	},
)

// ── Gate metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts access gate verdicts.
// Labels:
//   - mode: "all" or "any"
//   - verdict: "render", "fallback", or "nothing"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions, by mode and verdict.",
	},
	[]string{"mode", "verdict"},
)

// ── Upstream metrics ──────────────────────────────────────────────────────────

// UpstreamRequestDuration measures calls to the admin API, replays included.
// Labels:
//   - method: HTTP method
//   - status: HTTP status code, or "error" on transport failure
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of requests to the admin API.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "status"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts audit events discarded because a worker channel was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full queue.",
	},
)

// AuditEventsErrorsTotal counts audit events that failed to persist.
var AuditEventsErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of audit events that failed processing.",
	},
)
