// Package metrics defines and registers all custom Prometheus metrics for
// the storefront API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// OTPRequestsTotal counts OTP challenges issued or rejected.
// Label:
//   - result: "issued", "throttled", or "error"
var OTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Total number of OTP challenge requests, by result.",
	},
	[]string{"result"},
)

// OTPVerificationsTotal counts OTP verification outcomes.
// Label:
//   - result: "ok", "invalid", "expired", "max_attempts", or "error"
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of OTP verification attempts, by result.",
	},
	[]string{"result"},
)

// LogoutsTotal counts logout requests, including those with dead tokens.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logout requests.",
	},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartOpsTotal counts cart operations by kind and outcome.
// Labels:
//   - op: "get", "add", "update", "remove", "clear"
//   - result: "ok" or "error"
var CartOpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_ops_total",
		Help:      "Total number of cart operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// CartOpDuration measures how long a cart operation takes end-to-end.
// Label:
//   - op: same values as CartOpsTotal
var CartOpDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cart_op_duration_seconds",
		Help:      "Duration of cart operations from request to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op"},
)
