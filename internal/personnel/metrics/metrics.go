// Package metrics holds the Prometheus collectors of the personnel service.
// Every collector registers with the default registry on import.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pnpstation"

// ── Authentication ───────────────────────────────────────────────────────────

// LoginsTotal counts password logins.
// Label:
//   - outcome: "authenticated", "otp_required", "invalid_credentials",
//     "account_inactive" or "dispatch_failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Total number of password login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// OTPIssuedTotal counts one time codes written to the store.
var OTPIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "otp",
		Name:      "issued_total",
		Help:      "Total number of one time codes issued.",
	},
)

// OTPVerificationsTotal counts code submissions.
// Label:
//   - outcome: "accepted", "rejected" or "locked_out"
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "otp",
		Name:      "verifications_total",
		Help:      "Total number of one time code verifications, by outcome.",
	},
	[]string{"outcome"},
)

// OTPDispatchTotal counts delivery attempts per channel.
// Labels:
//   - channel: "email_api", "smtp" or "degraded"
//   - outcome: "sent" or "failed"
var OTPDispatchTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "otp",
		Name:      "dispatch_total",
		Help:      "Total number of one time code delivery attempts, by channel and outcome.",
	},
	[]string{"channel", "outcome"},
)

// OTPDispatchDuration measures each channel attempt.
var OTPDispatchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "otp",
		Name:      "dispatch_duration_seconds",
		Help:      "Duration of a single delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"channel"},
)

// ── Housekeeping ─────────────────────────────────────────────────────────────

// HousekeepingDeletedTotal counts rows and entries removed by the sweep.
// Label:
//   - kind: "otp_codes" or "sessions"
var HousekeepingDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "housekeeping",
		Name:      "deleted_total",
		Help:      "Total number of expired records removed by housekeeping.",
	},
	[]string{"kind"},
)

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
