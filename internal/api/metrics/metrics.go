// Package metrics defines and registers all custom Prometheus metrics for
// the healthcare portal session gateway. It is the single source of truth
// for metric names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init;
// the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "healthcare_portal"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", or "network_error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "pending", "redirect", "unverified", "inactive", "unauthorized", "allow"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of access policy decisions rendered by the route guard.",
	},
	[]string{"decision"},
)

// BootstrapsTotal counts session bootstrap outcomes at startup.
// Label:
//   - outcome: "restored" or "anonymous"
var BootstrapsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_bootstraps_total",
		Help:      "Total number of session bootstraps, by outcome.",
	},
	[]string{"outcome"},
)

// ProfileRefreshesTotal counts profile refresh outcomes.
// Label:
//   - result: "success", "unauthorized", "network_error", or "superseded"
var ProfileRefreshesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_refreshes_total",
		Help:      "Total number of profile refreshes, by result.",
	},
	[]string{"result"},
)
