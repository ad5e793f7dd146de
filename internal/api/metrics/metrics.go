// Package metrics defines and registers all custom Prometheus metrics for the
// Housify agent platform. It is the single source of truth for metric names,
// labels, and help strings; metrics are registered with the default registry
// at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "housify"

// RegistrationsTotal counts agent applications.
// Label:
//   - result: "success" or "failure"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_registrations_total",
		Help:      "Total number of agent registration attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts authentication attempts.
// Labels:
//   - role: the resolved principal role, or "unknown" on failure
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by role and result.",
	},
	[]string{"role", "result"},
)

// StatusTransitionsTotal counts applied agent status transitions.
// Label:
//   - status: the new status ("approved", "rejected", "suspended", ...)
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_status_transitions_total",
		Help:      "Total number of agent status transitions applied, by new status.",
	},
	[]string{"status"},
)
