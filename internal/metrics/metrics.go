// Package metrics exposes prometheus instrumentation for the poll loop
// and notification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollCycles counts completed scans per outcome ("ok" or "error").
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mikrosense",
		Subsystem: "monitor",
		Name:      "poll_cycles_total",
		Help:      "Completed poll cycles by outcome.",
	}, []string{"outcome"})

	// Transitions counts presence transitions by kind.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mikrosense",
		Subsystem: "monitor",
		Name:      "transitions_total",
		Help:      "Presence transitions by kind.",
	}, []string{"kind"})

	// ActiveSessions tracks the current number of attached clients.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mikrosense",
		Subsystem: "monitor",
		Name:      "active_sessions",
		Help:      "Currently attached clients.",
	})

	// AlertsCreated counts alerts by category.
	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mikrosense",
		Subsystem: "alerts",
		Name:      "created_total",
		Help:      "Alerts created by category.",
	}, []string{"category"})

	// EmailFailures counts best-effort email dispatches that failed.
	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mikrosense",
		Subsystem: "alerts",
		Name:      "email_failures_total",
		Help:      "Alert emails that could not be delivered.",
	})
)
