// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestCount counts HTTP requests by status code, method and route.
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "budgetbuddy",
			Name:      "requests_total",
			Help:      "How many HTTP requests processed, partitioned by status code, method and route.",
		},
		[]string{"code", "method", "route"},
	)

	// RequestDuration observes HTTP request latencies.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "budgetbuddy",
			Name:      "request_duration_seconds",
			Help:      "The HTTP request latencies in seconds.",
		},
		[]string{"code", "method", "route"},
	)

	// PropagationWalks counts spend propagation walks by outcome
	// (applied, noop, missing_node, cycle, error).
	PropagationWalks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "budgetbuddy",
			Name:      "propagation_walks_total",
			Help:      "Spend propagation walks, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	// PropagationDepth observes how many category nodes a walk touched.
	PropagationDepth = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "budgetbuddy",
			Name:      "propagation_depth",
			Help:      "Number of category nodes incremented per propagation walk.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
	)

	// BudgetArchives counts archive-and-reset runs by trigger (manual, rollover).
	BudgetArchives = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "budgetbuddy",
			Name:      "budget_archives_total",
			Help:      "Budget archive snapshots written, partitioned by trigger.",
		},
		[]string{"trigger"},
	)
)

var collectors = []prometheus.Collector{
	RequestCount,
	RequestDuration,
	PropagationWalks,
	PropagationDepth,
	BudgetArchives,
}

// Register registers all collectors with reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("could not register %v with Prometheus: %w", c, err)
		}
	}
	return nil
}

// Unregister removes all collectors from reg.
func Unregister(reg prometheus.Registerer) bool {
	ok := true
	for _, c := range collectors {
		if !reg.Unregister(c) {
			ok = false
		}
	}
	return ok
}
