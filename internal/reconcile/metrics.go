package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxfleet",
			Subsystem: "reconcile",
			Name:      "runs_total",
			Help:      "Total number of reconcile runs by operation and result",
		},
		[]string{"fleet", "operation", "result"},
	)

	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "proxfleet",
			Subsystem: "reconcile",
			Name:      "run_duration_seconds",
			Help:      "Duration of reconcile runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~7min
		},
		[]string{"fleet", "operation"},
	)

	nodeOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "proxfleet",
			Subsystem: "node",
			Name:      "operations_total",
			Help:      "Total number of node operations by type and result",
		},
		[]string{"fleet", "operation", "result"},
	)

	nodesDesired = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "proxfleet",
			Subsystem: "fleet",
			Name:      "nodes_desired",
			Help:      "Desired number of nodes",
		},
		[]string{"fleet"},
	)

	nodesConverged = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "proxfleet",
			Subsystem: "fleet",
			Name:      "nodes_converged",
			Help:      "Number of nodes matching their desired state",
		},
		[]string{"fleet"},
	)
)

func init() {
	prometheus.MustRegister(
		runsTotal,
		runDuration,
		nodeOperationsTotal,
		nodesDesired,
		nodesConverged,
	)
}

func recordRunMetric(fleet, operation, result string, duration float64) {
	runsTotal.WithLabelValues(fleet, operation, result).Inc()
	runDuration.WithLabelValues(fleet, operation).Observe(duration)
}

func recordNodeOperationMetric(fleet, operation, result string) {
	nodeOperationsTotal.WithLabelValues(fleet, operation, result).Inc()
}

func recordNodeCountsMetric(fleet string, desired, converged int) {
	nodesDesired.WithLabelValues(fleet).Set(float64(desired))
	nodesConverged.WithLabelValues(fleet).Set(float64(converged))
}

// Metrics helper methods that check enableMetrics before recording.

func (r *Reconciler) recordRun(operation, result string, duration float64) {
	if r.enableMetrics {
		recordRunMetric(r.cfg.Fleet, operation, result, duration)
	}
}

func (r *Reconciler) recordNodeOperation(operation, result string) {
	if r.enableMetrics {
		recordNodeOperationMetric(r.cfg.Fleet, operation, result)
	}
}

func (r *Reconciler) recordNodeCounts(desired, converged int) {
	if r.enableMetrics {
		recordNodeCountsMetric(r.cfg.Fleet, desired, converged)
	}
}
