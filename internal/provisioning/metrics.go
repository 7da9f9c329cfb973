package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Pipeline metrics
	stateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inception",
			Subsystem: "pipeline",
			Name:      "state_transitions_total",
			Help:      "Total number of orchestrator state transitions by target state",
		},
		[]string{"cluster", "state"},
	)

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inception",
			Subsystem: "pipeline",
			Name:      "phase_duration_seconds",
			Help:      "Duration of pipeline phases in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
		},
		[]string{"cluster", "phase", "result"},
	)

	// Task metrics
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inception",
			Subsystem: "runner",
			Name:      "tasks_total",
			Help:      "Total number of remote tasks by batch and result",
		},
		[]string{"batch", "result"},
	)

	taskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inception",
			Subsystem: "runner",
			Name:      "task_duration_seconds",
			Help:      "Duration of remote tasks in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~27min
		},
		[]string{"batch"},
	)

	// Readiness metrics
	readinessProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inception",
			Subsystem: "readiness",
			Name:      "probes_total",
			Help:      "Total number of readiness probes by outcome",
		},
		[]string{"result"},
	)

	// Cluster metrics
	clusterNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "inception",
			Subsystem: "cluster",
			Name:      "nodes",
			Help:      "Number of created nodes by role",
		},
		[]string{"cluster", "role"},
	)

	// Cleanup metrics
	cleanupDeletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inception",
			Subsystem: "cleanup",
			Name:      "deletions_total",
			Help:      "Total number of teardown deletions by resource type and result",
		},
		[]string{"resource", "result"},
	)
)

func init() {
	prometheus.MustRegister(
		stateTransitionsTotal,
		phaseDuration,
		tasksTotal,
		taskDuration,
		readinessProbesTotal,
		clusterNodes,
		cleanupDeletionsTotal,
	)
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// recordStateTransitionMetric records a state transition.
func recordStateTransitionMetric(cluster string, state State) {
	stateTransitionsTotal.WithLabelValues(cluster, string(state)).Inc()
}

// recordPhaseMetric records the duration and outcome of a pipeline phase.
func recordPhaseMetric(cluster, phase string, err error, duration float64) {
	phaseDuration.WithLabelValues(cluster, phase, resultLabel(err)).Observe(duration)
}

// recordTaskMetric records a single task execution.
func recordTaskMetric(batch string, err error, duration float64) {
	tasksTotal.WithLabelValues(batch, resultLabel(err)).Inc()
	taskDuration.WithLabelValues(batch).Observe(duration)
}

// recordReadinessProbeMetric records a readiness probe outcome.
func recordReadinessProbeMetric(status ProbeStatus) {
	readinessProbesTotal.WithLabelValues(status.String()).Inc()
}

// recordNodeCountsMetric records the created nodes of a cluster per role.
func recordNodeCountsMetric(cluster string, nodes []*Node) {
	counts := map[Role]int{
		RoleGateway:      0,
		RoleConfigServer: 0,
		RoleController:   0,
		RoleWorker:       0,
	}
	for _, n := range nodes {
		counts[n.Role]++
	}
	for role, count := range counts {
		clusterNodes.WithLabelValues(cluster, string(role)).Set(float64(count))
	}
}

// recordCleanupMetric records a teardown deletion.
func recordCleanupMetric(resource string, err error) {
	cleanupDeletionsTotal.WithLabelValues(resource, resultLabel(err)).Inc()
}
