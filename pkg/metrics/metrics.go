package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store metrics
	NodesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warren_nodes_total",
			Help: "Total number of registered nodes by status",
		},
		[]string{"status"},
	)

	DeploymentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "warren_deployments_total",
			Help: "Total number of deployments",
		},
	)

	PodsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "warren_pods_total",
			Help: "Total number of pods by status",
		},
		[]string{"status"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warren_api_requests_total",
			Help: "Total number of API requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warren_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Scheduler metrics
	SchedulingLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warren_scheduling_latency_seconds",
			Help:    "Time taken to compute bindings for one scheduler invocation",
			Buckets: prometheus.DefBuckets,
		},
	)

	PodsScheduledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_pods_scheduled_total",
			Help: "Total number of pods bound to a node",
		},
	)

	PodsUnschedulableTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_pods_unschedulable_total",
			Help: "Total number of pods left pending for lack of capacity, counted once per scheduler pass",
		},
	)

	PodsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_pods_failed_total",
			Help: "Total number of pods reported failed by an agent",
		},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warren_reconciliation_duration_seconds",
			Help:    "Time taken for a reconciliation tick in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_reconciliation_cycles_total",
			Help: "Total number of reconciliation ticks completed",
		},
	)

	PodsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_pods_created_total",
			Help: "Total number of pods created by the reconciler to satisfy scale-up",
		},
	)

	PodsTerminatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_pods_terminated_total",
			Help: "Total number of pods marked terminating by the reconciler for scale-down",
		},
	)

	// Node manager metrics
	NodeHeartbeatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warren_node_heartbeats_total",
			Help: "Total number of heartbeats processed by outcome",
		},
		[]string{"outcome"},
	)

	NodeEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_node_evictions_total",
			Help: "Total number of nodes evicted for missed heartbeats",
		},
	)

	// Agent metrics
	AgentContainerOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warren_agent_container_ops_total",
			Help: "Total number of runtime operations performed by the agent, by op and outcome",
		},
		[]string{"op", "outcome"},
	)

	AgentHeartbeatDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warren_agent_heartbeat_duration_seconds",
			Help:    "Time taken for one agent heartbeat round trip",
			Buckets: prometheus.DefBuckets,
		},
	)

	AgentReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warren_agent_reconcile_duration_seconds",
			Help:    "Time taken for one agent reconcile-against-runtime pass",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(NodesTotal)
	prometheus.MustRegister(DeploymentsTotal)
	prometheus.MustRegister(PodsTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(SchedulingLatency)
	prometheus.MustRegister(PodsScheduledTotal)
	prometheus.MustRegister(PodsUnschedulableTotal)
	prometheus.MustRegister(PodsFailedTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(PodsCreatedTotal)
	prometheus.MustRegister(PodsTerminatedTotal)
	prometheus.MustRegister(NodeHeartbeatsTotal)
	prometheus.MustRegister(NodeEvictionsTotal)
	prometheus.MustRegister(AgentContainerOpsTotal)
	prometheus.MustRegister(AgentHeartbeatDuration)
	prometheus.MustRegister(AgentReconcileDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
