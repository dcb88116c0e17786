/*
Package metrics provides Prometheus metrics collection and exposition.

Metrics are defined and registered at package init with the Prometheus
client library and served over /metrics by promhttp.Handler().

# Metrics catalog

Store snapshots (refreshed every 15s by Collector):

  - warren_nodes_total{status}: registered nodes by status
  - warren_deployments_total: total deployments
  - warren_pods_total{status}: pods by status

API:

  - warren_api_requests_total{method,path,status}: request counts
  - warren_api_request_duration_seconds{method,path}: request latency

Scheduler:

  - warren_scheduling_latency_seconds: time per scheduling pass
  - warren_pods_scheduled_total: pods successfully bound
  - warren_pods_unschedulable_total: pods left pending, counted once per scheduling pass
  - warren_pods_failed_total: pods reported failed by an agent

Reconciler:

  - warren_reconciliation_duration_seconds: time per reconciliation tick
  - warren_reconciliation_cycles_total: reconciliation ticks completed
  - warren_pods_created_total: pods created to satisfy scale-up
  - warren_pods_terminated_total: pods marked terminating for scale-down

Node manager:

  - warren_node_heartbeats_total{outcome}: heartbeats processed
  - warren_node_evictions_total: nodes evicted for missed heartbeats

Agent:

  - warren_agent_container_ops_total{op,outcome}: runtime operations performed
  - warren_agent_heartbeat_duration_seconds: heartbeat round trip time
  - warren_agent_reconcile_duration_seconds: reconcile-against-runtime pass time

# Timer helper

	timer := metrics.NewTimer()
	// ... perform operation ...
	timer.ObserveDuration(metrics.ReconciliationDuration)
	timer.ObserveDurationVec(metrics.APIRequestDuration, method, path)
*/
package metrics
