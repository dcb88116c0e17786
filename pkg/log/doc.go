/*
Package log provides structured logging built on zerolog.

Init configures the global logger once at startup (level, JSON vs console
output). After that, callers either use the plain package-level helpers
for simple messages:

	log.Info("warren starting")
	log.Warn("node heartbeat missed")
	log.Error("failed to start container")

or build a component-scoped zerolog.Logger for structured fields:

	schedLog := log.WithComponent("scheduler")
	schedLog.Info().Str("pod_id", podID).Msg("bound pod to node")

WithNodeName, WithDeploymentName, and WithPodID are shorthands for child
loggers carrying a node_name, deployment_name or pod_id field.

# Integration points

  - pkg/reconciler: logs scale-up/scale-down actions and failed bindings
  - pkg/nodemanager: logs nodes marked unhealthy and evictions
  - pkg/agent: logs container lifecycle operations
  - pkg/api: logs the listen address via WithComponent("api")

pkg/scheduler does no logging; it is a pure function.
*/
package log
