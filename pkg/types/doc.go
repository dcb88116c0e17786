/*
Package types defines the core domain model shared across Warren's
control plane: Resources, Deployment, Pod, and Node. Every other package
(store, scheduler, reconciler, nodemanager, agent, client, api, manifest)
builds on these same four types rather than defining its own.

# Core types

Resources is a quantity of CPU and memory, expressed in millicores and
megabytes. It appears three times: as a Deployment's per-replica request,
a Pod's inherited request, and a Node's capacity/used pair.

Deployment is user intent — an image and a desired replica count, keyed
by an immutable Name. The reconciler compares a Deployment's Replicas
against its live Pods and creates or terminates to close the gap.

Pod is a single replica instance. NodeName and ContainerID are pointers
because a pod's binding and container both start out unset: nil NodeName
means "not yet scheduled", nil ContainerID means "not yet started by an
agent". PodStatus.Active reports whether a pod still counts toward its
deployment's replica count; PodStatus.Terminal reports whether no further
transition is possible.

Node is a registered agent host. Used is always derived from current pod
bindings rather than stored independently, so it can never drift from
what's actually bound. NodeStatus tracks heartbeat-based liveness: ready,
unhealthy (heartbeat overdue), or evicted (heartbeat expired past the
eviction threshold).

# Thread safety

These are plain value/pointer structs with no internal synchronization.
Store is the only package that mutates them concurrently, and it does so
under its own locks, returning clones to callers so external mutation
can't corrupt internal state.
*/
package types
