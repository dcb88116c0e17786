/*
Package runtime implements the agent-side container lifecycle contract
against containerd.

	┌────────────── RUNTIME ──────────────┐
	│ CreateContainer(pod, image, res)     │
	│        │ idempotent by derived name  │
	│        ▼                             │
	│ StartContainer(id)                   │
	│        │                             │
	│        ▼                             │
	│ InspectContainer(id) -> Status       │
	│        │                             │
	│        ▼                             │
	│ StopContainer(id, timeout)           │
	│        │ SIGTERM, then SIGKILL        │
	│        ▼                             │
	│ RemoveContainer(id)                  │
	└───────────────────────────────────────┘

A container's name is derived deterministically from the pod id
(ContainerName), so CreateContainer can be retried after a crash or a lost
response without creating a duplicate container. Resource limits translate
CPU millicores to containerd CPU shares and a CFS quota on a 100ms period,
and memory megabytes to a byte limit.

Secrets, volumes, DNS configuration, log streaming, and container
networking are out of scope; the agent only needs create/start/stop/remove
and a coarse running/stopped/unknown status to drive pod convergence.
*/
package runtime
