/*
Package agent implements the worker-host process that makes reality match
the pods the master has assigned to this node.

	┌─────────────────────── AGENT ────────────────────────┐
	│                                                        │
	│  ┌──────────────────┐      ┌──────────────────────┐ │
	│  │  Heartbeat loop   │      │  Reconcile loop       │ │
	│  │  every 5s         │      │  every 2s             │ │
	│  │  - POST heartbeat │      │  - GET assigned pods  │ │
	│  │  - on 410, re-reg │      │  - start/stop/prune   │ │
	│  └─────────┬─────────┘      └──────────┬────────────┘ │
	│            │                           │               │
	│            └───────────┬───────────────┘               │
	│                        ▼                                │
	│              local: pod id -> container id              │
	│                        │                                 │
	│                        ▼                                 │
	│                 pkg/runtime.Runtime                      │
	└────────────────────────────────────────────────────────┘

Each reconcile pass converges `local` toward the pods the master reports as
scheduled or running on this node, regardless of what failed on the
previous pass: a pod stuck `scheduled` with no local entry is retried, a
pod gone from the assigned set is stopped and forgotten, and eviction
resets local state entirely so the agent never accumulates orphaned
containers across a re-registration.
*/
package agent
