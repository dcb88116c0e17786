/*
Package api implements the master's HTTP/JSON control surface: a thin CRUD
layer over the Store plus the two endpoints the agent executor depends on.

	┌──────────────── CLIENT (CLI / agent) ────────────────┐
	│                 pkg/client.Client                     │
	└───────────────────────┬────────────────────────────────┘
	                        │ HTTP/JSON
	┌───────────────────────▼──────── pkg/api ───────────────┐
	│  gorilla/mux router                                     │
	│  - deployments: create/list/get/update/delete           │
	│  - pods: list, list-by-node, report-status               │
	│  - nodes: list, register, heartbeat                      │
	│  - health, metrics                                       │
	└───────────────────────┬────────────────────────────────┘
	                        │
	                  pkg/store.Store

Every handler translates a *store.Error to the HTTP status the design
calls for (writeError): NotFound -> 404, AlreadyExists/AlreadyBound -> 409,
InvalidSpec -> 400, Evicted -> 410, IllegalTransition -> 400, anything else
-> 500. There is no `/ready` endpoint: with a single master and no
consensus layer, readiness and liveness coincide, so `/health` covers both.
*/
package api
