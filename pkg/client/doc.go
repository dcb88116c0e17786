/*
Package client provides a Go client library for the master's HTTP/JSON API.

	┌──────────────── CALLER ─────────────────┐
	│  agent heartbeat & reconcile loops       │
	│  CLI commands (apply, get, delete)       │
	└─────────────────┬────────────────────────┘
	                  │ client.New(addr)
	┌─────────────────▼──────── pkg/client ────┐
	│  one method per endpoint, JSON bodies,    │
	│  DefaultTimeout per call, APIError on     │
	│  any non-2xx response                     │
	└─────────────────┬────────────────────────┘
	                  │ HTTP
	                  ▼
	              Master API

Every call carries its own deadline; a timed-out or failed call is never
retried in place. Callers that loop on a fixed tick (the agent, in
particular) simply re-issue the call on the next tick — the master's state
is always the source of truth, so re-fetching is always safe.
*/
package client
