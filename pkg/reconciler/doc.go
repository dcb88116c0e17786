/*
Package reconciler drives deployments toward their declared replica count.

One tick: list deployments in name order; for each, create pods on
scale-up or mark the cheapest-to-kill pods terminating on scale-down; then
run the scheduler once over every pod left pending and apply its bindings;
then garbage-collect terminal pods whose deployment has been deleted.

Nothing a tick does returns an error to its caller. Store failures and
unschedulable pods are logged and left for the next tick, which always
re-derives the correct delta from current state.
*/
package reconciler
