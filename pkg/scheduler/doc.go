/*
Package scheduler implements pod placement.

Schedule takes a store.Snapshot — the pending pods and ready nodes observed
at one instant — and a Strategy, and returns the bindings to apply. It is a
pure function: no locks, no I/O, no mutation of its inputs. The reconciler
owns calling it once per tick and applying the resulting bindings through
the store.

Four strategies are supported, selected at process start:

  - first-fit: smallest node name among feasible nodes.
  - best-fit: feasible node left with the smallest free capacity after
    placement (packs tightly).
  - least-allocated: feasible node left with the largest free capacity
    after placement (spreads load).
  - balanced: feasible node whose CPU and memory utilization ratios are
    closest to each other after placement.

Within one Schedule call, a node's free capacity is decremented as each pod
is placed, so later pods in the same pass see the updated view and cannot
over-commit a node that earlier pods in the same pass already filled.
*/
package scheduler
