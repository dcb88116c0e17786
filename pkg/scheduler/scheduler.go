// Package scheduler assigns pending pods to ready nodes. Schedule is a pure
// function of a store.Snapshot: it never mutates shared state and never
// blocks, so the reconciler can call it synchronously once per tick and
// apply the returned bindings itself.
package scheduler

import (
	"sort"

	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
)

// Strategy selects which feasible node a pod binds to.
type Strategy string

const (
	FirstFit       Strategy = "first-fit"
	BestFit        Strategy = "best-fit"
	LeastAllocated Strategy = "least-allocated"
	Balanced       Strategy = "balanced"
)

// Binding is a decision to assign pod PodID to node NodeName.
type Binding struct {
	PodID    string
	NodeName string
}

// Result is the outcome of one Schedule call.
type Result struct {
	Bindings []Binding
	Unbound  []string // pod ids left pending for lack of feasible capacity
}

// nodeState is the mutable per-pass view of a node's free capacity; it is
// decremented as pods are placed so later pods in the same pass never
// over-commit it.
type nodeState struct {
	node *types.Node
	free types.Resources
}

// Schedule assigns each pending pod in snap to at most one ready node,
// under strategy. Pods are visited in ascending CreatedAt order, ties
// broken by pod id, so repeated calls on an identical snapshot produce
// identical output.
func Schedule(snap store.Snapshot, strategy Strategy) Result {
	pods := make([]*types.Pod, len(snap.PendingPods))
	copy(pods, snap.PendingPods)
	sort.Slice(pods, func(i, j int) bool {
		if pods[i].CreatedAt.Equal(pods[j].CreatedAt) {
			return pods[i].ID < pods[j].ID
		}
		return pods[i].CreatedAt.Before(pods[j].CreatedAt)
	})

	states := make([]*nodeState, len(snap.ReadyNodes))
	for i, n := range snap.ReadyNodes {
		states[i] = &nodeState{node: n, free: n.Capacity.Sub(n.Used)}
	}

	var result Result
	for _, pod := range pods {
		feasible := feasibleNodes(states, pod.Resources)
		if len(feasible) == 0 {
			result.Unbound = append(result.Unbound, pod.ID)
			continue
		}

		chosen := choose(strategy, feasible, pod.Resources)
		chosen.free = chosen.free.Sub(pod.Resources)
		result.Bindings = append(result.Bindings, Binding{PodID: pod.ID, NodeName: chosen.node.Name})
	}

	return result
}

func feasibleNodes(states []*nodeState, req types.Resources) []*nodeState {
	var out []*nodeState
	for _, st := range states {
		if req.Fits(st.free) {
			out = append(out, st)
		}
	}
	return out
}

func choose(strategy Strategy, feasible []*nodeState, req types.Resources) *nodeState {
	switch strategy {
	case BestFit:
		return chooseBestFit(feasible, req)
	case LeastAllocated:
		return chooseLeastAllocated(feasible, req)
	case Balanced:
		return chooseBalanced(feasible, req)
	default:
		return chooseFirstFit(feasible)
	}
}

func chooseFirstFit(feasible []*nodeState) *nodeState {
	best := feasible[0]
	for _, st := range feasible[1:] {
		if st.node.Name < best.node.Name {
			best = st
		}
	}
	return best
}

func remainingSum(free, req types.Resources) int64 {
	after := free.Sub(req)
	return after.CPUMillis + after.MemoryMB
}

func chooseBestFit(feasible []*nodeState, req types.Resources) *nodeState {
	best := feasible[0]
	bestSum := remainingSum(best.free, req)
	for _, st := range feasible[1:] {
		sum := remainingSum(st.free, req)
		if sum < bestSum || (sum == bestSum && st.node.Name < best.node.Name) {
			best, bestSum = st, sum
		}
	}
	return best
}

func chooseLeastAllocated(feasible []*nodeState, req types.Resources) *nodeState {
	best := feasible[0]
	bestSum := remainingSum(best.free, req)
	for _, st := range feasible[1:] {
		sum := remainingSum(st.free, req)
		if sum > bestSum || (sum == bestSum && st.node.Name < best.node.Name) {
			best, bestSum = st, sum
		}
	}
	return best
}

func utilization(used, req, capacity int64) float64 {
	if capacity == 0 {
		return 0
	}
	return float64(used+req) / float64(capacity)
}

func imbalance(st *nodeState, req types.Resources) float64 {
	used := st.node.Capacity.Sub(st.free) // == node.Used
	uCPU := utilization(used.CPUMillis, req.CPUMillis, st.node.Capacity.CPUMillis)
	uMem := utilization(used.MemoryMB, req.MemoryMB, st.node.Capacity.MemoryMB)
	d := uCPU - uMem
	if d < 0 {
		d = -d
	}
	return d
}

func chooseBalanced(feasible []*nodeState, req types.Resources) *nodeState {
	best := feasible[0]
	bestScore := imbalance(best, req)
	bestRemaining := remainingSum(best.free, req)
	for _, st := range feasible[1:] {
		score := imbalance(st, req)
		remaining := remainingSum(st.free, req)
		switch {
		case score < bestScore:
			best, bestScore, bestRemaining = st, score, remaining
		case score == bestScore:
			if remaining > bestRemaining || (remaining == bestRemaining && st.node.Name < best.node.Name) {
				best, bestScore, bestRemaining = st, score, remaining
			}
		}
	}
	return best
}
