package scheduler

import (
	"testing"
	"time"

	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name string, cpu, mem, usedCPU, usedMem int64) *types.Node {
	return &types.Node{
		Name:     name,
		Status:   types.NodeReady,
		Capacity: types.Resources{CPUMillis: cpu, MemoryMB: mem},
		Used:     types.Resources{CPUMillis: usedCPU, MemoryMB: usedMem},
	}
}

func pod(id string, createdAt time.Time, cpu, mem int64) *types.Pod {
	return &types.Pod{
		ID:        id,
		Status:    types.PodPending,
		CreatedAt: createdAt,
		Resources: types.Resources{CPUMillis: cpu, MemoryMB: mem},
	}
}

func TestScheduleLeavesInfeasiblePodsPending(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes:  []*types.Node{node("a", 4000, 8192, 0, 0)},
		PendingPods: []*types.Pod{pod("p1", time.Unix(0, 0), 10000, 1024)},
	}

	result := Schedule(snap, FirstFit)
	assert.Empty(t, result.Bindings)
	require.Len(t, result.Unbound, 1)
	assert.Equal(t, "p1", result.Unbound[0])
}

func TestScheduleFirstFitPicksLexicallySmallestName(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{
			node("b", 4000, 8192, 0, 0),
			node("a", 4000, 8192, 0, 0),
		},
		PendingPods: []*types.Pod{pod("p1", time.Unix(0, 0), 1000, 1024)},
	}

	result := Schedule(snap, FirstFit)
	require.Len(t, result.Bindings, 1)
	assert.Equal(t, "a", result.Bindings[0].NodeName)
}

func TestScheduleDoesNotOverCommitWithinOnePass(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{node("a", 2000, 2048, 0, 0)},
		PendingPods: []*types.Pod{
			pod("p1", time.Unix(0, 0), 1000, 1024),
			pod("p2", time.Unix(1, 0), 1000, 1024),
			pod("p3", time.Unix(2, 0), 1000, 1024),
		},
	}

	result := Schedule(snap, FirstFit)
	assert.Len(t, result.Bindings, 2)
	assert.Len(t, result.Unbound, 1)
	assert.Equal(t, "p3", result.Unbound[0])
}

func TestScheduleBestFitPacksTightly(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{
			node("roomy", 4000, 8192, 0, 0),
			node("tight", 1000, 1024, 0, 0),
		},
		PendingPods: []*types.Pod{pod("p1", time.Unix(0, 0), 1000, 1024)},
	}

	result := Schedule(snap, BestFit)
	require.Len(t, result.Bindings, 1)
	assert.Equal(t, "tight", result.Bindings[0].NodeName)
}

func TestScheduleLeastAllocatedSpreadsLoad(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{
			node("roomy", 4000, 8192, 0, 0),
			node("tight", 1000, 1024, 0, 0),
		},
		PendingPods: []*types.Pod{pod("p1", time.Unix(0, 0), 1000, 1024)},
	}

	result := Schedule(snap, LeastAllocated)
	require.Len(t, result.Bindings, 1)
	assert.Equal(t, "roomy", result.Bindings[0].NodeName)
}

func TestScheduleBalancedMinimizesUtilizationSkew(t *testing.T) {
	// node "cpu-heavy" already has a lot of CPU used relative to memory;
	// placing the pod there would leave its ratios far apart (0.875 vs
	// 0.125), so balanced should prefer the node that keeps ratios close.
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{
			node("cpu-heavy", 4000, 4000, 3000, 0),
			node("even", 4000, 4000, 1000, 1000),
		},
		PendingPods: []*types.Pod{pod("p1", time.Unix(0, 0), 500, 500)},
	}

	result := Schedule(snap, Balanced)
	require.Len(t, result.Bindings, 1)
	assert.Equal(t, "even", result.Bindings[0].NodeName)
}

func TestScheduleOrdersByCreatedAtThenID(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{node("a", 1000, 1024, 0, 0)},
		PendingPods: []*types.Pod{
			pod("z", time.Unix(0, 0), 1000, 1024),
			pod("a", time.Unix(0, 0), 1000, 1024),
		},
	}

	result := Schedule(snap, FirstFit)
	require.Len(t, result.Bindings, 1)
	assert.Equal(t, "a", result.Bindings[0].PodID, "tie on created_at broken by pod id")
}

func TestScheduleIsDeterministic(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes: []*types.Node{
			node("a", 4000, 8192, 0, 0),
			node("b", 2000, 4096, 0, 0),
		},
		PendingPods: []*types.Pod{
			pod("p1", time.Unix(0, 0), 1000, 1024),
			pod("p2", time.Unix(1, 0), 1000, 1024),
			pod("p3", time.Unix(2, 0), 1000, 1024),
		},
	}

	first := Schedule(snap, Balanced)
	second := Schedule(snap, Balanced)
	assert.Equal(t, first, second)
}

func TestScheduleZeroRequestFitsAnywhere(t *testing.T) {
	snap := store.Snapshot{
		ReadyNodes:  []*types.Node{node("a", 0, 0, 0, 0)},
		PendingPods: []*types.Pod{pod("p1", time.Unix(0, 0), 0, 0)},
	}

	result := Schedule(snap, FirstFit)
	require.Len(t, result.Bindings, 1)
	assert.Equal(t, "a", result.Bindings[0].NodeName)
}
