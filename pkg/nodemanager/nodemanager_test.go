package nodemanager

import (
	"testing"
	"time"

	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepMarksUnhealthyAfterHeartbeatTimeout(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024}})

	// force a stale heartbeat by evicting the clock forward via timeout config
	m := New(s, Config{HeartbeatTimeout: -1 * time.Second, EvictionTimeout: time.Hour})
	m.Sweep()

	n, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeUnhealthy, n.Status)
}

func TestSweepEvictsAndRebindsPods(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024}})
	s.CreatePod(types.Pod{ID: "p1", DeploymentName: "d", Status: types.PodPending})
	_, err := s.BindPod("p1", "a")
	require.NoError(t, err)

	m := New(s, Config{HeartbeatTimeout: -2 * time.Second, EvictionTimeout: -1 * time.Second})
	m.Sweep()

	n, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeEvicted, n.Status)

	pods := s.ListPods()
	require.Len(t, pods, 1)
	assert.Equal(t, types.PodPending, pods[0].Status)
	assert.Nil(t, pods[0].NodeName)
}

func TestSweepLeavesHealthyNodesAlone(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024}})

	m := New(s, Config{})
	m.Sweep()

	n, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeReady, n.Status)
}

func TestSweepSkipsAlreadyEvictedNodes(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024}})
	require.NoError(t, s.EvictNode("a"))

	m := New(s, Config{HeartbeatTimeout: -2 * time.Second, EvictionTimeout: -1 * time.Second})
	m.Sweep()

	n, err := s.GetNode("a")
	require.NoError(t, err)
	assert.Equal(t, types.NodeEvicted, n.Status)
}
