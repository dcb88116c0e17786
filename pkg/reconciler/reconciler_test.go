package reconciler

import (
	"testing"
	"time"

	"github.com/cuemby/warren/pkg/scheduler"
	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickScalesUpAndSchedules(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 4000, MemoryMB: 8192}})
	_, err := s.CreateDeployment(types.Deployment{Name: "nginx", Image: "nginx:alpine", Replicas: 1})
	require.NoError(t, err)

	r := New(s, scheduler.FirstFit, time.Second)
	r.Tick()

	pods := s.ListPodsByDeployment("nginx")
	require.Len(t, pods, 1)
	assert.Equal(t, types.PodScheduled, pods[0].Status)
	require.NotNil(t, pods[0].NodeName)
	assert.Equal(t, "a", *pods[0].NodeName)
}

func TestTickScalesDownPreferringCheapestPods(t *testing.T) {
	s := store.New()
	_, err := s.CreateDeployment(types.Deployment{Name: "nginx", Replicas: 3})
	require.NoError(t, err)

	r := New(s, scheduler.FirstFit, time.Second)
	r.Tick() // creates 3 pending pods (no node, stays pending)

	replicas := 1
	_, err = s.UpdateDeployment("nginx", store.DeploymentUpdate{Replicas: &replicas})
	require.NoError(t, err)

	r.Tick()

	pods := s.ListPodsByDeployment("nginx")
	var active, terminating int
	for _, p := range pods {
		if p.Status.Active() {
			active++
		}
		if p.Status == types.PodTerminating {
			terminating++
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, 2, terminating)
}

func TestTickConvergesToZeroAfterDelete(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 4000, MemoryMB: 8192}})
	_, err := s.CreateDeployment(types.Deployment{Name: "nginx", Replicas: 2})
	require.NoError(t, err)

	r := New(s, scheduler.FirstFit, time.Second)
	r.Tick()
	require.Len(t, s.ListPodsByDeployment("nginx"), 2)

	require.NoError(t, s.DeleteDeployment("nginx"))
	r.Tick()

	for _, p := range s.ListPodsByDeployment("nginx") {
		assert.False(t, p.Status.Active())
	}
}

func TestGarbageCollectDropsTerminalPodsOfDeletedDeployment(t *testing.T) {
	s := store.New()
	s.CreatePod(types.Pod{ID: "p1", DeploymentName: "ghost", Status: types.PodTerminated})

	r := New(s, scheduler.FirstFit, time.Second)
	r.Tick()

	assert.Empty(t, s.ListPods())
}

func TestUnschedulablePodStaysPendingWithoutError(t *testing.T) {
	s := store.New()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 4000, MemoryMB: 8192}})
	_, err := s.CreateDeployment(types.Deployment{
		Name:      "huge",
		Replicas:  1,
		Resources: types.Resources{CPUMillis: 10000, MemoryMB: 1024},
	})
	require.NoError(t, err)

	r := New(s, scheduler.FirstFit, time.Second)
	r.Tick()

	pods := s.ListPodsByDeployment("huge")
	require.Len(t, pods, 1)
	assert.Equal(t, types.PodPending, pods[0].Status)
	assert.Nil(t, pods[0].NodeName)
}
