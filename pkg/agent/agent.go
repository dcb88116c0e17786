package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/warren/pkg/client"
	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/runtime"
	"github.com/cuemby/warren/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultHeartbeatInterval is the design default for the heartbeat loop.
	DefaultHeartbeatInterval = 5 * time.Second
	// DefaultReconcileInterval is the design default for the reconcile loop.
	DefaultReconcileInterval = 2 * time.Second
	// DefaultStopTimeout bounds how long a stop waits for graceful exit
	// before the runtime escalates to SIGKILL.
	DefaultStopTimeout = 10 * time.Second
)

// Config configures an Agent.
type Config struct {
	NodeName          string
	Address           string
	Port              int
	Capacity          types.Resources
	MasterAddr        string
	HeartbeatInterval time.Duration
	ReconcileInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.ReconcileInterval <= 0 {
		c.ReconcileInterval = DefaultReconcileInterval
	}
	return c
}

// Agent runs on a worker host and makes reality match the pods the master
// has assigned to this node. It owns two independent loops and a small
// piece of local state: the map from pod id to the runtime container id it
// started for that pod.
type Agent struct {
	cfg    Config
	client *client.Client
	rt     runtime.Runtime
	logger zerolog.Logger

	mu     sync.Mutex
	local  map[string]string
	stopCh chan struct{}
}

// New creates an Agent. rt may be a *runtime.ContainerdRuntime or any other
// Runtime implementation, which keeps the convergence loops testable
// without a live containerd daemon.
func New(cfg Config, c *client.Client, rt runtime.Runtime) *Agent {
	return &Agent{
		cfg:    cfg.withDefaults(),
		client: c,
		rt:     rt,
		logger: log.WithComponent("agent").With().Str("node", cfg.NodeName).Logger(),
		local:  make(map[string]string),
		stopCh: make(chan struct{}),
	}
}

// Start registers with the master and launches both loops in new
// goroutines.
func (a *Agent) Start(ctx context.Context) error {
	if err := a.register(ctx); err != nil {
		return fmt.Errorf("failed to register with master: %w", err)
	}
	go a.heartbeatLoop()
	go a.reconcileLoop()
	return nil
}

// Stop signals both loops to exit at their next tick boundary.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.stopCh:
	default:
		close(a.stopCh)
	}
}

func (a *Agent) register(ctx context.Context) error {
	_, err := a.client.RegisterNode(ctx, client.RegisterNodeRequest{
		Name:     a.cfg.NodeName,
		Address:  a.cfg.Address,
		Port:     a.cfg.Port,
		Capacity: a.cfg.Capacity,
	})
	return err
}

func (a *Agent) heartbeatLoop() {
	ticker := time.NewTicker(a.cfg.HeartbeatInterval)
	defer ticker.Stop()

	a.logger.Info().Dur("interval", a.cfg.HeartbeatInterval).Msg("heartbeat loop started")

	for {
		select {
		case <-ticker.C:
			a.sendHeartbeat()
		case <-a.stopCh:
			return
		}
	}
}

func (a *Agent) sendHeartbeat() {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.AgentHeartbeatDuration)

	ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
	defer cancel()

	err := a.client.Heartbeat(ctx, a.cfg.NodeName)
	if err == nil {
		return
	}

	if client.IsEvicted(err) {
		a.logger.Warn().Msg("node evicted, re-registering and resetting local state")
		a.handleEviction(ctx)
		return
	}

	a.logger.Warn().Err(err).Msg("heartbeat failed")
}

// handleEviction re-registers the node under a fresh identity and stops
// every container this agent believes it owns, since the master has
// forgotten all of them.
func (a *Agent) handleEviction(ctx context.Context) {
	a.mu.Lock()
	owned := make(map[string]string, len(a.local))
	for podID, containerID := range a.local {
		owned[podID] = containerID
	}
	a.local = make(map[string]string)
	a.mu.Unlock()

	for podID, containerID := range owned {
		a.stopAndRemove(ctx, containerID)
		a.logger.Info().Str("pod_id", podID).Msg("stopped orphaned container after eviction")
	}

	if err := a.register(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("failed to re-register after eviction")
	}
}

func (a *Agent) reconcileLoop() {
	ticker := time.NewTicker(a.cfg.ReconcileInterval)
	defer ticker.Stop()

	a.logger.Info().Dur("interval", a.cfg.ReconcileInterval).Msg("reconcile loop started")

	for {
		select {
		case <-ticker.C:
			a.reconcile()
		case <-a.stopCh:
			return
		}
	}
}

// reconcile drives local container state toward what the master has
// assigned. It never returns an error: a failed step is logged and
// re-attempted on the next tick, since local and the master's view of this
// node always carry enough information to re-derive the correct action.
func (a *Agent) reconcile() {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.AgentReconcileDuration)

	ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
	defer cancel()

	assigned, err := a.client.PodsForNode(ctx, a.cfg.NodeName)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to fetch assigned pods")
		return
	}

	byID := make(map[string]*types.Pod, len(assigned))
	for _, p := range assigned {
		byID[p.ID] = p
	}

	for _, p := range assigned {
		switch p.Status {
		case types.PodScheduled:
			a.startIfAbsent(ctx, p)
		case types.PodTerminating:
			a.stopAssigned(ctx, p)
		}
	}

	a.pruneOrphans(ctx, byID)
}

func (a *Agent) startIfAbsent(ctx context.Context, p *types.Pod) {
	a.mu.Lock()
	_, exists := a.local[p.ID]
	a.mu.Unlock()
	if exists {
		return
	}

	containerID, err := a.rt.CreateContainer(ctx, p.ID, p.Image, p.Resources)
	if err != nil {
		a.reportStatus(ctx, p.ID, types.PodFailed, nil)
		metrics.AgentContainerOpsTotal.WithLabelValues("create", "failed").Inc()
		metrics.PodsFailedTotal.Inc()
		a.logger.Warn().Err(err).Str("pod_id", p.ID).Msg("failed to create container")
		return
	}

	if err := a.rt.StartContainer(ctx, containerID); err != nil {
		a.reportStatus(ctx, p.ID, types.PodFailed, nil)
		metrics.AgentContainerOpsTotal.WithLabelValues("start", "failed").Inc()
		metrics.PodsFailedTotal.Inc()
		a.logger.Warn().Err(err).Str("pod_id", p.ID).Msg("failed to start container")
		return
	}

	a.mu.Lock()
	a.local[p.ID] = containerID
	a.mu.Unlock()

	a.reportStatus(ctx, p.ID, types.PodRunning, &containerID)
	metrics.AgentContainerOpsTotal.WithLabelValues("start", "success").Inc()
	a.logger.Info().Str("pod_id", p.ID).Str("container_id", containerID).Msg("pod running")
}

func (a *Agent) stopAssigned(ctx context.Context, p *types.Pod) {
	a.mu.Lock()
	containerID, exists := a.local[p.ID]
	delete(a.local, p.ID)
	a.mu.Unlock()

	if exists {
		a.stopAndRemove(ctx, containerID)
	}

	a.reportStatus(ctx, p.ID, types.PodTerminated, nil)
	a.logger.Info().Str("pod_id", p.ID).Msg("pod terminated")
}

// pruneOrphans stops and forgets any locally-tracked container whose pod
// id is no longer in the assigned set — the master considers it gone.
func (a *Agent) pruneOrphans(ctx context.Context, assigned map[string]*types.Pod) {
	a.mu.Lock()
	var orphans []string
	for podID := range a.local {
		if _, ok := assigned[podID]; !ok {
			orphans = append(orphans, podID)
		}
	}
	a.mu.Unlock()

	for _, podID := range orphans {
		a.mu.Lock()
		containerID := a.local[podID]
		delete(a.local, podID)
		a.mu.Unlock()

		a.stopAndRemove(ctx, containerID)
		a.logger.Info().Str("pod_id", podID).Msg("removed orphaned container")
	}
}

func (a *Agent) stopAndRemove(ctx context.Context, containerID string) {
	if err := a.rt.StopContainer(ctx, containerID, DefaultStopTimeout); err != nil {
		a.logger.Warn().Err(err).Str("container_id", containerID).Msg("failed to stop container")
	}
	if err := a.rt.RemoveContainer(ctx, containerID); err != nil {
		a.logger.Warn().Err(err).Str("container_id", containerID).Msg("failed to remove container")
	}
}

func (a *Agent) reportStatus(ctx context.Context, podID string, status types.PodStatus, containerID *string) {
	err := a.client.ReportPodStatus(ctx, podID, client.ReportStatusRequest{Status: status, ContainerID: containerID})
	if err != nil {
		a.logger.Warn().Err(err).Str("pod_id", podID).Str("status", string(status)).Msg("failed to report pod status")
	}
}
