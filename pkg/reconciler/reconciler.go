package reconciler

import (
	"sort"
	"sync"
	"time"

	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/scheduler"
	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTickInterval is the design point from the component spec: one
// tick per second processes every deployment.
const DefaultTickInterval = 1 * time.Second

// Reconciler drives every deployment toward its declared replica count and
// invokes the scheduler on the pods left unbound by that process.
type Reconciler struct {
	store    *store.Store
	strategy scheduler.Strategy
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

// New creates a Reconciler bound to s, using strategy to place pods.
func New(s *store.Store, strategy scheduler.Strategy, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Reconciler{
		store:    s,
		strategy: strategy,
		interval: interval,
		logger:   log.WithComponent("reconciler"),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the tick loop in a new goroutine.
func (r *Reconciler) Start() {
	go r.run()
}

// Stop signals the tick loop to exit at its next tick boundary.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.stopCh:
		// already stopped
	default:
		close(r.stopCh)
	}
}

func (r *Reconciler) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Str("strategy", string(r.strategy)).Msg("reconciler started")

	for {
		select {
		case <-ticker.C:
			r.Tick()
		case <-r.stopCh:
			r.logger.Info().Msg("reconciler stopped")
			return
		}
	}
}

// Tick runs exactly one reconciliation pass: replica convergence for every
// deployment, a scheduler invocation over the resulting pending pods, and a
// garbage-collection sweep. It never returns an error — failures are
// logged and left for the next tick to re-derive correctness.
func (r *Reconciler) Tick() {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	deployments := r.store.ListDeployments()
	sort.Slice(deployments, func(i, j int) bool { return deployments[i].Name < deployments[j].Name })

	for _, d := range deployments {
		r.reconcileDeployment(d)
	}

	r.scheduleOnce()
	r.garbageCollect(deployments)
}

func (r *Reconciler) reconcileDeployment(d *types.Deployment) {
	pods := r.store.ListPodsByDeployment(d.Name)

	var active []*types.Pod
	for _, p := range pods {
		if p.Status.Active() {
			active = append(active, p)
		}
	}

	switch {
	case len(active) < d.Replicas:
		r.scaleUp(d, d.Replicas-len(active))
	case len(active) > d.Replicas:
		r.scaleDown(d, active, len(active)-d.Replicas)
	}
}

func (r *Reconciler) scaleUp(d *types.Deployment, count int) {
	for i := 0; i < count; i++ {
		p := types.Pod{
			ID:             uuid.New().String(),
			DeploymentName: d.Name,
			Image:          d.Image,
			Resources:      d.Resources,
			Status:         types.PodPending,
			CreatedAt:      time.Now(),
		}
		r.store.CreatePod(p)
		metrics.PodsCreatedTotal.Inc()
	}
	if count > 0 {
		r.logger.Info().Str("deployment", d.Name).Int("count", count).Msg("created pods for scale-up")
	}
}

// terminationBucket orders active statuses by how "cheap" it is to kill a
// pod in that state: a pod that never ran is cheaper to discard than one
// that is running.
func terminationBucket(s types.PodStatus) int {
	switch s {
	case types.PodPending:
		return 0
	case types.PodScheduled:
		return 1
	default: // running
		return 2
	}
}

func (r *Reconciler) scaleDown(d *types.Deployment, active []*types.Pod, count int) {
	ordered := make([]*types.Pod, len(active))
	copy(ordered, active)
	sort.Slice(ordered, func(i, j int) bool {
		bi, bj := terminationBucket(ordered[i].Status), terminationBucket(ordered[j].Status)
		if bi != bj {
			return bi < bj
		}
		// within a bucket, most recently created first
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	for i := 0; i < count && i < len(ordered); i++ {
		if _, err := r.store.UpdatePodStatus(ordered[i].ID, types.PodTerminating, nil); err != nil {
			r.logger.Warn().Err(err).Str("pod_id", ordered[i].ID).Msg("failed to mark pod terminating")
			continue
		}
		metrics.PodsTerminatedTotal.Inc()
	}
	r.logger.Info().Str("deployment", d.Name).Int("count", count).Msg("marked pods terminating for scale-down")
}

func (r *Reconciler) scheduleOnce() {
	snap := r.store.TakeSnapshot()
	if len(snap.PendingPods) == 0 {
		return
	}

	timer := metrics.NewTimer()
	result := scheduler.Schedule(snap, r.strategy)
	timer.ObserveDuration(metrics.SchedulingLatency)
	for _, b := range result.Bindings {
		if _, err := r.store.BindPod(b.PodID, b.NodeName); err != nil {
			r.logger.Warn().Err(err).Str("pod_id", b.PodID).Str("node", b.NodeName).Msg("failed to apply binding")
			continue
		}
		metrics.PodsScheduledTotal.Inc()
	}
	metrics.PodsUnschedulableTotal.Add(float64(len(result.Unbound)))
}

// garbageCollect drops terminal pods whose deployment has been deleted, and
// unbound terminating pods of a deleted deployment: those have no node_name
// for any agent to pick up, so nothing will ever advance them past
// terminating, and waiting for an agent that doesn't exist would leak them
// forever. Per design, terminal pods of a deployment that still exists are
// retained indefinitely; only deletion triggers cleanup.
func (r *Reconciler) garbageCollect(existing []*types.Deployment) {
	names := make(map[string]bool, len(existing))
	for _, d := range existing {
		names[d.Name] = true
	}

	for _, p := range r.store.ListPods() {
		if names[p.DeploymentName] {
			continue
		}
		reapable := p.Status.Terminal() || p.Status == types.PodFailed ||
			(p.Status == types.PodTerminating && p.NodeName == nil)
		if !reapable {
			continue
		}
		r.store.DeletePod(p.ID)
	}
}
