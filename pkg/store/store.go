// Package store is the single source of truth for a Warren control plane:
// a process-local, concurrent, in-memory registry of Deployments, Pods, and
// Nodes. All mutation of authoritative state flows through it; the
// scheduler, reconciler, node manager, and API handlers only ever read or
// write state via its typed operations, never by holding a live pointer to
// an entity across calls.
//
// Locking discipline: each entity table has its own RWMutex. Operations
// that touch more than one table acquire them in a fixed order —
// deployments, then pods, then nodes — to avoid deadlock. Readers see a
// consistent view of a single entity; the scheduler snapshot sees a
// consistent pair of (ready nodes, pending pods) because pods and nodes are
// locked together and released before the scheduler runs.
package store

import (
	"sync"
	"time"

	"github.com/cuemby/warren/pkg/types"
)

// Store is the concurrent registry described in the package doc.
type Store struct {
	muDeployments sync.RWMutex
	deployments   map[string]*types.Deployment

	muPods sync.RWMutex
	pods   map[string]*types.Pod

	muNodes sync.RWMutex
	nodes   map[string]*types.Node
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		deployments: make(map[string]*types.Deployment),
		pods:        make(map[string]*types.Pod),
		nodes:       make(map[string]*types.Node),
	}
}

func cloneDeployment(d *types.Deployment) *types.Deployment {
	cp := *d
	return &cp
}

func clonePod(p *types.Pod) *types.Pod {
	cp := *p
	if p.NodeName != nil {
		n := *p.NodeName
		cp.NodeName = &n
	}
	if p.ContainerID != nil {
		c := *p.ContainerID
		cp.ContainerID = &c
	}
	return &cp
}

func cloneNode(n *types.Node) *types.Node {
	cp := *n
	return &cp
}

// ---- Deployments ----

// DeploymentUpdate carries the partial-update fields accepted by
// UpdateDeployment. Nil fields are left unchanged.
type DeploymentUpdate struct {
	Image     *string
	Replicas  *int
	Resources *types.Resources
}

// CreateDeployment stores spec under spec.Name. Returns AlreadyExists if a
// deployment with that name is already registered.
func (s *Store) CreateDeployment(spec types.Deployment) (*types.Deployment, error) {
	s.muDeployments.Lock()
	defer s.muDeployments.Unlock()

	if _, ok := s.deployments[spec.Name]; ok {
		return nil, alreadyExists(spec.Name)
	}

	now := time.Now()
	d := spec
	d.CreatedAt = now
	d.UpdatedAt = now
	s.deployments[d.Name] = &d
	return cloneDeployment(&d), nil
}

// UpdateDeployment applies a partial update to the named deployment.
func (s *Store) UpdateDeployment(name string, update DeploymentUpdate) (*types.Deployment, error) {
	s.muDeployments.Lock()
	defer s.muDeployments.Unlock()

	d, ok := s.deployments[name]
	if !ok {
		return nil, notFound(name)
	}
	if update.Image != nil {
		d.Image = *update.Image
	}
	if update.Replicas != nil {
		d.Replicas = *update.Replicas
	}
	if update.Resources != nil {
		d.Resources = *update.Resources
	}
	d.UpdatedAt = time.Now()
	return cloneDeployment(d), nil
}

// DeleteDeployment removes the named deployment and marks all of its
// non-terminal pods terminating.
func (s *Store) DeleteDeployment(name string) error {
	s.muDeployments.Lock()
	defer s.muDeployments.Unlock()

	if _, ok := s.deployments[name]; !ok {
		return notFound(name)
	}
	delete(s.deployments, name)

	s.muPods.Lock()
	defer s.muPods.Unlock()
	for _, p := range s.pods {
		if p.DeploymentName == name && !p.Status.Terminal() && p.Status != types.PodTerminating {
			p.Status = types.PodTerminating
		}
	}
	return nil
}

// GetDeployment returns the named deployment.
func (s *Store) GetDeployment(name string) (*types.Deployment, error) {
	s.muDeployments.RLock()
	defer s.muDeployments.RUnlock()

	d, ok := s.deployments[name]
	if !ok {
		return nil, notFound(name)
	}
	return cloneDeployment(d), nil
}

// ListDeployments returns all deployments in no particular order.
func (s *Store) ListDeployments() []*types.Deployment {
	s.muDeployments.RLock()
	defer s.muDeployments.RUnlock()

	out := make([]*types.Deployment, 0, len(s.deployments))
	for _, d := range s.deployments {
		out = append(out, cloneDeployment(d))
	}
	return out
}

// ---- Pods ----

// CreatePod stores pod as-is; callers (the reconciler) are responsible for
// assigning a fresh id and leaving NodeName/ContainerID nil and Status
// pending.
func (s *Store) CreatePod(pod types.Pod) *types.Pod {
	s.muPods.Lock()
	defer s.muPods.Unlock()

	p := pod
	s.pods[p.ID] = &p
	return clonePod(&p)
}

// BindPod sets a pending pod's node and transitions it to scheduled.
func (s *Store) BindPod(id, nodeName string) (*types.Pod, error) {
	s.muPods.Lock()
	defer s.muPods.Unlock()

	s.muNodes.RLock()
	_, nodeOK := s.nodes[nodeName]
	s.muNodes.RUnlock()
	if !nodeOK {
		return nil, notFound(nodeName)
	}

	p, ok := s.pods[id]
	if !ok {
		return nil, notFound(id)
	}
	if p.NodeName != nil {
		return nil, alreadyBound(id)
	}

	n := nodeName
	p.NodeName = &n
	p.Status = types.PodScheduled
	return clonePod(p), nil
}

var legalPodTransitions = map[types.PodStatus]map[types.PodStatus]bool{
	types.PodPending:     {types.PodScheduled: true, types.PodTerminating: true},
	types.PodScheduled:   {types.PodRunning: true, types.PodTerminating: true, types.PodFailed: true},
	types.PodRunning:     {types.PodTerminating: true, types.PodFailed: true},
	types.PodTerminating: {types.PodTerminated: true},
	types.PodFailed:      {},
	types.PodTerminated:  {},
}

// UpdatePodStatus transitions a pod to a new status, optionally recording
// the container id the agent started. Any state may transition to pending
// (eviction reset); all other transitions must be in legalPodTransitions.
func (s *Store) UpdatePodStatus(id string, status types.PodStatus, containerID *string) (*types.Pod, error) {
	s.muPods.Lock()
	defer s.muPods.Unlock()

	p, ok := s.pods[id]
	if !ok {
		return nil, notFound(id)
	}

	if status == types.PodPending {
		p.Status = types.PodPending
		p.NodeName = nil
		p.ContainerID = nil
		return clonePod(p), nil
	}

	if p.Status.Terminal() {
		return nil, illegalTransition(id, string(p.Status), string(status))
	}
	if !legalPodTransitions[p.Status][status] {
		return nil, illegalTransition(id, string(p.Status), string(status))
	}

	p.Status = status
	if containerID != nil {
		c := *containerID
		p.ContainerID = &c
	}
	return clonePod(p), nil
}

// GetPod returns a single pod by id.
func (s *Store) GetPod(id string) (*types.Pod, error) {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	p, ok := s.pods[id]
	if !ok {
		return nil, notFound(id)
	}
	return clonePod(p), nil
}

// ListPods returns all pods.
func (s *Store) ListPods() []*types.Pod {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	out := make([]*types.Pod, 0, len(s.pods))
	for _, p := range s.pods {
		out = append(out, clonePod(p))
	}
	return out
}

// ListPodsByNode returns pods currently bound to the named node.
func (s *Store) ListPodsByNode(nodeName string) []*types.Pod {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	var out []*types.Pod
	for _, p := range s.pods {
		if p.NodeName != nil && *p.NodeName == nodeName {
			out = append(out, clonePod(p))
		}
	}
	return out
}

// ListPodsByDeployment returns pods belonging to the named deployment.
func (s *Store) ListPodsByDeployment(deploymentName string) []*types.Pod {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	var out []*types.Pod
	for _, p := range s.pods {
		if p.DeploymentName == deploymentName {
			out = append(out, clonePod(p))
		}
	}
	return out
}

// DeletePod removes a pod outright. Used by the reconciler's garbage
// collection of terminal pods whose deployment no longer exists.
func (s *Store) DeletePod(id string) {
	s.muPods.Lock()
	defer s.muPods.Unlock()
	delete(s.pods, id)
}

// ---- Nodes ----

func (s *Store) usedByNode(nodeName string) types.Resources {
	var used types.Resources
	for _, p := range s.pods {
		if p.NodeName == nil || *p.NodeName != nodeName {
			continue
		}
		switch p.Status {
		case types.PodScheduled, types.PodRunning, types.PodTerminating:
			used = used.Add(p.Resources)
		}
	}
	return used
}

// RegisterNode stores a node registration. Re-registering an existing name
// replaces its address/port/capacity and resets it to ready, preserving
// CreatedAt.
func (s *Store) RegisterNode(spec types.Node) *types.Node {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	s.muNodes.Lock()
	defer s.muNodes.Unlock()

	now := time.Now()
	existing, ok := s.nodes[spec.Name]
	n := spec
	n.Status = types.NodeReady
	n.LastHeartbeat = now
	if ok {
		n.CreatedAt = existing.CreatedAt
	} else {
		n.CreatedAt = now
	}
	s.nodes[n.Name] = &n

	n.Used = s.usedByNode(n.Name)
	return cloneNode(&n)
}

// HeartbeatNode records a liveness signal from an agent. A heartbeat from
// an unhealthy node restores it to ready; a heartbeat from an evicted node
// is rejected, since the agent must re-register to obtain a fresh identity.
func (s *Store) HeartbeatNode(name string) error {
	s.muNodes.Lock()
	defer s.muNodes.Unlock()

	n, ok := s.nodes[name]
	if !ok {
		return notFound(name)
	}
	if n.Status == types.NodeEvicted {
		return evicted(name)
	}
	n.Status = types.NodeReady
	n.LastHeartbeat = time.Now()
	return nil
}

// SetNodeStatus transitions a node's liveness status without touching its
// bound pods. Used by the node manager for the unhealthy transition.
func (s *Store) SetNodeStatus(name string, status types.NodeStatus) error {
	s.muNodes.Lock()
	defer s.muNodes.Unlock()

	n, ok := s.nodes[name]
	if !ok {
		return notFound(name)
	}
	n.Status = status
	return nil
}

// EvictNode marks a node evicted and resets every pod bound to it that is
// not already terminal back to pending, clearing NodeName and ContainerID
// so the reconciler's next scheduler pass can rebind them.
func (s *Store) EvictNode(name string) error {
	s.muPods.Lock()
	defer s.muPods.Unlock()

	s.muNodes.Lock()
	defer s.muNodes.Unlock()

	n, ok := s.nodes[name]
	if !ok {
		return notFound(name)
	}
	n.Status = types.NodeEvicted

	for _, p := range s.pods {
		if p.NodeName == nil || *p.NodeName != name {
			continue
		}
		if p.Status.Terminal() || p.Status == types.PodFailed {
			continue
		}
		p.Status = types.PodPending
		p.NodeName = nil
		p.ContainerID = nil
	}
	return nil
}

// GetNode returns a node with its Used field freshly derived from bound
// pods.
func (s *Store) GetNode(name string) (*types.Node, error) {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	s.muNodes.RLock()
	defer s.muNodes.RUnlock()

	n, ok := s.nodes[name]
	if !ok {
		return nil, notFound(name)
	}
	cp := cloneNode(n)
	cp.Used = s.usedByNode(name)
	return cp, nil
}

// ListNodes returns all nodes with Used freshly derived from bound pods.
func (s *Store) ListNodes() []*types.Node {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	s.muNodes.RLock()
	defer s.muNodes.RUnlock()

	out := make([]*types.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		cp := cloneNode(n)
		cp.Used = s.usedByNode(n.Name)
		out = append(out, cp)
	}
	return out
}

// ---- Scheduler snapshot ----

// Snapshot is the consistent pair of inputs the scheduler needs: every
// pending pod and every ready node annotated with derived used capacity.
type Snapshot struct {
	PendingPods []*types.Pod
	ReadyNodes  []*types.Node
}

// TakeSnapshot acquires pods then nodes, builds a consistent view, and
// releases both locks before returning — the scheduler never runs while
// holding a store lock.
func (s *Store) TakeSnapshot() Snapshot {
	s.muPods.RLock()
	defer s.muPods.RUnlock()

	s.muNodes.RLock()
	defer s.muNodes.RUnlock()

	var pending []*types.Pod
	for _, p := range s.pods {
		if p.Status == types.PodPending {
			pending = append(pending, clonePod(p))
		}
	}

	var ready []*types.Node
	for _, n := range s.nodes {
		if n.Status != types.NodeReady {
			continue
		}
		cp := cloneNode(n)
		cp.Used = s.usedByNode(n.Name)
		ready = append(ready, cp)
	}

	return Snapshot{PendingPods: pending, ReadyNodes: ready}
}
