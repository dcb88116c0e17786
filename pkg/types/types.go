package types

import "time"

// Resources is a quantity of CPU and memory, expressed in millicores and
// megabytes. A zero value means "no request" on a Deployment or Pod, or
// "no capacity" on a Node.
type Resources struct {
	CPUMillis int64
	MemoryMB  int64
}

// Fits reports whether free has enough of both dimensions to accommodate
// request r. A zero-valued r always fits.
func (r Resources) Fits(free Resources) bool {
	return free.CPUMillis >= r.CPUMillis && free.MemoryMB >= r.MemoryMB
}

// Add returns the element-wise sum of r and other.
func (r Resources) Add(other Resources) Resources {
	return Resources{
		CPUMillis: r.CPUMillis + other.CPUMillis,
		MemoryMB:  r.MemoryMB + other.MemoryMB,
	}
}

// Sub returns the element-wise difference r - other.
func (r Resources) Sub(other Resources) Resources {
	return Resources{
		CPUMillis: r.CPUMillis - other.CPUMillis,
		MemoryMB:  r.MemoryMB - other.MemoryMB,
	}
}

// Deployment is user intent: an image and a desired replica count, with an
// optional per-replica resource request. Name is the immutable key.
type Deployment struct {
	Name      string
	Image     string
	Replicas  int
	Resources Resources
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PodStatus is the lifecycle state of a Pod.
type PodStatus string

const (
	PodPending     PodStatus = "pending"
	PodScheduled   PodStatus = "scheduled"
	PodRunning     PodStatus = "running"
	PodFailed      PodStatus = "failed"
	PodTerminating PodStatus = "terminating"
	PodTerminated  PodStatus = "terminated"
)

// Terminal reports whether status admits no further transitions.
func (s PodStatus) Terminal() bool {
	return s == PodTerminated
}

// Active reports whether a pod in this status counts toward a deployment's
// replica count.
func (s PodStatus) Active() bool {
	return s != PodTerminated && s != PodFailed && s != PodTerminating
}

// Pod is a single replica instance of a Deployment. NodeName and
// ContainerID are nullable, hence pointers: a nil NodeName is a pod that
// is not currently bound, either never bound or reset by an eviction.
type Pod struct {
	ID             string
	DeploymentName string
	Image          string
	Resources      Resources
	NodeName       *string
	ContainerID    *string
	Status         PodStatus
	CreatedAt      time.Time
}

// NodeStatus is the liveness state of a registered agent.
type NodeStatus string

const (
	NodeReady     NodeStatus = "ready"
	NodeUnhealthy NodeStatus = "unhealthy"
	NodeEvicted   NodeStatus = "evicted"
)

// Node is a registered worker host. Used is never stored: the store always
// derives it from current pod bindings, so it can't drift from reality.
type Node struct {
	Name          string
	Address       string
	Port          int
	Capacity      Resources
	Used          Resources
	Status        NodeStatus
	LastHeartbeat time.Time
	CreatedAt     time.Time
}

// Free returns the node's unallocated capacity.
func (n Node) Free() Resources {
	return n.Capacity.Sub(n.Used)
}
