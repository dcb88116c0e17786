package runtime

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/cio"
	"github.com/containerd/containerd/namespaces"
	"github.com/containerd/containerd/oci"
	"github.com/cuemby/warren/pkg/types"
)

const (
	// DefaultNamespace is the containerd namespace agents operate in.
	DefaultNamespace = "warren"

	// DefaultSocketPath is the default containerd socket.
	DefaultSocketPath = "/run/containerd/containerd.sock"

	// containerNamePrefix keeps the derived name unambiguous in `ctr`
	// listings and collision-free against other tenants of the socket.
	containerNamePrefix = "warren-pod-"
)

// Status is the runtime-observed state of a container, independent of the
// pod status the agent derives from it.
type Status string

const (
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	StatusUnknown Status = "unknown"
)

// ContainerName derives the containerd container name for a pod,
// deterministically, so creating it twice for the same pod id is a no-op.
func ContainerName(podID string) string {
	return containerNamePrefix + podID
}

// Runtime is the agent-side container runtime contract.
type Runtime interface {
	CreateContainer(ctx context.Context, podID, image string, resources types.Resources) (id string, err error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string, timeout time.Duration) error
	RemoveContainer(ctx context.Context, id string) error
	InspectContainer(ctx context.Context, id string) (Status, error)
}

// ContainerdRuntime implements Runtime against a local containerd socket.
type ContainerdRuntime struct {
	client    *containerd.Client
	namespace string
}

// NewContainerdRuntime dials the containerd socket at socketPath (or
// DefaultSocketPath if empty).
func NewContainerdRuntime(socketPath string) (*ContainerdRuntime, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	client, err := containerd.New(socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to containerd: %w", err)
	}

	return &ContainerdRuntime{client: client, namespace: DefaultNamespace}, nil
}

// Close closes the containerd client connection.
func (r *ContainerdRuntime) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func resourceOpts(res types.Resources) []oci.SpecOpts {
	var opts []oci.SpecOpts
	if res.CPUMillis > 0 {
		shares := uint64(res.CPUMillis) * 1024 / 1000
		quota := int64(res.CPUMillis) * 100
		period := uint64(100000)
		opts = append(opts, oci.WithCPUShares(shares), oci.WithCPUCFS(quota, period))
	}
	if res.MemoryMB > 0 {
		opts = append(opts, oci.WithMemoryLimit(uint64(res.MemoryMB)*1024*1024))
	}
	return opts
}

// CreateContainer creates a container for podID if one doesn't already
// exist under its derived name, and returns its id either way. Creation is
// idempotent so the agent can retry freely after a partial failure.
func (r *ContainerdRuntime) CreateContainer(ctx context.Context, podID, image string, resources types.Resources) (string, error) {
	ctx = namespaces.WithNamespace(ctx, r.namespace)
	name := ContainerName(podID)

	if existing, err := r.client.LoadContainer(ctx, name); err == nil {
		return existing.ID(), nil
	}

	img, err := r.client.GetImage(ctx, image)
	if err != nil {
		img, err = r.client.Pull(ctx, image, containerd.WithPullUnpack)
		if err != nil {
			return "", fmt.Errorf("failed to pull image %s: %w", image, err)
		}
	}

	opts := append([]oci.SpecOpts{oci.WithImageConfig(img)}, resourceOpts(resources)...)

	c, err := r.client.NewContainer(
		ctx,
		name,
		containerd.WithImage(img),
		containerd.WithNewSnapshot(name+"-snapshot", img),
		containerd.WithNewSpec(opts...),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", name, err)
	}

	return c.ID(), nil
}

// StartContainer creates and starts the containerd task for id.
func (r *ContainerdRuntime) StartContainer(ctx context.Context, id string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	c, err := r.client.LoadContainer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load container %s: %w", id, err)
	}

	task, err := c.NewTask(ctx, cio.NullIO)
	if err != nil {
		return fmt.Errorf("failed to create task for %s: %w", id, err)
	}
	if err := task.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task for %s: %w", id, err)
	}
	return nil
}

// StopContainer sends SIGTERM, waits up to timeout, then SIGKILLs. A
// container with no running task is treated as already stopped.
func (r *ContainerdRuntime) StopContainer(ctx context.Context, id string, timeout time.Duration) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	c, err := r.client.LoadContainer(ctx, id)
	if err != nil {
		return nil
	}

	task, err := c.Task(ctx, nil)
	if err != nil {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := task.Kill(stopCtx, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal task %s: %w", id, err)
	}

	statusC, err := task.Wait(stopCtx)
	if err != nil {
		return fmt.Errorf("failed to wait for task %s: %w", id, err)
	}

	select {
	case <-statusC:
	case <-stopCtx.Done():
		if err := task.Kill(ctx, syscall.SIGKILL); err != nil {
			return fmt.Errorf("failed to force-kill task %s: %w", id, err)
		}
	}

	if _, err := task.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return nil
}

// RemoveContainer deletes the container and its snapshot. Not found is not
// an error — the agent calls this on every terminating pod it sees, and the
// container may already be gone from a previous, interrupted attempt.
func (r *ContainerdRuntime) RemoveContainer(ctx context.Context, id string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	c, err := r.client.LoadContainer(ctx, id)
	if err != nil {
		return nil
	}
	if err := c.Delete(ctx, containerd.WithSnapshotCleanup); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", id, err)
	}
	return nil
}

// InspectContainer reports the runtime-observed status of id.
func (r *ContainerdRuntime) InspectContainer(ctx context.Context, id string) (Status, error) {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	c, err := r.client.LoadContainer(ctx, id)
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to load container %s: %w", id, err)
	}

	task, err := c.Task(ctx, nil)
	if err != nil {
		return StatusStopped, nil
	}

	st, err := task.Status(ctx)
	if err != nil {
		return StatusUnknown, fmt.Errorf("failed to get task status for %s: %w", id, err)
	}

	switch st.Status {
	case containerd.Running, containerd.Paused:
		return StatusRunning, nil
	default:
		return StatusStopped, nil
	}
}
