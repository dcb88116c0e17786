// Package nodemanager tracks agent liveness. It is split out of the
// reconciler because the component design treats node-liveness sweeping as
// one of the four independent concurrent loops in the system, with its own
// tick cadence and its own pair of timeouts.
package nodemanager

import (
	"sync"
	"time"

	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/rs/zerolog"
)

const (
	// DefaultHeartbeatTimeout is the design point: a node with no
	// heartbeat for this long stops receiving new bindings.
	DefaultHeartbeatTimeout = 15 * time.Second
	// DefaultEvictionTimeout is the design point: a node with no
	// heartbeat for this long is evicted and its pods rebound.
	DefaultEvictionTimeout = 60 * time.Second
	// DefaultTickInterval matches the reconciler's cadence.
	DefaultTickInterval = 1 * time.Second
)

// Config configures a Manager's timeouts and tick cadence.
type Config struct {
	HeartbeatTimeout time.Duration
	EvictionTimeout  time.Duration
	TickInterval     time.Duration
}

func (c Config) withDefaults() Config {
	if c.HeartbeatTimeout == 0 {
		c.HeartbeatTimeout = DefaultHeartbeatTimeout
	}
	if c.EvictionTimeout == 0 {
		c.EvictionTimeout = DefaultEvictionTimeout
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	return c
}

// Manager sweeps node heartbeats on a fixed tick, transitioning stale
// nodes to unhealthy and then evicted.
type Manager struct {
	store  *store.Store
	cfg    Config
	logger zerolog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

// New creates a Manager bound to s.
func New(s *store.Store, cfg Config) *Manager {
	return &Manager{
		store:  s,
		cfg:    cfg.withDefaults(),
		logger: log.WithComponent("nodemanager"),
		stopCh: make(chan struct{}),
	}
}

// Start launches the liveness sweep loop in a new goroutine.
func (m *Manager) Start() {
	go m.run()
}

// Stop signals the sweep loop to exit at its next tick boundary.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

func (m *Manager) run() {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	m.logger.Info().
		Dur("heartbeat_timeout", m.cfg.HeartbeatTimeout).
		Dur("eviction_timeout", m.cfg.EvictionTimeout).
		Msg("node manager started")

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stopCh:
			m.logger.Info().Msg("node manager stopped")
			return
		}
	}
}

// Sweep runs one liveness pass over every node.
func (m *Manager) Sweep() {
	now := time.Now()
	for _, n := range m.store.ListNodes() {
		m.sweepNode(n, now)
	}
}

func (m *Manager) sweepNode(n *types.Node, now time.Time) {
	if n.Status == types.NodeEvicted {
		return
	}

	silence := now.Sub(n.LastHeartbeat)
	switch {
	case silence > m.cfg.EvictionTimeout:
		if err := m.store.EvictNode(n.Name); err != nil {
			m.logger.Warn().Err(err).Str("node", n.Name).Msg("failed to evict node")
			return
		}
		metrics.NodeEvictionsTotal.Inc()
		m.logger.Warn().Str("node", n.Name).Dur("silence", silence).Msg("node evicted, pods reset to pending")
	case silence > m.cfg.HeartbeatTimeout:
		if n.Status == types.NodeUnhealthy {
			return
		}
		if err := m.store.SetNodeStatus(n.Name, types.NodeUnhealthy); err != nil {
			m.logger.Warn().Err(err).Str("node", n.Name).Msg("failed to mark node unhealthy")
			return
		}
		m.logger.Warn().Str("node", n.Name).Dur("silence", silence).Msg("node marked unhealthy")
	}
}
