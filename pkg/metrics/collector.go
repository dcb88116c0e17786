package metrics

import (
	"time"

	"github.com/cuemby/warren/pkg/store"
)

// Collector periodically snapshots gauge metrics (node counts by status,
// deployment counts, pod counts by status) from the Store. Counters
// incremented inline by the reconciler, node manager, API and agent don't
// need this — it exists for the metrics that are cheaper to sample than
// to track incrementally.
type Collector struct {
	store  *store.Store
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(s *store.Store) *Collector {
	return &Collector{
		store:  s,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectNodeMetrics()
	c.collectDeploymentMetrics()
	c.collectPodMetrics()
}

func (c *Collector) collectNodeMetrics() {
	nodes := c.store.ListNodes()

	counts := make(map[string]int)
	for _, n := range nodes {
		counts[string(n.Status)]++
	}
	for status, count := range counts {
		NodesTotal.WithLabelValues(status).Set(float64(count))
	}
}

func (c *Collector) collectDeploymentMetrics() {
	DeploymentsTotal.Set(float64(len(c.store.ListDeployments())))
}

func (c *Collector) collectPodMetrics() {
	pods := c.store.ListPods()

	counts := make(map[string]int)
	for _, p := range pods {
		counts[string(p.Status)]++
	}
	for status, count := range counts {
		PodsTotal.WithLabelValues(status).Set(float64(count))
	}
}
