package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/warren/pkg/api"
	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/nodemanager"
	"github.com/cuemby/warren/pkg/reconciler"
	"github.com/cuemby/warren/pkg/scheduler"
	"github.com/cuemby/warren/pkg/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Warren master",
	Long: `Run the Warren master: the HTTP/JSON API, the reconciler that keeps
pod counts matching deployments, and the node manager that sweeps agent
heartbeats for liveness.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "0.0.0.0:8080", "Address for the HTTP API to listen on")
	serveCmd.Flags().String("scheduler", string(scheduler.BestFit), "Scheduling strategy: first-fit, best-fit, least-allocated, balanced")
	serveCmd.Flags().Duration("reconcile-interval", reconciler.DefaultTickInterval, "Reconciler tick interval")
	serveCmd.Flags().Duration("heartbeat-timeout", nodemanager.DefaultHeartbeatTimeout, "Time since last heartbeat before a node is marked unhealthy")
	serveCmd.Flags().Duration("eviction-timeout", nodemanager.DefaultEvictionTimeout, "Time since last heartbeat before a node is evicted")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	strategy, _ := cmd.Flags().GetString("scheduler")
	reconcileInterval, _ := cmd.Flags().GetDuration("reconcile-interval")
	heartbeatTimeout, _ := cmd.Flags().GetDuration("heartbeat-timeout")
	evictionTimeout, _ := cmd.Flags().GetDuration("eviction-timeout")

	s := store.New()

	recon := reconciler.New(s, scheduler.Strategy(strategy), reconcileInterval)
	recon.Start()
	fmt.Println("reconciler started")

	nm := nodemanager.New(s, nodemanager.Config{
		HeartbeatTimeout: heartbeatTimeout,
		EvictionTimeout:  evictionTimeout,
	})
	nm.Start()
	fmt.Println("node manager started")

	collector := metrics.NewCollector(s)
	collector.Start()
	fmt.Println("metrics collector started")

	apiServer := api.NewServer(s)
	errCh := make(chan error, 1)
	go func() {
		if err := apiServer.ListenAndServe(addr); err != nil {
			errCh <- fmt.Errorf("api server error: %w", err)
		}
	}()

	fmt.Printf("warren master listening on %s\n", addr)
	fmt.Printf("  scheduler strategy: %s\n", strategy)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nshutting down...")
	case err := <-errCh:
		log.WithComponent("serve").Error().Err(err).Msg("api server exited")
	}

	recon.Stop()
	nm.Stop()
	collector.Stop()

	// give in-flight heartbeats and reconcile ticks a moment to land
	time.Sleep(100 * time.Millisecond)

	fmt.Println("shutdown complete")
	return nil
}
