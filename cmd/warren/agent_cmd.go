package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/warren/pkg/agent"
	"github.com/cuemby/warren/pkg/client"
	"github.com/cuemby/warren/pkg/runtime"
	"github.com/cuemby/warren/pkg/types"
	"github.com/spf13/cobra"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run a Warren agent",
	Long: `Run a Warren agent: registers this host with the master, then runs
the heartbeat and reconcile loops that keep containerd converged with the
pods the master assigns to this node.`,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().String("name", "", "Unique node name (required)")
	agentCmd.Flags().String("master", "http://127.0.0.1:8080", "Master API base URL")
	agentCmd.Flags().String("address", "127.0.0.1", "Address other nodes can reach this agent at")
	agentCmd.Flags().Int("port", 0, "Port this agent's runtime listens on, if any")
	agentCmd.Flags().Int64("cpu", 4000, "CPU capacity in millicores")
	agentCmd.Flags().Int64("memory", 8192, "Memory capacity in megabytes")
	agentCmd.Flags().String("containerd-socket", runtime.DefaultSocketPath, "containerd socket path")
	_ = agentCmd.MarkFlagRequired("name")
}

func runAgent(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	master, _ := cmd.Flags().GetString("master")
	address, _ := cmd.Flags().GetString("address")
	port, _ := cmd.Flags().GetInt("port")
	cpu, _ := cmd.Flags().GetInt64("cpu")
	memory, _ := cmd.Flags().GetInt64("memory")
	socketPath, _ := cmd.Flags().GetString("containerd-socket")

	rt, err := runtime.NewContainerdRuntime(socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to containerd: %w", err)
	}
	defer rt.Close()

	c := client.New(master)
	a := agent.New(agent.Config{
		NodeName:   name,
		Address:    address,
		Port:       port,
		Capacity:   types.Resources{CPUMillis: cpu, MemoryMB: memory},
		MasterAddr: master,
	}, c, rt)

	if err := a.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}

	fmt.Printf("agent %q running, master=%s\n", name, master)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nshutting down...")
	a.Stop()
	fmt.Println("shutdown complete")
	return nil
}
