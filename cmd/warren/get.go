package main

import (
	"context"
	"fmt"

	"github.com/cuemby/warren/pkg/client"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get {deployments|pods|nodes}",
	Short: "List resources known to the master",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	getCmd.Flags().String("master", "http://127.0.0.1:8080", "Master API base URL")
}

func runGet(cmd *cobra.Command, args []string) error {
	master, _ := cmd.Flags().GetString("master")
	c := client.New(master)
	ctx := context.Background()

	switch args[0] {
	case "deployments":
		deploys, err := c.ListDeployments(ctx)
		if err != nil {
			return fmt.Errorf("failed to list deployments: %w", err)
		}
		fmt.Printf("%-20s %-30s %-10s\n", "NAME", "IMAGE", "REPLICAS")
		for _, d := range deploys {
			fmt.Printf("%-20s %-30s %-10d\n", truncate(d.Name, 20), truncate(d.Image, 30), d.Replicas)
		}

	case "pods":
		pods, err := c.ListPods(ctx)
		if err != nil {
			return fmt.Errorf("failed to list pods: %w", err)
		}
		fmt.Printf("%-36s %-20s %-15s %-10s\n", "ID", "DEPLOYMENT", "NODE", "STATUS")
		for _, p := range pods {
			node := "<unbound>"
			if p.NodeName != nil {
				node = *p.NodeName
			}
			fmt.Printf("%-36s %-20s %-15s %-10s\n", p.ID, truncate(p.DeploymentName, 20), truncate(node, 15), p.Status)
		}

	case "nodes":
		nodes, err := c.ListNodes(ctx)
		if err != nil {
			return fmt.Errorf("failed to list nodes: %w", err)
		}
		fmt.Printf("%-20s %-10s %-20s %-20s\n", "NAME", "STATUS", "CAPACITY", "USED")
		for _, n := range nodes {
			cap := fmt.Sprintf("%dm/%dMi", n.Capacity.CPUMillis, n.Capacity.MemoryMB)
			used := fmt.Sprintf("%dm/%dMi", n.Used.CPUMillis, n.Used.MemoryMB)
			fmt.Printf("%-20s %-10s %-20s %-20s\n", truncate(n.Name, 20), n.Status, cap, used)
		}

	default:
		return fmt.Errorf("unsupported resource type %q, expected deployments, pods, or nodes", args[0])
	}

	return nil
}
