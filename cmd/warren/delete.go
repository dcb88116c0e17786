package main

import (
	"context"
	"fmt"

	"github.com/cuemby/warren/pkg/client"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a deployment",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().String("master", "http://127.0.0.1:8080", "Master API base URL")
}

func runDelete(cmd *cobra.Command, args []string) error {
	master, _ := cmd.Flags().GetString("master")
	name := args[0]

	c := client.New(master)
	if err := c.DeleteDeployment(context.Background(), name); err != nil {
		return fmt.Errorf("failed to delete deployment %s: %w", name, err)
	}

	fmt.Printf("deployment/%s deleted\n", name)
	return nil
}
