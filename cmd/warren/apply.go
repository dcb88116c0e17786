package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cuemby/warren/pkg/client"
	"github.com/cuemby/warren/pkg/manifest"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a deployment manifest",
	Long: `Apply one or more Deployment manifests from a YAML file.

Examples:
  # Apply a single deployment
  warren apply -f deployment.yaml

  # Apply a multi-document manifest
  warren apply -f deployments.yaml`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	applyCmd.Flags().String("master", "http://127.0.0.1:8080", "Master API base URL")
	_ = applyCmd.MarkFlagRequired("file")
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	master, _ := cmd.Flags().GetString("master")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	deploys, err := manifest.ParseAll(data)
	if err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	c := client.New(master)
	ctx := context.Background()

	for _, d := range deploys {
		req := client.CreateDeploymentRequest{
			Name:      d.Name,
			Image:     d.Image,
			Replicas:  d.Replicas,
			Resources: d.Resources,
		}

		if _, err := c.GetDeployment(ctx, d.Name); err == nil {
			replicas := d.Replicas
			updated, err := c.UpdateDeployment(ctx, d.Name, client.UpdateDeploymentRequest{
				Replicas: &replicas,
				Image:    &req.Image,
			})
			if err != nil {
				return fmt.Errorf("failed to update deployment %s: %w", d.Name, err)
			}
			fmt.Printf("deployment/%s updated (replicas=%d)\n", updated.Name, updated.Replicas)
			continue
		}

		created, err := c.CreateDeployment(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to create deployment %s: %w", d.Name, err)
		}
		fmt.Printf("deployment/%s created\n", created.Name)
	}

	return nil
}
