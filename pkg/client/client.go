package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cuemby/warren/pkg/types"
)

// DefaultTimeout is the design default for every outbound call: no call
// blocks forever, and a timed-out call is never retried in place — the
// caller's own loop re-executes it on its next tick.
const DefaultTimeout = 5 * time.Second

// Client is a thin HTTP/JSON wrapper over the master's API, used by both
// the agent and the CLI.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client targeting baseURL (e.g. "http://master:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// APIError is returned for any non-2xx response from the master.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("master returned %d: %s", e.Status, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach master: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errBody)
		return &APIError{Status: resp.StatusCode, Message: errBody.Error}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}

// CreateDeploymentRequest is the POST /deployments body.
type CreateDeploymentRequest struct {
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Replicas  int             `json:"replicas"`
	Resources types.Resources `json:"resources,omitempty"`
}

// UpdateDeploymentRequest is the PUT /deployments/{name} body; nil fields
// are left unchanged.
type UpdateDeploymentRequest struct {
	Replicas  *int             `json:"replicas,omitempty"`
	Image     *string          `json:"image,omitempty"`
	Resources *types.Resources `json:"resources,omitempty"`
}

// RegisterNodeRequest is the POST /nodes/register body.
type RegisterNodeRequest struct {
	Name     string          `json:"name"`
	Address  string          `json:"address"`
	Port     int             `json:"port"`
	Capacity types.Resources `json:"capacity"`
}

// ReportStatusRequest is the POST /pods/{id}/status body.
type ReportStatusRequest struct {
	Status      types.PodStatus `json:"status"`
	ContainerID *string         `json:"container_id,omitempty"`
}

// CreateDeployment posts a new deployment.
func (c *Client) CreateDeployment(ctx context.Context, req CreateDeploymentRequest) (*types.Deployment, error) {
	var out types.Deployment
	if err := c.do(ctx, http.MethodPost, "/deployments", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDeployments fetches every deployment.
func (c *Client) ListDeployments(ctx context.Context) ([]*types.Deployment, error) {
	var out []*types.Deployment
	if err := c.do(ctx, http.MethodGet, "/deployments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDeployment fetches a single deployment by name.
func (c *Client) GetDeployment(ctx context.Context, name string) (*types.Deployment, error) {
	var out types.Deployment
	if err := c.do(ctx, http.MethodGet, "/deployments/"+name, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDeployment applies a partial update to a deployment.
func (c *Client) UpdateDeployment(ctx context.Context, name string, req UpdateDeploymentRequest) (*types.Deployment, error) {
	var out types.Deployment
	if err := c.do(ctx, http.MethodPut, "/deployments/"+name, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDeployment deletes a deployment by name.
func (c *Client) DeleteDeployment(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/deployments/"+name, nil, nil)
}

// ListPods fetches every pod known to the master.
func (c *Client) ListPods(ctx context.Context) ([]*types.Pod, error) {
	var out []*types.Pod
	if err := c.do(ctx, http.MethodGet, "/pods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListNodes fetches every node known to the master.
func (c *Client) ListNodes(ctx context.Context) ([]*types.Node, error) {
	var out []*types.Node
	if err := c.do(ctx, http.MethodGet, "/nodes", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterNode registers (or re-registers) a node with the master.
func (c *Client) RegisterNode(ctx context.Context, req RegisterNodeRequest) (*types.Node, error) {
	var out types.Node
	if err := c.do(ctx, http.MethodPost, "/nodes/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Heartbeat reports liveness for a node. A 410 response means the master
// has evicted this node and the agent must re-register.
func (c *Client) Heartbeat(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/nodes/"+name+"/heartbeat", nil, nil)
}

// PodsForNode fetches the pods currently bound to name.
func (c *Client) PodsForNode(ctx context.Context, name string) ([]*types.Pod, error) {
	var out []*types.Pod
	if err := c.do(ctx, http.MethodGet, "/nodes/"+name+"/pods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReportPodStatus reports a pod's observed status and, when known, its
// runtime container id.
func (c *Client) ReportPodStatus(ctx context.Context, podID string, req ReportStatusRequest) error {
	return c.do(ctx, http.MethodPost, "/pods/"+podID+"/status", req, nil)
}

// Healthy checks the master's liveness endpoint.
func (c *Client) Healthy(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// IsEvicted reports whether err represents a 410 Gone response, signaling
// the caller's node identity has been evicted by the master.
func IsEvicted(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusGone
}
