package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() (*Server, *store.Store) {
	s := store.New()
	return NewServer(s), s
}

func doRequest(srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	var r *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	} else {
		r = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestCreateDeploymentReturns201(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(srv, http.MethodPost, "/deployments", createDeploymentRequest{
		Name: "nginx", Image: "nginx:alpine", Replicas: 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var d types.Deployment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "nginx", d.Name)
}

func TestCreateDuplicateDeploymentReturns409(t *testing.T) {
	srv, s := newTestServer()
	_, err := s.CreateDeployment(types.Deployment{Name: "nginx", Image: "nginx:alpine", Replicas: 1})
	require.NoError(t, err)

	w := doRequest(srv, http.MethodPost, "/deployments", createDeploymentRequest{Name: "nginx", Image: "nginx:alpine", Replicas: 1})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetMissingDeploymentReturns404(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(srv, http.MethodGet, "/deployments/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDeploymentMissingFieldsReturns400(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(srv, http.MethodPost, "/deployments", createDeploymentRequest{Replicas: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDeploymentMarksPodsTerminating(t *testing.T) {
	srv, s := newTestServer()
	_, err := s.CreateDeployment(types.Deployment{Name: "nginx", Image: "nginx:alpine", Replicas: 1})
	require.NoError(t, err)
	s.CreatePod(types.Pod{ID: "p1", DeploymentName: "nginx", Status: types.PodRunning})

	w := doRequest(srv, http.MethodDelete, "/deployments/nginx", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	pods := s.ListPodsByDeployment("nginx")
	require.Len(t, pods, 1)
	assert.Equal(t, types.PodTerminating, pods[0].Status)
}

func TestRegisterNodeThenHeartbeat(t *testing.T) {
	srv, _ := newTestServer()
	w := doRequest(srv, http.MethodPost, "/nodes/register", registerNodeRequest{
		Name: "a", Address: "10.0.0.1", Port: 9000,
		Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(srv, http.MethodPost, "/nodes/a/heartbeat", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHeartbeatAfterEvictionReturns410(t *testing.T) {
	srv, s := newTestServer()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024}})
	require.NoError(t, s.EvictNode("a"))

	w := doRequest(srv, http.MethodPost, "/nodes/a/heartbeat", nil)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestPodsForNodeAndReportStatus(t *testing.T) {
	srv, s := newTestServer()
	s.RegisterNode(types.Node{Name: "a", Capacity: types.Resources{CPUMillis: 1000, MemoryMB: 1024}})
	s.CreatePod(types.Pod{ID: "p1", DeploymentName: "nginx", Status: types.PodPending})
	_, err := s.BindPod("p1", "a")
	require.NoError(t, err)

	w := doRequest(srv, http.MethodGet, "/nodes/a/pods", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pods []*types.Pod
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pods))
	require.Len(t, pods, 1)

	containerID := "ctr-1"
	w = doRequest(srv, http.MethodPost, "/pods/p1/status", reportStatusRequest{Status: types.PodRunning, ContainerID: &containerID})
	assert.Equal(t, http.StatusOK, w.Code)

	p, err := s.GetPod("p1")
	require.NoError(t, err)
	assert.Equal(t, types.PodRunning, p.Status)
}
