package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cuemby/warren/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDeploymentRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/deployments", r.URL.Path)

		var req CreateDeploymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nginx", req.Name)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(types.Deployment{Name: req.Name, Image: req.Image, Replicas: req.Replicas})
	}))
	defer srv.Close()

	c := New(srv.URL)
	d, err := c.CreateDeployment(context.Background(), CreateDeploymentRequest{Name: "nginx", Image: "nginx:alpine", Replicas: 2})
	require.NoError(t, err)
	assert.Equal(t, "nginx", d.Name)
	assert.Equal(t, 2, d.Replicas)
}

func TestAPIErrorSurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "deployment not found"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetDeployment(context.Background(), "ghost")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "deployment not found", apiErr.Message)
}

func TestIsEvictedDetects410(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
		json.NewEncoder(w).Encode(map[string]string{"error": "node evicted"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Heartbeat(context.Background(), "node-1")
	require.Error(t, err)
	assert.True(t, IsEvicted(err))
}

func TestIsEvictedFalseForOtherErrors(t *testing.T) {
	assert.False(t, IsEvicted(nil))
	assert.False(t, IsEvicted(&APIError{Status: http.StatusInternalServerError}))
}
