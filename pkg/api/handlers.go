package api

import (
	"encoding/json"
	"net/http"

	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/store"
	"github.com/cuemby/warren/pkg/types"
	"github.com/gorilla/mux"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type createDeploymentRequest struct {
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Replicas  int             `json:"replicas"`
	Resources types.Resources `json:"resources"`
}

func (s *Server) handleCreateDeployment(w http.ResponseWriter, r *http.Request) {
	var req createDeploymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, store.NewInvalidSpecError("body", "malformed JSON body"))
		return
	}
	if req.Name == "" || req.Image == "" {
		writeError(w, store.NewInvalidSpecError("name/image", "name and image are required"))
		return
	}

	d, err := s.store.CreateDeployment(types.Deployment{
		Name:      req.Name,
		Image:     req.Image,
		Replicas:  req.Replicas,
		Resources: req.Resources,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDeployments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListDeployments())
}

func (s *Server) handleGetDeployment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	d, err := s.store.GetDeployment(name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type updateDeploymentRequest struct {
	Replicas  *int             `json:"replicas,omitempty"`
	Image     *string          `json:"image,omitempty"`
	Resources *types.Resources `json:"resources,omitempty"`
}

func (s *Server) handleUpdateDeployment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var req updateDeploymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, store.NewInvalidSpecError("body", "malformed JSON body"))
		return
	}

	d, err := s.store.UpdateDeployment(name, store.DeploymentUpdate{
		Replicas:  req.Replicas,
		Image:     req.Image,
		Resources: req.Resources,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDeployment(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.store.DeleteDeployment(name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleListPods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListPods())
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListNodes())
}

type registerNodeRequest struct {
	Name     string          `json:"name"`
	Address  string          `json:"address"`
	Port     int             `json:"port"`
	Capacity types.Resources `json:"capacity"`
}

func (s *Server) handleRegisterNode(w http.ResponseWriter, r *http.Request) {
	var req registerNodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, store.NewInvalidSpecError("body", "malformed JSON body"))
		return
	}
	if req.Name == "" {
		writeError(w, store.NewInvalidSpecError("name", "name is required"))
		return
	}

	n := s.store.RegisterNode(types.Node{
		Name:     req.Name,
		Address:  req.Address,
		Port:     req.Port,
		Capacity: req.Capacity,
	})
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.store.HeartbeatNode(name); err != nil {
		metrics.NodeHeartbeatsTotal.WithLabelValues("rejected").Inc()
		writeError(w, err)
		return
	}
	metrics.NodeHeartbeatsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePodsForNode(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	writeJSON(w, http.StatusOK, s.store.ListPodsByNode(name))
}

type reportStatusRequest struct {
	Status      types.PodStatus `json:"status"`
	ContainerID *string         `json:"container_id,omitempty"`
}

func (s *Server) handleReportPodStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req reportStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, store.NewInvalidSpecError("body", "malformed JSON body"))
		return
	}

	p, err := s.store.UpdatePodStatus(id, req.Status, req.ContainerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
