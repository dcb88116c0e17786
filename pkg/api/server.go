package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/store"
	"github.com/gorilla/mux"
)

// Server is a thin HTTP/JSON CRUD layer over the Store, plus the two
// endpoints the agent executor depends on to converge its node.
type Server struct {
	store  *store.Store
	router *mux.Router
}

// NewServer builds a Server with every route registered.
func NewServer(s *store.Store) *Server {
	srv := &Server{store: s, router: mux.NewRouter()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	s.router.HandleFunc("/deployments", s.handleCreateDeployment).Methods(http.MethodPost)
	s.router.HandleFunc("/deployments", s.handleListDeployments).Methods(http.MethodGet)
	s.router.HandleFunc("/deployments/{name}", s.handleGetDeployment).Methods(http.MethodGet)
	s.router.HandleFunc("/deployments/{name}", s.handleUpdateDeployment).Methods(http.MethodPut)
	s.router.HandleFunc("/deployments/{name}", s.handleDeleteDeployment).Methods(http.MethodDelete)

	s.router.HandleFunc("/pods", s.handleListPods).Methods(http.MethodGet)

	s.router.HandleFunc("/nodes", s.handleListNodes).Methods(http.MethodGet)
	s.router.HandleFunc("/nodes/register", s.handleRegisterNode).Methods(http.MethodPost)
	s.router.HandleFunc("/nodes/{name}/heartbeat", s.handleHeartbeat).Methods(http.MethodPost)
	s.router.HandleFunc("/nodes/{name}/pods", s.handlePodsForNode).Methods(http.MethodGet)

	s.router.HandleFunc("/pods/{id}/status", s.handleReportPodStatus).Methods(http.MethodPost)

	s.router.Use(s.metricsMiddleware)
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.WithComponent("api").Info().Str("addr", addr).Msg("api server listening")
	return server.ListenAndServe()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := metrics.NewTimer()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		timer.ObserveDurationVec(metrics.APIRequestDuration, r.Method, route)
		metrics.APIRequestsTotal.WithLabelValues(r.Method, route, http.StatusText(rec.status)).Inc()
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case store.IsKind(err, store.KindNotFound):
		status = http.StatusNotFound
	case store.IsKind(err, store.KindAlreadyExists), store.IsKind(err, store.KindAlreadyBound):
		status = http.StatusConflict
	case store.IsKind(err, store.KindInvalidSpec):
		status = http.StatusBadRequest
	case store.IsKind(err, store.KindEvicted):
		status = http.StatusGone
	case store.IsKind(err, store.KindIllegalTransition):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
