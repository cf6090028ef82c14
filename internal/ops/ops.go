// Package ops exposes the operational sidecar endpoints: liveness, counter
// snapshots, and pprof. It listens on its own port so the analytics API can
// be fronted by a proxy without leaking diagnostics.
package ops

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pulsegrid/internal/metrics"
)

// Server serves the diagnostics endpoints.
type Server struct {
	router   *chi.Mux
	registry *metrics.Registry
	started  time.Time
}

// NewServer builds the ops router around a counter registry.
func NewServer(registry *metrics.Registry) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		registry: registry,
		started:  time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Get("/debug/pprof/", pprof.Index)
	s.router.Get("/debug/pprof/cmdline", pprof.Cmdline)
	s.router.Get("/debug/pprof/profile", pprof.Profile)
	s.router.Get("/debug/pprof/symbol", pprof.Symbol)
	s.router.Get("/debug/pprof/trace", pprof.Trace)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"counters": s.registry.Snapshot(),
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Run blocks serving the diagnostics listener on the given port.
func (s *Server) Run(port string) error {
	return http.ListenAndServe(fmt.Sprintf(":%s", port), s.router)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
