package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/groupcast/groupcast/internal/metrics"
)

// Routes returns the route table for the service.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /user/{id}/groups", s.handleUserGroups)
	mux.HandleFunc("POST /group", s.handleCreateGroup)
	mux.HandleFunc("POST /group/{id}", s.handleManageGroup)
	mux.HandleFunc("GET /listen/{user_id}", s.handleUserStream)
	mux.HandleFunc("GET /broadcast/{group}", s.handleGroupStream)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return mux
}
