package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patrickwarner/edgeads/internal/edge"
	"github.com/patrickwarner/edgeads/internal/middleware"
)

// NewRouter wires the service endpoints. Everything that is not /health or
// /metrics goes through the edge runtime, which runs both hooks.
func NewRouter(s *Server, locator edge.Locator) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler())

	runtime := edge.NewRuntime(s.OnClientRequest, s.OnClientResponse, locator, s.Logger)
	r.PathPrefix("/").Handler(runtime)
	return r
}
