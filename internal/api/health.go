package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

type healthResponse struct {
	Status           string `json:"status"`
	FlagsInitialized *bool  `json:"flags_initialized,omitempty"`
	FeatureStore     string `json:"feature_store"`
}

// HealthHandler reports whether the flag client and feature store are usable.
// It answers 503 when either is known to be down.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	resp := healthResponse{Status: "ok", FeatureStore: "disabled"}
	status := http.StatusOK

	if s.FlagClient != nil {
		initialized := s.FlagClient.Initialized()
		resp.FlagsInitialized = &initialized
		if !initialized {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	if s.Store != nil {
		resp.FeatureStore = "ok"
		if !s.Store.IsStoreAvailable() {
			resp.FeatureStore = "unavailable"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)

	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
