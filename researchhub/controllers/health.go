package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is the slice of sources.Store the health check needs.
type Pinger interface {
	Driver() string
	Ping(ctx context.Context) error
}

type HealthController struct {
	store Pinger
}

func NewHealthController(store Pinger) *HealthController {
	return &HealthController{store: store}
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}

func (h *HealthController) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Store: h.store.Driver()}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
