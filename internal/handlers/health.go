package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "recetario/internal/log"
)

type healthResponse struct {
	Status  string    `json:"status"`
	Time    time.Time `json:"time"`
	Recipes *int      `json:"recipes,omitempty"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status: "ok",
		Time:   time.Now().UTC(),
	}
	status := http.StatusOK

	if catalog != nil {
		list, err := catalog.Recipes(r.Context())
		if err != nil {
			applog.Error(r.Context(), "health check could not read recipes", "error", err)
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			count := len(list)
			resp.Recipes = &count
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		return
	}
	applog.Debug(r.Context(), "health check responded", "status", resp.Status)
}
