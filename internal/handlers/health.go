package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	applog "kaleido/internal/log"
)

type healthResponse struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Time     time.Time `json:"time"`
}

// Health is a simple readiness handler suitable for infrastructure probes.
// It reports database connectivity but stays 200 either way so probes do
// not restart the service during a transient outage.
func Health(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "health check requested", "method", r.Method)
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Time:     time.Now().UTC(),
	}

	if database == nil {
		resp.Database = "unconfigured"
	} else if sqlDB, err := database.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		resp.Database = "unreachable"
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		applog.Error(r.Context(), "failed to encode health response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	applog.Debug(r.Context(), "health check responded successfully")
}
