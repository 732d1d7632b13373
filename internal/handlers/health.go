package handlers

import (
	"net/http"
	"runtime"
	"time"

	"doc-eater/internal/database"
	"doc-eater/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Pipeline state
	Documents database.StatusCounts `json:"documents"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.CountByStatus(r.Context())
	if err != nil {
		writeJSONError(w, "failed to query document counts", http.StatusInternalServerError)
		return
	}

	response := HealthResponse{
		Ready:        h.ready.Load(),
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Documents:    counts,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if response.Ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	writeJSON(w, response)
}

// Livez reports process liveness.
func (h *Handlers) Livez(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// Readyz reports whether the watcher is running and ingestion is
// accepting work.
func (h *Handlers) Readyz(w http.ResponseWriter, _ *http.Request) {
	if !h.ready.Load() {
		writeJSONError(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ready"})
}

// Version returns build information.
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
