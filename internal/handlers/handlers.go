package handlers

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"doc-eater/internal/database"
	"doc-eater/internal/imagestore"
	"doc-eater/internal/middleware"
)

// Handlers carries the dependencies shared by all HTTP handlers.
type Handlers struct {
	db        *database.Database
	images    *imagestore.Store
	startTime time.Time
	ready     atomic.Bool
}

// New creates the handler set.
func New(db *database.Database, images *imagestore.Store) *Handlers {
	return &Handlers{
		db:        db,
		images:    images,
		startTime: time.Now(),
	}
}

// SetReady flips the readiness state reported by /readyz. The
// composition root sets it once the watcher is running.
func (h *Handlers) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Router builds the operator API router with logging and metrics
// middleware applied.
func (h *Handlers) Router(logHealthChecks bool) *mux.Router {
	r := mux.NewRouter()

	logConfig := middleware.DefaultLoggingConfig()
	logConfig.LogHealthChecks = logHealthChecks
	r.Use(middleware.Logger(logConfig))
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.Livez).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.Readyz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/documents", h.ListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", h.GetDocument).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/logs", h.GetDocumentLogs).Methods(http.MethodGet)
	api.HandleFunc("/images", h.ListImages).Methods(http.MethodGet)
	api.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	api.HandleFunc("/version", h.Version).Methods(http.MethodGet)

	return r
}
