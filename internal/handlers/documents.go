package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"doc-eater/internal/database"
)

var validStatuses = map[database.DocumentStatus]bool{
	database.StatusPending:    true,
	database.StatusProcessing: true,
	database.StatusCompleted:  true,
	database.StatusFailed:     true,
}

var validLogLevels = map[database.LogLevel]bool{
	database.LogInfo:    true,
	database.LogWarning: true,
	database.LogError:   true,
}

// DocumentListResponse is the paginated document listing.
type DocumentListResponse struct {
	Documents []database.Document `json:"documents"`
	Count     int                 `json:"count"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

// DocumentDetailResponse is one document with its images and metadata.
type DocumentDetailResponse struct {
	Document *database.Document       `json:"document"`
	Images   []database.DocumentImage `json:"images"`
	Metadata map[string]string        `json:"metadata"`
}

// ListDocuments returns documents newest first, optionally filtered by
// status.
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	status := database.DocumentStatus(r.URL.Query().Get("status"))
	if status != "" && !validStatuses[status] {
		writeJSONError(w, "invalid status filter", http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	docs, err := h.db.ListDocuments(r.Context(), status, limit, offset)
	if err != nil {
		writeJSONError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}

	writeJSON(w, DocumentListResponse{
		Documents: docs,
		Count:     len(docs),
		Limit:     limit,
		Offset:    offset,
	})
}

// GetDocument returns one document with its images and metadata.
func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.db.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "document not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, "failed to load document", http.StatusInternalServerError)
		return
	}

	images, err := h.db.ListImages(r.Context(), id)
	if err != nil {
		writeJSONError(w, "failed to load images", http.StatusInternalServerError)
		return
	}

	metadata, err := h.db.GetMetadata(r.Context(), id)
	if err != nil {
		writeJSONError(w, "failed to load metadata", http.StatusInternalServerError)
		return
	}

	writeJSON(w, DocumentDetailResponse{
		Document: doc,
		Images:   images,
		Metadata: metadata,
	})
}

// GetDocumentLogs returns the processing log trail for a document,
// optionally filtered by level.
func (h *Handlers) GetDocumentLogs(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.db.GetDocument(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "document not found", http.StatusNotFound)
			return
		}
		writeJSONError(w, "failed to load document", http.StatusInternalServerError)
		return
	}

	level := database.LogLevel(r.URL.Query().Get("level"))
	if level != "" && !validLogLevels[level] {
		writeJSONError(w, "invalid level filter", http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	logs, err := h.db.ListLogs(r.Context(), id, level, limit, offset)
	if err != nil {
		writeJSONError(w, "failed to list logs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"logs":   logs,
		"count":  len(logs),
		"limit":  limit,
		"offset": offset,
	})
}
