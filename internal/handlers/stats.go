package handlers

import (
	"net/http"

	"doc-eater/internal/database"
	"doc-eater/internal/imagestore"
)

// StatsResponse summarizes documents and image storage.
type StatsResponse struct {
	Documents database.StatusCounts `json:"documents"`
	Storage   imagestore.Stats      `json:"storage"`
}

// Stats returns document counts per status and an image storage scan.
// The storage scan walks the whole root; this is an operator path, not
// a hot path.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.db.CountByStatus(r.Context())
	if err != nil {
		writeJSONError(w, "failed to query document counts", http.StatusInternalServerError)
		return
	}

	storage, err := h.images.ScanStats()
	if err != nil {
		writeJSONError(w, "failed to scan image storage", http.StatusInternalServerError)
		return
	}

	writeJSON(w, StatsResponse{
		Documents: counts,
		Storage:   storage,
	})
}
