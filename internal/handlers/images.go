package handlers

import (
	"net/http"

	"doc-eater/internal/database"
)

var validImageTypes = map[database.ImageType]bool{
	database.ImagePicture: true,
	database.ImageTable:   true,
	database.ImageFormula: true,
	database.ImageChart:   true,
	database.ImageDiagram: true,
	database.ImagePage:    true,
}

// ListImages returns extracted images of one type across all documents.
func (h *Handlers) ListImages(w http.ResponseWriter, r *http.Request) {
	imageType := database.ImageType(r.URL.Query().Get("type"))
	if imageType == "" {
		writeJSONError(w, "type parameter is required", http.StatusBadRequest)
		return
	}
	if !validImageTypes[imageType] {
		writeJSONError(w, "invalid image type", http.StatusBadRequest)
		return
	}
	limit, offset := pagination(r)

	images, err := h.db.ListImagesByType(r.Context(), imageType, limit, offset)
	if err != nil {
		writeJSONError(w, "failed to list images", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"images": images,
		"count":  len(images),
		"limit":  limit,
		"offset": offset,
	})
}
