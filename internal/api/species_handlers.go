package api

import (
	"net/http"

	"github.com/cascadiaherp/shellwatch/internal/middleware"
	"github.com/cascadiaherp/shellwatch/internal/species"
)

// SpeciesHandlers serves the turtle species catalog used by the
// per-turtle detail dropdown.
type SpeciesHandlers struct {
	catalog *species.Catalog
}

// NewSpeciesHandlers creates a new SpeciesHandlers instance.
func NewSpeciesHandlers(catalog *species.Catalog) *SpeciesHandlers {
	return &SpeciesHandlers{catalog: catalog}
}

// SpeciesListResponse is the body for GET /species.
type SpeciesListResponse struct {
	Species []species.Entry `json:"species"`
}

// List handles GET /species - returns all selectable species.
func (h *SpeciesHandlers) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r.Context(), http.StatusOK, SpeciesListResponse{Species: h.catalog.List()})
}

// Get handles GET /species/{id} - returns one species entry.
func (h *SpeciesHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, ok := h.catalog.FindByID(id)
	if !ok {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "Species not found")
		return
	}
	writeJSON(w, r.Context(), http.StatusOK, entry)
}
