package handlers

import (
	"net/http"

	"appcatalog/internal/service"
)

// IconHandler resolves icon ids to files.
type IconHandler struct {
	catalog service.CatalogService
}

// NewIconHandler creates a new IconHandler.
func NewIconHandler(catalog service.CatalogService) *IconHandler {
	return &IconHandler{catalog: catalog}
}

// ServeHTTP handles GET /api/icons?icon=&source_type=.
func (h *IconHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	res, err := h.catalog.ResolveIcon(ctx, q.Get("icon"), q.Get("source_type"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to resolve icon")
		return
	}
	writeJSON(ctx, w, http.StatusOK, res)
}
