package handlers

import (
	"net/http"

	"appcatalog/internal/service"
)

// SearchHandler handles HTTP requests for text search.
type SearchHandler struct {
	catalog service.CatalogService
	// external restricts the search to the package manager.
	external bool
}

// NewSearchHandler creates a handler for the merged local and external search.
func NewSearchHandler(catalog service.CatalogService) *SearchHandler {
	return &SearchHandler{catalog: catalog}
}

// NewExternalSearchHandler creates a handler that only queries the package manager.
func NewExternalSearchHandler(catalog service.CatalogService) *SearchHandler {
	return &SearchHandler{catalog: catalog, external: true}
}

// ServeHTTP handles GET /api/search?q=&source=&limit= and
// GET /api/search/external?q=&limit=.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	limit, err := queryLimit(r)
	if err != nil {
		handleServiceError(ctx, w, err, "")
		return
	}
	q := r.URL.Query()
	req := service.SearchRequest{Query: q.Get("q"), Source: q.Get("source"), Limit: limit}

	if h.external {
		apps, err := h.catalog.SearchExternal(ctx, req)
		if err != nil {
			handleServiceError(ctx, w, err, "Failed to search packages")
			return
		}
		writeJSON(ctx, w, http.StatusOK, service.SearchResponse{Results: apps})
		return
	}

	resp, err := h.catalog.Search(ctx, req)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to search catalog")
		return
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
