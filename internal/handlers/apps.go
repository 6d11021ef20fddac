package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"appcatalog/internal/catalog"
	"appcatalog/internal/service"
)

// BrowseHandler handles HTTP requests for category pages.
type BrowseHandler struct {
	catalog service.CatalogService
}

// NewBrowseHandler creates a new BrowseHandler.
func NewBrowseHandler(catalog service.CatalogService) *BrowseHandler {
	return &BrowseHandler{catalog: catalog}
}

// AppsResponse is a list of catalog rows.
type AppsResponse struct {
	Apps []service.Listing `json:"apps"`
}

// ServeHTTP handles GET /api/apps?category=&source=&limit=&require_icon=.
func (h *BrowseHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
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
	requireIcon, _ := strconv.ParseBool(q.Get("require_icon"))
	category := q.Get("category")
	if category == "" {
		category = catalog.Featured
	}

	apps, err := h.catalog.BrowseCategory(ctx, service.BrowseRequest{
		Category:    category,
		Source:      q.Get("source"),
		Limit:       limit,
		RequireIcon: requireIcon,
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to browse category")
		return
	}

	writeJSON(ctx, w, http.StatusOK, AppsResponse{Apps: apps})
}

// CategoriesHandler lists the browse categories.
type CategoriesHandler struct{}

// CategoriesResponse lists browse labels in display order.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// ServeHTTP handles GET /api/categories.
func (CategoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, CategoriesResponse{Categories: catalog.SidebarCategories()})
}

// DetailHandler handles HTTP requests for one record.
type DetailHandler struct {
	catalog service.CatalogService
}

// NewDetailHandler creates a new DetailHandler.
func NewDetailHandler(catalog service.CatalogService) *DetailHandler {
	return &DetailHandler{catalog: catalog}
}

// ServeHTTP handles GET /api/apps/{id}.
func (h *DetailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	detail, err := h.catalog.Detail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to load app")
		return
	}

	writeJSON(ctx, w, http.StatusOK, detail)
}
