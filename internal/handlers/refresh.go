package handlers

import (
	"context"
	"net/http"

	"appcatalog/internal/contextutil"
	"appcatalog/internal/service"
)

// RefreshHandler handles HTTP requests for re-ingesting the feeds.
type RefreshHandler struct {
	catalog service.CatalogService
	// done, when set, receives the refresh outcome. Used by tests.
	done chan<- error
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(catalog service.CatalogService) *RefreshHandler {
	return &RefreshHandler{catalog: catalog}
}

// RefreshResponse represents the response from the refresh endpoint.
type RefreshResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles POST /api/refresh. The refresh runs in the background
// and outlives the request.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodPost) {
		return
	}

	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "catalog refresh triggered via API")

	refreshCtx := context.WithoutCancel(ctx)
	go func() {
		stats, err := h.catalog.Refresh(refreshCtx)
		if err != nil {
			logger.ErrorContext(refreshCtx, "catalog refresh failed", "error", err)
		} else {
			logger.InfoContext(refreshCtx, "catalog refresh completed", "ingested", stats.Ingested(), "failed", stats.Failed())
		}
		if h.done != nil {
			h.done <- err
		}
	}()

	writeJSON(ctx, w, http.StatusAccepted, RefreshResponse{
		Message: "Catalog refresh started",
		Status:  "accepted",
	})
}
