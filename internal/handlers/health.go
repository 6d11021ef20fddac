package handlers

import (
	"context"
	"net/http"
	"time"

	"appcatalog/internal/catalog"
	"appcatalog/internal/contextutil"
	"appcatalog/internal/service"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	catalog            service.CatalogService
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(catalog service.CatalogService) *HealthHandler {
	return &HealthHandler{
		catalog:            catalog,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Stored rows per source type
	Counts map[catalog.SourceType]int `json:"counts,omitempty"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles GET /api/health. An unreachable store is unhealthy
// (503); an empty catalog is degraded but still served.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !methodAllowed(w, r, http.MethodGet) {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	httpStatus := http.StatusOK

	counts, err := h.catalog.Counts(checkCtx)
	switch {
	case err != nil:
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "store health check failed", "error", err)
		response.Status = "unhealthy"
		response.Issues = append(response.Issues, "store_unavailable")
		httpStatus = http.StatusServiceUnavailable
	case total(counts) == 0:
		response.Status = "degraded"
		response.Issues = append(response.Issues, "catalog_empty")
		response.Counts = counts
	default:
		response.Counts = counts
	}

	writeJSON(ctx, w, httpStatus, response)
}

func total(counts map[catalog.SourceType]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
