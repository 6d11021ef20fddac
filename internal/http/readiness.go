package http

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"appcatalog/internal/contextutil"
	"appcatalog/internal/handlers"
)

// Readiness records whether the first catalog population has returned.
// Queries against a catalog still being populated would see partial data.
type Readiness struct {
	ready atomic.Bool
}

// NewReadiness creates a Readiness that is not yet ready.
func NewReadiness() *Readiness {
	return &Readiness{}
}

// MarkReady opens the gated routes.
func (r *Readiness) MarkReady() {
	r.ready.Store(true)
}

// Ready reports whether MarkReady has been called. A nil Readiness is
// always ready.
func (r *Readiness) Ready() bool {
	return r == nil || r.ready.Load()
}

// Require answers 503 until the catalog is ready.
func (r *Readiness) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.Ready() {
			next.ServeHTTP(w, req)
			return
		}
		ctx := req.Context()
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "catalog not ready, rejecting query", "path", req.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(handlers.ErrorResponse{Error: "Catalog is still loading"})
	})
}
