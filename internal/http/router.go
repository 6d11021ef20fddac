package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"appcatalog/internal/handlers"
	"appcatalog/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Catalog service.CatalogService
	// Ready gates the catalog query routes. Nil means always ready.
	Ready *Readiness
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/categories", handlers.CategoriesHandler{})
		r.Group(func(r chi.Router) {
			r.Use(deps.Ready.Require)
			r.Method(http.MethodGet, "/apps", handlers.NewBrowseHandler(deps.Catalog))
			r.Method(http.MethodGet, "/apps/{id}", handlers.NewDetailHandler(deps.Catalog))
			r.Method(http.MethodGet, "/search", handlers.NewSearchHandler(deps.Catalog))
		})
		r.Method(http.MethodGet, "/search/external", handlers.NewExternalSearchHandler(deps.Catalog))
		r.Method(http.MethodGet, "/icons", handlers.NewIconHandler(deps.Catalog))
		r.Method(http.MethodPost, "/refresh", handlers.NewRefreshHandler(deps.Catalog))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Catalog))
	})

	return r
}
