package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_catalog_service.go -package=mocks appcatalog/internal/service CatalogService
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingester.go -package=mocks appcatalog/internal/service Ingester

import (
	"context"
	"errors"
	"strings"
	"sync"

	"appcatalog/internal/catalog"
	"appcatalog/internal/contextutil"
	"appcatalog/internal/description"
	"appcatalog/internal/icons"
	"appcatalog/internal/indexer"
	"appcatalog/internal/query"
	"appcatalog/internal/storage"
)

const (
	// DefaultLimit is the page size used when a request leaves it unset.
	DefaultLimit = 6
	// MaxLimit bounds every request.
	MaxLimit = 100
)

// Ingester populates and refreshes the catalog store.
type Ingester interface {
	EnsureCatalog(ctx context.Context) (indexer.Stats, error)
	Refresh(ctx context.Context) (indexer.Stats, error)
}

// BrowseRequest selects a category page.
type BrowseRequest struct {
	Category string
	Source   string
	Limit    int
	// RequireIcon drops rows without any displayable icon before truncating.
	RequireIcon bool
}

// SearchRequest is a text query.
type SearchRequest struct {
	Query  string
	Source string
	Limit  int
}

// Listing is a catalog row with its resolved icon.
type Listing struct {
	catalog.App
	ResolvedIcon icons.Resolution `json:"resolved_icon"`
}

// SearchResponse holds merged search results. ExternalError is set when the
// external search failed and only local rows are returned.
type SearchResponse struct {
	Results       []Listing `json:"results"`
	ExternalError string    `json:"external_error,omitempty"`
}

// AppDetail is everything a detail page shows for one record.
type AppDetail struct {
	App             catalog.App      `json:"app"`
	ResolvedIcon    icons.Resolution `json:"resolved_icon"`
	DescriptionText string           `json:"description_text"`
	DescriptionHTML string           `json:"description_html"`
	DescriptionMD   string           `json:"description_markdown"`
	DisplaySource   string           `json:"display_source"`
}

// CatalogService is the query-facing surface of the catalog.
type CatalogService interface {
	// EnsureCatalog populates an empty store from the bulk feeds.
	EnsureCatalog(ctx context.Context) (indexer.Stats, error)
	// Refresh re-ingests the feeds and drops cached pages.
	Refresh(ctx context.Context) (indexer.Stats, error)
	// BrowseCategory returns a random sample of a category.
	BrowseCategory(ctx context.Context, req BrowseRequest) ([]Listing, error)
	// Search runs the merged local and external text search.
	Search(ctx context.Context, req SearchRequest) (SearchResponse, error)
	// SearchExternal runs only the package manager search.
	SearchExternal(ctx context.Context, req SearchRequest) ([]Listing, error)
	// ResolveIcon locates the icon file for a record.
	ResolveIcon(ctx context.Context, iconID, sourceType string) (icons.Resolution, error)
	// GetByID returns a stored record or ErrNotFound.
	GetByID(ctx context.Context, id string) (catalog.App, error)
	// Detail returns a record with its rendered description and icon.
	Detail(ctx context.Context, id string) (AppDetail, error)
	// Counts returns the number of stored rows per source.
	Counts(ctx context.Context) (map[catalog.SourceType]int, error)
}

type catalogService struct {
	store    storage.AppStore
	ingester Ingester
	engine   *query.Engine
	icons    *icons.Resolver

	// shown remembers the source last browsed per category so a change of
	// source applies the engine's invalidation policy.
	mu    sync.Mutex
	shown map[string]catalog.SourceFilter
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store storage.AppStore, ingester Ingester, engine *query.Engine, resolver *icons.Resolver) CatalogService {
	return &catalogService{
		store:    store,
		ingester: ingester,
		engine:   engine,
		icons:    resolver,
		shown:    make(map[string]catalog.SourceFilter),
	}
}

func (s *catalogService) EnsureCatalog(ctx context.Context) (indexer.Stats, error) {
	stats, err := s.ingester.EnsureCatalog(ctx)
	if err != nil {
		return stats, WrapError(err, "failed to ensure catalog")
	}
	if stats.Ran {
		s.engine.Invalidate()
	}
	return stats, nil
}

func (s *catalogService) Refresh(ctx context.Context) (indexer.Stats, error) {
	stats, err := s.ingester.Refresh(ctx)
	s.engine.Invalidate()
	if err != nil {
		return stats, WrapError(err, "failed to refresh catalog")
	}
	return stats, nil
}

func (s *catalogService) BrowseCategory(ctx context.Context, req BrowseRequest) ([]Listing, error) {
	logger := contextutil.LoggerFromContext(ctx)

	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, &ValidationError{Field: "category", Message: "cannot be empty"}
	}
	filter, err := parseFilter(req.Source)
	if err != nil {
		return nil, err
	}
	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	s.switchSource(category, filter)
	apps, err := s.engine.BrowseCategory(ctx, category, filter, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to browse category", "category", category, "error", err)
		return nil, WrapError(err, "failed to browse category")
	}

	listings := make([]Listing, 0, limit)
	for _, app := range apps {
		if len(listings) >= limit {
			break
		}
		listing := s.listing(app)
		if req.RequireIcon && listing.ResolvedIcon.Kind == icons.KindNone {
			continue
		}
		listings = append(listings, listing)
	}

	logger.DebugContext(ctx, "category browsed", "category", category, "source", filter, "candidates", len(apps), "returned", len(listings))
	return listings, nil
}

func (s *catalogService) switchSource(category string, filter catalog.SourceFilter) {
	canonical := catalog.CanonicalCategory(category)
	s.mu.Lock()
	prev, seen := s.shown[canonical]
	s.shown[canonical] = filter
	s.mu.Unlock()
	if seen && prev != filter {
		s.engine.SwitchSource(category)
	}
}

func (s *catalogService) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	q := strings.TrimSpace(req.Query)
	if q == "" {
		return SearchResponse{}, &ValidationError{Field: "q", Message: "cannot be empty"}
	}
	filter, err := parseFilter(req.Source)
	if err != nil {
		return SearchResponse{}, err
	}
	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		return SearchResponse{}, err
	}

	res, err := s.engine.Search(ctx, q, filter, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search catalog", "query", q, "error", err)
		return SearchResponse{}, WrapError(err, "failed to search catalog")
	}

	resp := SearchResponse{Results: s.listings(res.Apps)}
	if res.ExternalErr != nil {
		resp.ExternalError = res.ExternalErr.Error()
	}
	logger.InfoContext(ctx, "search completed", "query", q, "source", filter, "results", len(resp.Results), "degraded", res.ExternalErr != nil)
	return resp, nil
}

func (s *catalogService) SearchExternal(ctx context.Context, req SearchRequest) ([]Listing, error) {
	q := strings.TrimSpace(req.Query)
	if q == "" {
		return nil, &ValidationError{Field: "q", Message: "cannot be empty"}
	}
	limit, err := normalizeLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	apps, err := s.engine.SearchExternal(ctx, q, limit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "external search failed", "query", q, "error", err)
		return nil, WrapError(errors.Join(ErrExternalService, err), "failed to search packages")
	}
	return s.listings(apps), nil
}

func (s *catalogService) ResolveIcon(ctx context.Context, iconID, sourceType string) (icons.Resolution, error) {
	source, err := parseSourceType(sourceType)
	if err != nil {
		return icons.Resolution{}, err
	}
	return s.icons.Resolve(strings.TrimSpace(iconID), source), nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (catalog.App, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return catalog.App{}, &ValidationError{Field: "id", Message: "cannot be empty"}
	}

	app, ok, err := s.engine.GetByID(ctx, id)
	if err != nil {
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to get app", "id", id, "error", err)
		return catalog.App{}, WrapError(err, "failed to get app")
	}
	if !ok {
		return catalog.App{}, notFound(id)
	}
	return app, nil
}

func (s *catalogService) Detail(ctx context.Context, id string) (AppDetail, error) {
	app, err := s.GetByID(ctx, id)
	if err != nil {
		return AppDetail{}, err
	}

	detail := AppDetail{
		App:             app,
		ResolvedIcon:    s.icons.Resolve(app.Icon, app.SourceType),
		DescriptionText: description.ToPlain(app.Description),
		DescriptionMD:   description.ToMarkdown(app.Description),
		DisplaySource:   DisplaySource(app.SourceType),
	}
	html, err := description.ToHTML(app.Description)
	if err != nil {
		// The plain rendering is still usable.
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to render description", "id", id, "error", err)
	}
	detail.DescriptionHTML = html
	return detail, nil
}

func (s *catalogService) Counts(ctx context.Context) (map[catalog.SourceType]int, error) {
	counts, err := s.store.CountBySource(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to count catalog")
	}
	return counts, nil
}

func (s *catalogService) listing(app catalog.App) Listing {
	return Listing{App: app, ResolvedIcon: s.icons.Resolve(app.Icon, app.SourceType)}
}

func (s *catalogService) listings(apps []catalog.App) []Listing {
	out := make([]Listing, 0, len(apps))
	for _, app := range apps {
		out = append(out, s.listing(app))
	}
	return out
}

func parseFilter(source string) (catalog.SourceFilter, error) {
	filter, err := catalog.ParseSourceFilter(source)
	if err != nil {
		return "", &ValidationError{Field: "source", Message: err.Error()}
	}
	return filter, nil
}

func parseSourceType(s string) (catalog.SourceType, error) {
	switch st := catalog.SourceType(strings.TrimSpace(s)); st {
	case "":
		return catalog.SourceLocalAppStream, nil
	case catalog.SourceLocalAppStream, catalog.SourceFlatpak, catalog.SourceNixpkgsSearch:
		return st, nil
	default:
		return "", &ValidationError{Field: "source_type", Message: "must be one of local_appstream, flatpak, nixpkgs_search"}
	}
}

func normalizeLimit(limit int) (int, error) {
	switch {
	case limit == 0:
		return DefaultLimit, nil
	case limit < 0:
		return 0, &ValidationError{Field: "limit", Message: "must be positive"}
	case limit > MaxLimit:
		return 0, &ValidationError{Field: "limit", Message: "must not exceed 100"}
	}
	return limit, nil
}

// DisplaySource is the label shown next to a result's name.
func DisplaySource(st catalog.SourceType) string {
	switch st {
	case catalog.SourceFlatpak:
		return "Flatpak"
	default:
		return "Nixpkgs"
	}
}
