package query

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_external_searcher.go -package=mocks appcatalog/internal/query ExternalSearcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"appcatalog/internal/catalog"
	"appcatalog/internal/contextutil"
	"appcatalog/internal/storage"
)

// OverFetchFactor multiplies the browse limit so callers filtering rows
// afterwards (e.g. by icon availability) still fill a page.
const OverFetchFactor = 3

// ExternalSearcher queries the package manager for packages not in the
// local catalog.
type ExternalSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]catalog.App, error)
}

// InvalidationPolicy selects which cached category pages are dropped when
// the user switches source.
type InvalidationPolicy string

const (
	// InvalidateCurrent drops only the pages of the category being viewed.
	InvalidateCurrent InvalidationPolicy = "current"
	// InvalidateAll drops every cached page.
	InvalidateAll InvalidationPolicy = "all"
)

// ParseInvalidationPolicy parses a configured policy. An empty string
// selects InvalidateCurrent.
func ParseInvalidationPolicy(s string) (InvalidationPolicy, error) {
	switch InvalidationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", InvalidateCurrent:
		return InvalidateCurrent, nil
	case InvalidateAll:
		return InvalidateAll, nil
	default:
		return "", fmt.Errorf("unknown cache invalidation policy %q: must be current or all", s)
	}
}

// Results is the outcome of a composite search.
type Results struct {
	// Apps holds local hits first, then external hits not already present
	// locally.
	Apps []catalog.App `json:"apps"`
	// ExternalErr is set when the external leg failed and only local hits
	// are returned.
	ExternalErr error `json:"-"`
}

type pageKey struct {
	category string
	filter   catalog.SourceFilter
	limit    int
}

// Engine composes store reads and external search into the operations the
// presentation layer consumes.
type Engine struct {
	store    storage.AppStore
	external ExternalSearcher
	policy   InvalidationPolicy

	mu    sync.Mutex
	pages map[pageKey][]catalog.App
}

// NewEngine creates an Engine. external may be nil, in which case searches
// are local only.
func NewEngine(store storage.AppStore, external ExternalSearcher, policy InvalidationPolicy) *Engine {
	if policy == "" {
		policy = InvalidateCurrent
	}
	return &Engine{
		store:    store,
		external: external,
		policy:   policy,
		pages:    make(map[pageKey][]catalog.App),
	}
}

// Policy returns the cache invalidation policy in effect.
func (e *Engine) Policy() InvalidationPolicy {
	return e.policy
}

// BrowseCategory returns up to limit*OverFetchFactor random rows of category
// for the source filter. Callers truncate to limit after their own
// filtering. Pages are cached until invalidated.
func (e *Engine) BrowseCategory(ctx context.Context, category string, filter catalog.SourceFilter, limit int) ([]catalog.App, error) {
	if limit <= 0 {
		return []catalog.App{}, nil
	}

	key := pageKey{category: catalog.CanonicalCategory(category), filter: filter, limit: limit}

	e.mu.Lock()
	page, ok := e.pages[key]
	e.mu.Unlock()
	if ok {
		return clonePage(page), nil
	}

	apps, err := e.store.ByCategory(ctx, key.category, filter, limit*OverFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to browse category %s: %w", key.category, err)
	}

	e.mu.Lock()
	e.pages[key] = apps
	e.mu.Unlock()

	return clonePage(apps), nil
}

// SwitchSource applies the invalidation policy for a source switch while
// category is displayed.
func (e *Engine) SwitchSource(category string) {
	if e.policy == InvalidateAll {
		e.Invalidate()
		return
	}

	canonical := catalog.CanonicalCategory(category)
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.pages {
		if k.category == canonical {
			delete(e.pages, k)
		}
	}
}

// Invalidate drops every cached page. It is called after a refresh.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pages = make(map[pageKey][]catalog.App)
}

// CachedPages returns the number of cached category pages.
func (e *Engine) CachedPages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages)
}

// Search runs the local text search and, for the nixpkgs filter, the
// external search. External hits are appended after local hits, skipping
// those whose install ref a local hit already has. An external failure is
// reported in Results.ExternalErr and does not fail the call.
func (e *Engine) Search(ctx context.Context, query string, filter catalog.SourceFilter, limit int) (Results, error) {
	query = strings.TrimSpace(query)
	if query == "" || limit <= 0 {
		return Results{Apps: []catalog.App{}}, nil
	}

	local, err := e.store.SearchText(ctx, query, filter, limit)
	if err != nil {
		return Results{}, fmt.Errorf("failed to search catalog: %w", err)
	}
	res := Results{Apps: local}

	if filter != catalog.FilterNixpkgs || e.external == nil {
		return res, nil
	}

	external, err := e.external.Search(ctx, query, limit)
	if err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "external search failed, returning local results",
			"query", query, "local", len(local), "error", err)
		res.ExternalErr = err
		return res, nil
	}

	res.Apps = mergeExternal(local, external)
	return res, nil
}

// SearchExternal runs only the external search.
func (e *Engine) SearchExternal(ctx context.Context, query string, limit int) ([]catalog.App, error) {
	if e.external == nil {
		return nil, fmt.Errorf("%w: no external searcher configured", catalog.ErrExternalSearch)
	}
	return e.external.Search(ctx, query, limit)
}

// GetByID looks up a stored record. The boolean is false when no record
// has the id.
func (e *Engine) GetByID(ctx context.Context, id string) (catalog.App, bool, error) {
	app, err := e.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return catalog.App{}, false, nil
	}
	if err != nil {
		return catalog.App{}, false, fmt.Errorf("failed to get app %s: %w", id, err)
	}
	return app, true, nil
}

// mergeExternal appends external hits after local ones. An external hit is
// dropped when a local row already installs the same attribute, or when an
// earlier external hit has the same full attribute path.
func mergeExternal(local, external []catalog.App) []catalog.App {
	installed := make(map[string]bool, len(local))
	for _, app := range local {
		if app.InstallRef != "" {
			installed[app.InstallRef] = true
		}
	}

	merged := make([]catalog.App, 0, len(local)+len(external))
	merged = append(merged, local...)
	seen := make(map[string]bool, len(external))
	for _, app := range external {
		if installed[app.InstallRef] || seen[app.ID] {
			continue
		}
		seen[app.ID] = true
		merged = append(merged, app)
	}
	return merged
}

func clonePage(page []catalog.App) []catalog.App {
	out := make([]catalog.App, len(page))
	copy(out, page)
	return out
}
