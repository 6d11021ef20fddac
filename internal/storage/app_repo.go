package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_app_store.go -package=mocks appcatalog/internal/storage AppStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"

	"appcatalog/internal/catalog"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrRejected is returned when a constraint refuses one record. The
	// store itself is still usable.
	ErrRejected = errors.New("record rejected")
)

// AppStore defines the interface for catalog storage operations.
type AppStore interface {
	// Upsert inserts a record or replaces every column of the existing record
	// with the same (source_type, id).
	Upsert(ctx context.Context, app catalog.App) error
	// UpsertBatch upserts all records in a single transaction.
	UpsertBatch(ctx context.Context, apps []catalog.App) error
	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)
	// CountBySource returns the number of stored records per source type.
	CountBySource(ctx context.Context) (map[catalog.SourceType]int, error)
	// ByCategory returns up to limit random records whose category set
	// contains category (case-insensitive substring). Featured matches all.
	ByCategory(ctx context.Context, category string, filter catalog.SourceFilter, limit int) ([]catalog.App, error)
	// SearchText returns up to limit records whose name or summary contains
	// query (case-insensitive), ordered by name.
	SearchText(ctx context.Context, query string, filter catalog.SourceFilter, limit int) ([]catalog.App, error)
	// GetByID returns the record with id, preferring local_appstream over
	// flatpak on collision. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (catalog.App, error)
	// GetBySource returns the record keyed by (source, id).
	// Returns ErrNotFound if absent.
	GetBySource(ctx context.Context, source catalog.SourceType, id string) (catalog.App, error)
}

// AppRepo provides methods for catalog record operations.
// It implements the AppStore interface.
type AppRepo struct {
	db *sql.DB
	// mu serializes writers; SQLite allows a single writer at a time.
	mu sync.Mutex
}

// NewAppRepo creates a new AppRepo.
func NewAppRepo(db *sql.DB) *AppRepo {
	return &AppRepo{db: db}
}

const selectColumns = `SELECT id,
	COALESCE(NULLIF(source_type, ''), 'local_appstream'),
	COALESCE(name, ''), COALESCE(summary, ''), COALESCE(description, ''),
	COALESCE(icon, ''), COALESCE(developer, ''), COALESCE(license, ''),
	COALESCE(homepage, ''), COALESCE(screenshots, ''), COALESCE(category, ''),
	COALESCE(nix_package_attribute, ''), COALESCE(flatpak_ref, ''),
	COALESCE(origin, '')
	FROM apps`

const upsertSQL = `INSERT INTO apps (id, source_type, name, summary, description, icon,
		developer, license, homepage, screenshots, category,
		nix_package_attribute, flatpak_ref, origin)
	 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	 ON CONFLICT (source_type, id) DO UPDATE SET
		name = excluded.name, summary = excluded.summary,
		description = excluded.description, icon = excluded.icon,
		developer = excluded.developer, license = excluded.license,
		homepage = excluded.homepage, screenshots = excluded.screenshots,
		category = excluded.category,
		nix_package_attribute = excluded.nix_package_attribute,
		flatpak_ref = excluded.flatpak_ref, origin = excluded.origin`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Upsert inserts a new record or replaces the existing one.
func (r *AppRepo) Upsert(ctx context.Context, app catalog.App) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return upsert(ctx, r.db, app)
}

// UpsertBatch upserts apps in one transaction. Either every record is
// written or none is; callers retry with Upsert to isolate a rejected record.
func (r *AppRepo) UpsertBatch(ctx context.Context, apps []catalog.App) error {
	if len(apps) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, app := range apps {
		if err := upsert(ctx, tx, app); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func upsert(ctx context.Context, ex execer, app catalog.App) error {
	app.Normalize()

	screenshots, err := json.Marshal(app.Screenshots)
	if err != nil {
		return fmt.Errorf("failed to encode screenshots: %w", err)
	}
	categories, err := json.Marshal(app.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	var attr, ref sql.NullString
	if app.SourceType.UsesAttributePath() {
		attr = sql.NullString{String: app.InstallRef, Valid: app.InstallRef != ""}
	} else {
		ref = sql.NullString{String: app.InstallRef, Valid: app.InstallRef != ""}
	}
	origin := sql.NullString{String: app.Origin, Valid: app.Origin != ""}

	_, err = ex.ExecContext(ctx, upsertSQL,
		app.ID, string(app.SourceType), app.Name, app.Summary, app.Description, app.Icon,
		app.Developer, app.License, app.Homepage, string(screenshots), string(categories),
		attr, ref, origin,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s/%s: %v", ErrRejected, app.SourceType, app.ID, err)
		}
		return fmt.Errorf("failed to upsert app %s/%s: %w", app.SourceType, app.ID, err)
	}
	return nil
}

// Count returns the total number of stored records.
func (r *AppRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM apps").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count apps: %w", err)
	}
	return n, nil
}

// CountBySource returns the number of stored records per source type.
func (r *AppRepo) CountBySource(ctx context.Context) (map[catalog.SourceType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT COALESCE(NULLIF(source_type, ''), 'local_appstream'), COUNT(*)
		 FROM apps GROUP BY 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to count apps by source: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[catalog.SourceType]int)
	for rows.Next() {
		var (
			source string
			n      int
		)
		if err := rows.Scan(&source, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[catalog.ParseSourceType(source)] += n
	}
	return counts, rows.Err()
}

// ByCategory returns up to limit randomly ordered records in category. The
// source filter is applied before the limit.
func (r *AppRepo) ByCategory(ctx context.Context, category string, filter catalog.SourceFilter, limit int) ([]catalog.App, error) {
	if limit <= 0 {
		return []catalog.App{}, nil
	}

	var (
		where []string
		args  []any
	)
	if category != catalog.Featured {
		where = append(where, "INSTR(casefold(COALESCE(category, '')), casefold(?)) > 0")
		args = append(args, catalog.CanonicalCategory(category))
	}
	where, args = appendSourceFilter(where, args, filter)

	query := selectColumns + whereClause(where) + " ORDER BY RANDOM() LIMIT ?"
	args = append(args, limit)
	return r.query(ctx, query, args...)
}

// SearchText returns up to limit records whose name or summary contains
// query, ordered by name.
func (r *AppRepo) SearchText(ctx context.Context, query string, filter catalog.SourceFilter, limit int) ([]catalog.App, error) {
	if limit <= 0 {
		return []catalog.App{}, nil
	}

	pattern := "%" + escapeLike(casefold(query)) + "%"
	where := []string{`(casefold(COALESCE(name, '')) LIKE ? ESCAPE '\' OR casefold(COALESCE(summary, '')) LIKE ? ESCAPE '\')`}
	args := []any{pattern, pattern}
	where, args = appendSourceFilter(where, args, filter)

	q := selectColumns + whereClause(where) + " ORDER BY name LIMIT ?"
	args = append(args, limit)
	return r.query(ctx, q, args...)
}

// GetByID returns the record with id. When the id exists under several
// sources, local_appstream wins over flatpak.
func (r *AppRepo) GetByID(ctx context.Context, id string) (catalog.App, error) {
	apps, err := r.query(ctx, selectColumns+` WHERE id = ?
		ORDER BY CASE COALESCE(NULLIF(source_type, ''), 'local_appstream')
			WHEN 'local_appstream' THEN 0
			WHEN 'flatpak' THEN 1
			ELSE 2 END
		LIMIT 1`, id)
	if err != nil {
		return catalog.App{}, err
	}
	if len(apps) == 0 {
		return catalog.App{}, ErrNotFound
	}
	return apps[0], nil
}

// GetBySource returns the record keyed by (source, id).
func (r *AppRepo) GetBySource(ctx context.Context, source catalog.SourceType, id string) (catalog.App, error) {
	apps, err := r.query(ctx, selectColumns+` WHERE id = ?
		AND COALESCE(NULLIF(source_type, ''), 'local_appstream') = ? LIMIT 1`, id, string(source))
	if err != nil {
		return catalog.App{}, err
	}
	if len(apps) == 0 {
		return catalog.App{}, ErrNotFound
	}
	return apps[0], nil
}

func (r *AppRepo) query(ctx context.Context, query string, args ...any) ([]catalog.App, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	apps := []catalog.App{}
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate apps: %w", err)
	}
	return apps, nil
}

func scanApp(rows *sql.Rows) (catalog.App, error) {
	var (
		app                     catalog.App
		source                  string
		screenshots, categories string
		attr, ref               string
	)
	if err := rows.Scan(&app.ID, &source, &app.Name, &app.Summary, &app.Description,
		&app.Icon, &app.Developer, &app.License, &app.Homepage, &screenshots, &categories,
		&attr, &ref, &app.Origin); err != nil {
		return catalog.App{}, fmt.Errorf("failed to scan app: %w", err)
	}

	app.SourceType = catalog.ParseSourceType(source)
	app.Screenshots = decodeList(screenshots)
	app.Categories = decodeList(categories)
	if app.SourceType.UsesAttributePath() {
		app.InstallRef = attr
	} else {
		app.InstallRef = ref
	}
	app.Normalize()
	return app, nil
}

// decodeList reads a JSON string array column. Legacy rows store a single
// bare value, which is returned as a one-element list.
func decodeList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []string{s}
	}
	if out == nil {
		return []string{}
	}
	return out
}

func appendSourceFilter(where []string, args []any, filter catalog.SourceFilter) ([]string, []any) {
	types := filter.SourceTypes()
	if len(types) == 0 {
		return where, args
	}
	placeholders := make([]string, len(types))
	for i, t := range types {
		placeholders[i] = "?"
		args = append(args, string(t))
	}
	where = append(where, fmt.Sprintf("COALESCE(NULLIF(source_type, ''), 'local_appstream') IN (%s)", strings.Join(placeholders, ", ")))
	return where, args
}

func whereClause(where []string) string {
	if len(where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(where, " AND ")
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
