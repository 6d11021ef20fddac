package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"

	"appcatalog/internal/catalog"
)

// DriverName is the database/sql driver registered by this package. It is
// go-sqlite3 with per-connection pragmas and a casefold() SQL function.
const DriverName = "sqlite3_appcatalog"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{ConnectHook: configureConn})
}

// connPragmas run on every new connection; busy_timeout and foreign_keys
// are per-connection settings in SQLite.
var connPragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
}

func configureConn(conn *sqlite3.SQLiteConn) error {
	for _, pragma := range connPragmas {
		if _, err := conn.Exec(pragma, nil); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return conn.RegisterFunc("casefold", casefold, true)
}

// casefold is the Unicode case folding used for case-insensitive category
// and text matching. SQLite's LOWER only folds ASCII.
func casefold(s string) string {
	return cases.Fold().String(s)
}

// New opens the catalog database at the given path, creating the parent
// directory when needed. Failures match catalog.ErrStoreUnavailable.
func New(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: failed to create store directory: %v", catalog.ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}

	return db, nil
}

// appsColumns are the columns Migrate guarantees on the apps table. Stores
// written by older releases lack the source columns and get them added.
var appsColumns = []struct {
	name string
	decl string
}{
	{"source_type", "TEXT NOT NULL DEFAULT 'local_appstream'"},
	{"nix_package_attribute", "TEXT"},
	{"flatpak_ref", "TEXT"},
	{"origin", "TEXT"},
}

// appsTable creates the apps table under the given name.
const appsTable = `CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL,
			source_type TEXT NOT NULL DEFAULT 'local_appstream',
			name TEXT,
			summary TEXT,
			description TEXT,
			icon TEXT,
			developer TEXT,
			license TEXT,
			homepage TEXT,
			screenshots TEXT,
			category TEXT,
			nix_package_attribute TEXT,
			flatpak_ref TEXT,
			origin TEXT,
			PRIMARY KEY (source_type, id)
		);`

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(fmt.Sprintf(appsTable, "apps")); err != nil {
		return fmt.Errorf("%w: failed to create apps table: %v", catalog.ErrStoreUnavailable, err)
	}

	info, err := tableColumns(db, "apps")
	if err != nil {
		return err
	}
	for _, col := range appsColumns {
		if info.columns[col.name] {
			continue
		}
		if _, err := db.Exec(fmt.Sprintf("ALTER TABLE apps ADD COLUMN %s %s", col.name, col.decl)); err != nil {
			return fmt.Errorf("%w: failed to add column %s: %v", catalog.ErrStoreUnavailable, col.name, err)
		}
	}

	// Older stores key rows by id alone, which rejects the same id from
	// two sources.
	if len(info.primaryKey) == 1 && info.primaryKey[0] == "id" {
		if err := rekeyApps(db); err != nil {
			return err
		}
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_apps_source_id ON apps (source_type, id);`,
		`CREATE INDEX IF NOT EXISTS idx_apps_id ON apps (id);`,
		`CREATE INDEX IF NOT EXISTS idx_apps_name ON apps (name);`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
		}
	}

	return nil
}

// rekeyApps rebuilds the apps table with the (source_type, id) primary key,
// copying every row.
func rekeyApps(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin rekey: %v", catalog.ErrStoreUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`DROP TABLE IF EXISTS apps_rekeyed`,
		fmt.Sprintf(appsTable, "apps_rekeyed"),
		`INSERT OR REPLACE INTO apps_rekeyed (id, source_type, name, summary, description, icon,
			developer, license, homepage, screenshots, category,
			nix_package_attribute, flatpak_ref, origin)
		 SELECT id, COALESCE(NULLIF(source_type, ''), 'local_appstream'), name, summary, description, icon,
			developer, license, homepage, screenshots, category,
			nix_package_attribute, flatpak_ref, origin
		 FROM apps WHERE id IS NOT NULL`,
		`DROP TABLE apps`,
		`ALTER TABLE apps_rekeyed RENAME TO apps`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w: failed to rekey apps table: %v", catalog.ErrStoreUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit rekey: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// tableInfo is what PRAGMA table_info reports about a table.
type tableInfo struct {
	columns map[string]bool
	// primaryKey lists the key columns in key order.
	primaryKey []string
}

func tableColumns(db *sql.DB, table string) (tableInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return tableInfo{}, fmt.Errorf("%w: failed to inspect %s: %v", catalog.ErrStoreUnavailable, table, err)
	}
	defer func() { _ = rows.Close() }()

	info := tableInfo{columns: make(map[string]bool)}
	keyed := make(map[int]string)
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return tableInfo{}, fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
		}
		info.columns[name] = true
		if pk > 0 {
			keyed[pk] = name
		}
	}
	if err := rows.Err(); err != nil {
		return tableInfo{}, fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	for i := 1; i <= len(keyed); i++ {
		info.primaryKey = append(info.primaryKey, keyed[i])
	}
	return info, nil
}
