package cli

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"appcatalog/internal/config"
	"appcatalog/internal/contextutil"
	"appcatalog/internal/icons"
	"appcatalog/internal/indexer"
	"appcatalog/internal/nixsearch"
	"appcatalog/internal/query"
	"appcatalog/internal/screenshots"
	"appcatalog/internal/service"
	"appcatalog/internal/storage"
)

// app is the wired catalog shared by every command.
type app struct {
	cfg       *config.Config
	db        *sql.DB
	catalog   service.CatalogService
	fetcher   *screenshots.Fetcher
	logger    *slog.Logger
	formatter *OutputFormatter
}

// openApp loads configuration, opens the store and wires the catalog.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, context.Context, error) {
	cfg, err := opts.LoadConfig()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	logger := newLogger(cfg, opts.Verbose, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	ctx := contextutil.WithLogger(cmd.Context(), logger)

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open catalog store", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, WrapExitError(ExitCommandError, "failed to migrate catalog store", err)
	}
	logger.DebugContext(ctx, "catalog store opened", "path", cfg.DBPath)

	policy, err := query.ParseInvalidationPolicy(cfg.CacheInvalidation)
	if err != nil {
		_ = db.Close()
		return nil, nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	repo := storage.NewAppRepo(db)
	pipeline := indexer.NewPipeline(repo, indexer.Sources{
		LocalFeed:     cfg.AppStreamPath,
		FlatpakFeed:   cfg.FlatpakFeed,
		FlatpakOrigin: cfg.FlatpakRemote,
	}, cfg.IngestBatchSize, cfg.DBPath)
	searcher := nixsearch.NewSearcher(nixsearch.ExecRunner{}, cfg.NixBinary, cfg.NixRegistry, cfg.ExternalSearchTimeout)
	engine := query.NewEngine(repo, searcher, policy)
	resolver := icons.NewResolver(cfg.PlaceholderPath, cfg.FlatpakFeed, cfg.AppStreamPath)

	return &app{
		cfg:     cfg,
		db:      db,
		catalog: service.NewCatalogService(repo, pipeline, engine, resolver),
		fetcher: screenshots.NewFetcher(nil, cfg.ScreenshotConcurrency, 0),
		logger:  logger,
		formatter: &OutputFormatter{
			Format: opts.Format,
			Writer: cmd.OutOrStdout(),
		},
	}, ctx, nil
}

// ensure populates an empty catalog before a query command runs.
func (a *app) ensure(ctx context.Context) error {
	if _, err := a.catalog.EnsureCatalog(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to prepare catalog", err)
	}
	return nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// newLogger builds the process logger. Logs go to w so that command output
// on stdout stays parseable.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
