package cli

import (
	"context"
	"errors"
	"net"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"

	apphttp "appcatalog/internal/http"
	"appcatalog/internal/refresh"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a local JSON API",
		Long: `Start the JSON API. The catalog is populated in the background when
empty; browse, detail and search answer 503 until that has finished. Feed
changes and the configured schedule trigger refreshes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts, cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :API_PORT)")
	return cmd
}

func runServe(opts *RootOptions, cmd *cobra.Command, addr string) error {
	a, ctx, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	logger := a.logger

	if addr == "" {
		addr = ":" + a.cfg.APIPort
	}

	// Populate in the background; catalog queries answer 503 until the
	// population has returned.
	ready := apphttp.NewReadiness()
	go func() {
		defer ready.MarkReady()
		stats, err := a.catalog.EnsureCatalog(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "failed to populate catalog", "error", err)
			return
		}
		if stats.Ran {
			logger.InfoContext(ctx, "catalog populated", "ingested", stats.Ingested())
		}
	}()

	refreshFn := func(ctx context.Context) error {
		_, err := a.catalog.Refresh(ctx)
		return err
	}

	if a.cfg.WatchFeeds {
		w, err := refresh.NewWatcher([]string{a.cfg.AppStreamPath, a.cfg.FlatpakFeed}, 0, refreshFn)
		switch {
		case errors.Is(err, refresh.ErrNothingToWatch):
			logger.WarnContext(ctx, "feed watching enabled but no feed directory exists")
		case err != nil:
			return WrapExitError(ExitCommandError, "failed to watch feeds", err)
		default:
			go func() { _ = w.Run(ctx) }()
			logger.InfoContext(ctx, "watching feeds for changes")
		}
	}

	if _, err := refresh.Schedule(ctx, a.cfg.RefreshSchedule, refreshFn); err != nil {
		return WrapExitError(ExitCommandError, "invalid refresh schedule", err)
	}

	server := &nethttp.Server{
		Addr:              addr,
		Handler:           apphttp.NewRouter(&apphttp.Deps{Catalog: a.catalog, Ready: ready}),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "starting API server", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitCommandError, "API server failed", err)
	case <-ctx.Done():
		logger.InfoContext(ctx, "shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
