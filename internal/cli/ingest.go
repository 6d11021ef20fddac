package cli

import (
	"io"

	"github.com/spf13/cobra"

	"appcatalog/internal/indexer"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Populate the catalog from the bulk feeds",
		Long: `Ingest the local AppStream feed and the Flatpak catalog when the store
is empty. With --force the feeds are re-ingested regardless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			var stats indexer.Stats
			if force {
				stats, err = a.catalog.Refresh(ctx)
			} else {
				stats, err = a.catalog.EnsureCatalog(ctx)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "ingestion failed", err)
			}

			if err := a.formatter.Success(stats, func(w io.Writer) { writeStats(w, stats) }); err != nil {
				return err
			}
			if stats.Failed() {
				return WrapExitError(ExitFailure, "one or more sources stopped early", nil)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "re-ingest even when the catalog is populated")
	return cmd
}
