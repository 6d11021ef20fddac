package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"appcatalog/internal/catalog"
	"appcatalog/internal/service"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		source      string
		limit       int
		requireIcon bool
	)

	cmd := &cobra.Command{
		Use:   "browse [category]",
		Short: "Show a random sample of a category",
		Long: fmt.Sprintf(`Show a random sample of applications in a category.

Categories: %v. Any other AppStream category name also works.
Without a category, Featured (every category) is sampled.`, catalog.SidebarCategories()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := catalog.Featured
			if len(args) == 1 {
				category = args[0]
			}

			a, ctx, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if err := a.ensure(ctx); err != nil {
				return err
			}

			listings, err := a.catalog.BrowseCategory(ctx, service.BrowseRequest{
				Category:    category,
				Source:      source,
				Limit:       limit,
				RequireIcon: requireIcon,
			})
			if err != nil {
				return queryError(err)
			}
			return a.formatter.Success(listings, func(w io.Writer) { writeListings(w, listings) })
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source filter (nixpkgs|flatpak|all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of applications (default 6)")
	cmd.Flags().BoolVar(&requireIcon, "require-icon", false, "skip applications without an icon")
	return cmd
}

// queryError maps a service error to an exit error.
func queryError(err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}
	return WrapExitError(ExitFailure, "query failed", err)
}
