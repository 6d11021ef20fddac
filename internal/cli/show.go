package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"appcatalog/internal/screenshots"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the details of one application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if err := a.ensure(ctx); err != nil {
				return err
			}

			detail, err := a.catalog.Detail(ctx, args[0])
			if err != nil {
				return queryError(err)
			}
			return a.formatter.Success(detail, func(w io.Writer) { writeDetail(w, detail) })
		},
	}
}

// NewIconCommand creates the icon command.
func NewIconCommand(rootOpts *RootOptions) *cobra.Command {
	var sourceType string

	cmd := &cobra.Command{
		Use:   "icon <name>",
		Short: "Resolve an icon name to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			res, err := a.catalog.ResolveIcon(ctx, args[0], sourceType)
			if err != nil {
				return queryError(err)
			}
			return a.formatter.Success(res, func(w io.Writer) {
				fmt.Fprintln(w, iconText(res.Kind.String(), res.Path))
			})
		},
	}

	cmd.Flags().StringVar(&sourceType, "source-type", "", "row source type (local_appstream|flatpak|nixpkgs_search)")
	return cmd
}

// ScreenshotFile is one downloaded screenshot.
type ScreenshotFile struct {
	Slot  int    `json:"slot"`
	URL   string `json:"url"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewScreenshotsCommand creates the screenshots command.
func NewScreenshotsCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "screenshots <id>",
		Short: "Download the screenshots of one application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			if err := a.ensure(ctx); err != nil {
				return err
			}

			app, err := a.catalog.GetByID(ctx, args[0])
			if err != nil {
				return queryError(err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return WrapExitError(ExitCommandError, "failed to create output directory", err)
			}

			files := make([]ScreenshotFile, len(app.Screenshots))
			err = a.fetcher.FetchAll(ctx, app.Screenshots, func(res screenshots.Result) {
				f := ScreenshotFile{Slot: res.Slot, URL: res.URL}
				if res.Err != nil {
					f.Error = res.Err.Error()
				} else {
					f.Path = filepath.Join(outDir, fmt.Sprintf("%s-%d%s", app.ID, res.Slot, extension(res.ContentType, res.URL)))
					if err := os.WriteFile(f.Path, res.Data, 0o644); err != nil {
						f.Path, f.Error = "", err.Error()
					}
				}
				files[res.Slot] = f
			})
			if err != nil {
				return WrapExitError(ExitFailure, "screenshot download interrupted", err)
			}

			return a.formatter.Success(files, func(w io.Writer) {
				if len(files) == 0 {
					fmt.Fprintln(w, "No screenshots.")
				}
				for _, f := range files {
					if f.Error != "" {
						fmt.Fprintf(w, "[%d] %s: %s\n", f.Slot, f.URL, f.Error)
						continue
					}
					fmt.Fprintf(w, "[%d] %s\n", f.Slot, f.Path)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}

// extension picks a file extension from the content type, then the URL.
func extension(contentType, url string) string {
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := filepath.Ext(url); ext != "" && len(ext) <= 5 {
		return ext
	}
	return ".img"
}
