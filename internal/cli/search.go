package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"appcatalog/internal/catalog"
	"appcatalog/internal/query"
	"appcatalog/internal/service"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		source      string
		limit       int
		external    bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search application names and summaries",
		Long: `Search the catalog by name and summary. With the nixpkgs source, live
nix search results are appended after catalog matches; when nix search fails
the catalog matches are still shown.

With --interactive, queries are read one per line from standard input. Each
new query supersedes the previous one and superseded results are dropped.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if interactive {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if external {
				listings, err := a.catalog.SearchExternal(ctx, service.SearchRequest{Query: strings.Join(args, " "), Limit: limit})
				if err != nil {
					return queryError(err)
				}
				return a.formatter.Success(listings, func(w io.Writer) { writeListings(w, listings) })
			}

			if err := a.ensure(ctx); err != nil {
				return err
			}
			if interactive {
				return runInteractiveSearch(ctx, a, cmd.InOrStdin(), source, limit)
			}

			resp, err := a.catalog.Search(ctx, service.SearchRequest{Query: strings.Join(args, " "), Source: source, Limit: limit})
			if err != nil {
				return queryError(err)
			}
			return a.formatter.Success(resp, func(w io.Writer) { writeSearch(w, resp) })
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source filter (nixpkgs|flatpak|all)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum results (default 6)")
	cmd.Flags().BoolVar(&external, "external", false, "only query nix search")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read queries from standard input")
	return cmd
}

func writeSearch(w io.Writer, resp service.SearchResponse) {
	writeListings(w, resp.Results)
	if resp.ExternalError != "" {
		fmt.Fprintf(w, "(nix search unavailable: %s)\n", resp.ExternalError)
	}
}

// runInteractiveSearch dispatches every input line as an asynchronous
// search. Only results for the most recent line are printed.
func runInteractiveSearch(ctx context.Context, a *app, in io.Reader, source string, limit int) error {
	session := query.NewSession()
	var (
		wg  sync.WaitGroup
		out sync.Mutex
	)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			session.Reset()
			continue
		}

		ticket := session.Submit(q)
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := a.catalog.Search(ctx, service.SearchRequest{Query: ticket.Query, Source: source, Limit: limit})
			if err != nil {
				a.logger.WarnContext(ctx, "search failed", "query", ticket.Query, "error", err)
				return
			}
			apps := make([]catalog.App, len(resp.Results))
			for i, l := range resp.Results {
				apps[i] = l.App
			}
			if !session.Complete(ticket, query.Results{Apps: apps}) {
				a.logger.DebugContext(ctx, "discarding superseded results", "query", ticket.Query)
				return
			}

			out.Lock()
			defer out.Unlock()
			_ = a.formatter.Success(resp, func(w io.Writer) {
				fmt.Fprintf(w, "== %s\n", ticket.Query)
				writeSearch(w, resp)
			})
		}()
	}

	wg.Wait()
	return scanner.Err()
}
