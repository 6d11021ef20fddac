package nixsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"appcatalog/internal/appstream"
	"appcatalog/internal/catalog"
	"appcatalog/internal/contextutil"
)

const (
	// DefaultBinary is the package manager executable.
	DefaultBinary = "nix"
	// DefaultRegistry is the flake searched for packages.
	DefaultRegistry = "nixpkgs"
	// DefaultTimeout bounds one search invocation.
	DefaultTimeout = 30 * time.Second
)

// SearchError reports a failed external search. It matches
// catalog.ErrExternalSearch under errors.Is.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("external search %q: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Is matches catalog.ErrExternalSearch.
func (e *SearchError) Is(target error) bool {
	return target == catalog.ErrExternalSearch
}

// Searcher queries the package manager's search command.
type Searcher struct {
	runner   Runner
	binary   string
	registry string
	timeout  time.Duration
}

// NewSearcher creates a Searcher. Empty binary or registry and a
// non-positive timeout select the defaults.
func NewSearcher(runner Runner, binary, registry string, timeout time.Duration) *Searcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	if binary == "" {
		binary = DefaultBinary
	}
	if registry == "" {
		registry = DefaultRegistry
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Searcher{
		runner:   runner,
		binary:   binary,
		registry: registry,
		timeout:  timeout,
	}
}

// Search runs "<binary> search --json <registry> <query>" and returns at most
// limit hits in the order the command printed them. The query is passed
// unmodified; one starting with '-' follows a "--" so it is not read as a
// flag. A blank query or a non-positive limit returns no hits without
// running the command.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]catalog.App, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return []catalog.App{}, nil
	}

	logger := contextutil.LoggerFromContext(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	args := []string{"search", "--json", s.registry}
	if strings.HasPrefix(query, "-") {
		args = append(args, "--")
	}
	out, err := s.runner.Run(ctx, s.binary, append(args, query)...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
		}
		logger.WarnContext(ctx, "external search failed", "query", query, "error", err)
		return nil, &SearchError{Query: query, Err: err}
	}

	apps, err := decodeResults(out, limit)
	if err != nil {
		logger.WarnContext(ctx, "external search output malformed", "query", query, "error", err)
		return nil, &SearchError{Query: query, Err: err}
	}

	logger.DebugContext(ctx, "external search completed",
		"query", query, "hits", len(apps), "duration", time.Since(start))
	return apps, nil
}

// decodeResults reads the top-level JSON object token by token so that the
// command's key order is preserved, stopping after limit entries.
func decodeResults(out []byte, limit int) ([]catalog.App, error) {
	apps := []catalog.App{}
	if len(bytes.TrimSpace(out)) == 0 {
		return apps, nil
	}

	dec := json.NewDecoder(bytes.NewReader(out))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid search output: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("invalid search output: expected object, got %v", tok)
	}

	for dec.More() && len(apps) < limit {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid search output: %w", err)
		}
		attrPath, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("invalid search output: expected key, got %v", tok)
		}

		var pkg appstream.SearchPackage
		if err := dec.Decode(&pkg); err != nil {
			return nil, fmt.Errorf("invalid search output for %s: %w", attrPath, err)
		}
		apps = append(apps, appstream.FromSearchResult(attrPath, pkg))
	}
	return apps, nil
}
