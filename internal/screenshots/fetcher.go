package screenshots

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"appcatalog/internal/contextutil"
)

const (
	// DefaultConcurrency bounds simultaneous downloads.
	DefaultConcurrency = 4
	// DefaultMaxBytes bounds one image body.
	DefaultMaxBytes int64 = 10 << 20
	// DefaultTimeout bounds one download.
	DefaultTimeout = 30 * time.Second
)

// ErrTooLarge is reported for bodies over the size limit.
var ErrTooLarge = errors.New("screenshot exceeds size limit")

// Result is the outcome of fetching the screenshot shown in one slot.
type Result struct {
	Slot        int
	URL         string
	ContentType string
	Data        []byte
	Err         error
}

// Fetcher downloads screenshot images.
type Fetcher struct {
	client      *http.Client
	concurrency int
	maxBytes    int64
}

// NewFetcher creates a Fetcher. A nil client gets DefaultTimeout; non-positive
// limits select the defaults.
func NewFetcher(client *http.Client, concurrency int, maxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Fetcher{client: client, concurrency: concurrency, maxBytes: maxBytes}
}

// FetchAll downloads every URL and calls deliver once per slot as each
// download finishes, in completion order. Calls to deliver are serialized.
// A failed download is delivered with Err set and does not affect other
// slots. Once ctx is done no further results are delivered and FetchAll
// returns ctx.Err().
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, deliver func(Result)) error {
	logger := contextutil.LoggerFromContext(ctx)
	sem := semaphore.NewWeighted(int64(f.concurrency))
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	for slot, url := range urls {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)

			res := Result{Slot: slot, URL: url}
			res.Data, res.ContentType, res.Err = f.fetch(gctx, url)
			if gctx.Err() != nil {
				return nil
			}
			if res.Err != nil {
				logger.DebugContext(ctx, "screenshot fetch failed", "slot", slot, "url", url, "error", res.Err)
			}

			mu.Lock()
			defer mu.Unlock()
			if gctx.Err() == nil {
				deliver(res)
			}
			return nil
		})
	}

	_ = g.Wait()
	return ctx.Err()
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid screenshot url: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch screenshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch screenshot: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read screenshot: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", ErrTooLarge
	}
	return data, resp.Header.Get("Content-Type"), nil
}
