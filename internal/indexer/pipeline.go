package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"appcatalog/internal/appstream"
	"appcatalog/internal/catalog"
	"appcatalog/internal/contextutil"
	"appcatalog/internal/storage"
)

// DefaultBatchSize is the number of records committed per transaction.
const DefaultBatchSize = 500

// Sources locates the bulk feeds read during ingestion. An empty path means
// the feed is not configured.
type Sources struct {
	// LocalFeed is the gzip DEP-11 YAML feed of the local distribution.
	LocalFeed string
	// FlatpakFeed is the gzip AppStream XML catalog of the flatpak remote.
	FlatpakFeed string
	// FlatpakOrigin is the remote name recorded on flatpak rows.
	FlatpakOrigin string
}

// Pipeline orchestrates the ingestion of bulk feeds into the catalog store.
type Pipeline struct {
	store     storage.AppStore
	sources   Sources
	batchSize int
	// key identifies the store; concurrent ingestion requests for the same
	// key share one run.
	key   string
	group singleflight.Group
	mu    sync.Mutex
}

// NewPipeline creates a new ingestion pipeline. storeKey identifies the
// backing store (its path). A non-positive batchSize selects DefaultBatchSize.
func NewPipeline(store storage.AppStore, sources Sources, batchSize int, storeKey string) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		store:     store,
		sources:   sources,
		batchSize: batchSize,
		key:       storeKey,
	}
}

// Sources returns the feeds the pipeline reads.
func (p *Pipeline) Sources() Sources {
	return p.sources
}

// EnsureCatalog ingests both feeds when the store is empty and does nothing
// otherwise. It returns an error only when the store cannot be queried.
func (p *Pipeline) EnsureCatalog(ctx context.Context) (Stats, error) {
	v, err, _ := p.group.Do("ensure:"+p.key, func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		n, err := p.store.Count(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("failed to count catalog: %w", err)
		}
		if n > 0 {
			contextutil.LoggerFromContext(ctx).DebugContext(ctx, "catalog already populated", "count", n)
			return Stats{}, nil
		}
		return p.ingestAll(ctx), nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

// Refresh re-ingests both feeds regardless of the current store contents.
// Existing rows are replaced through upserts; rows absent from the feeds are
// kept.
func (p *Pipeline) Refresh(ctx context.Context) (Stats, error) {
	v, _, _ := p.group.Do("refresh:"+p.key, func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.ingestAll(ctx), nil
	})
	stats := v.(Stats)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

func (p *Pipeline) ingestAll(ctx context.Context) Stats {
	logger := contextutil.LoggerFromContext(ctx)
	logger.InfoContext(ctx, "starting ingestion",
		"local_feed", p.sources.LocalFeed, "flatpak_feed", p.sources.FlatpakFeed)

	stats := Stats{Ran: true}
	stats.Sources = append(stats.Sources, p.ingestLocal(ctx))
	stats.Sources = append(stats.Sources, p.ingestFlatpak(ctx))

	logger.InfoContext(ctx, "ingestion completed", "ingested", stats.Ingested(), "failed", stats.Failed())
	return stats
}

func (p *Pipeline) ingestLocal(ctx context.Context) SourceStats {
	return p.ingest(ctx, catalog.SourceLocalAppStream, p.sources.LocalFeed, func(path string) (appstream.Stream, error) {
		return appstream.OpenYAMLFeed(path)
	})
}

func (p *Pipeline) ingestFlatpak(ctx context.Context) SourceStats {
	return p.ingest(ctx, catalog.SourceFlatpak, p.sources.FlatpakFeed, func(path string) (appstream.Stream, error) {
		return appstream.OpenXMLFeed(path, p.sources.FlatpakOrigin)
	})
}

// ingest streams one feed into the store. Per-document errors are counted
// and skipped. A store error or an unreadable feed stops this source; batches
// committed before the failure are kept.
func (p *Pipeline) ingest(ctx context.Context, source catalog.SourceType, path string, open func(string) (appstream.Stream, error)) (st SourceStats) {
	logger := contextutil.LoggerFromContext(ctx).With("source", source)
	start := time.Now()
	st = SourceStats{Source: source, Path: path}
	defer func() { st.Duration = time.Since(start) }()

	if path == "" {
		st.Unavailable = true
		logger.WarnContext(ctx, "feed not configured, skipping source")
		return st
	}

	stream, err := open(path)
	if err != nil {
		if errors.Is(err, catalog.ErrSourceUnavailable) {
			st.Unavailable = true
			logger.WarnContext(ctx, "feed unavailable, skipping source", "path", path)
			return st
		}
		st.Error = err.Error()
		logger.ErrorContext(ctx, "failed to open feed", "path", path, "error", err)
		return st
	}
	defer func() { _ = stream.Close() }()

	batch := make([]catalog.App, 0, p.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		defer func() { batch = batch[:0] }()

		err := p.store.UpsertBatch(ctx, batch)
		if err == nil {
			st.Ingested += len(batch)
			return nil
		}

		// The batch rolled back; store what the store accepts one by one.
		logger.WarnContext(ctx, "batch upsert failed, retrying records individually", "size", len(batch), "error", err)
		for _, app := range batch {
			if err := p.store.Upsert(ctx, app); err != nil {
				if !errors.Is(err, storage.ErrRejected) {
					return err
				}
				st.Malformed++
				logger.DebugContext(ctx, "skipping rejected record", "id", app.ID, "error", err)
				continue
			}
			st.Ingested++
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			st.Error = err.Error()
			logger.WarnContext(ctx, "ingestion canceled", "ingested", st.Ingested)
			break
		}

		app, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, appstream.ErrNotApplicable) {
				st.DocsSeen++
				st.Skipped++
				continue
			}
			if errors.Is(err, catalog.ErrMalformedDocument) {
				st.DocsSeen++
				st.Malformed++
				logger.DebugContext(ctx, "skipping malformed document", "error", err)
				continue
			}
			st.Error = err.Error()
			logger.ErrorContext(ctx, "feed unreadable, stopping source", "path", path, "error", err)
			break
		}

		st.DocsSeen++
		batch = append(batch, app)
		if len(batch) >= p.batchSize {
			if err := flush(); err != nil {
				st.Error = err.Error()
				logger.ErrorContext(ctx, "failed to store batch, stopping source", "error", err)
				return st
			}
		}
	}

	if st.Error != "" && ctx.Err() != nil {
		return st
	}
	if err := flush(); err != nil {
		st.Error = err.Error()
		logger.ErrorContext(ctx, "failed to store batch, stopping source", "error", err)
		return st
	}

	if st.Error != "" {
		return st
	}
	logger.InfoContext(ctx, "source ingested",
		"path", path, "docs", st.DocsSeen, "ingested", st.Ingested,
		"skipped", st.Skipped, "malformed", st.Malformed)
	return st
}
