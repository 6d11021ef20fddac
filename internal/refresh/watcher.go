package refresh

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"appcatalog/internal/contextutil"
)

// DefaultDebounce is the quiet period after the last feed change before a
// refresh runs.
const DefaultDebounce = 2 * time.Second

// ErrNothingToWatch is returned when none of the feed directories exist.
var ErrNothingToWatch = errors.New("no feed directory to watch")

// Func re-ingests the feeds and invalidates anything derived from them.
type Func func(ctx context.Context) error

// Watcher triggers a refresh when a feed file is written or replaced.
type Watcher struct {
	watcher *fsnotify.Watcher
	feeds   map[string]struct{}
	// links are feed directories that are symlinks. Flatpak swaps its
	// active symlink to a new commit directory on update.
	links    map[string]struct{}
	debounce time.Duration
	refresh  Func
}

// NewWatcher watches the parent directories of feeds. When that directory
// is a symlink its parent is watched too, so replacing the link counts as a
// feed change. Empty paths and directories that do not exist are skipped.
// A non-positive debounce selects DefaultDebounce.
func NewWatcher(feeds []string, debounce time.Duration, refresh Func) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  watcher,
		feeds:    make(map[string]struct{}),
		links:    make(map[string]struct{}),
		debounce: debounce,
		refresh:  refresh,
	}

	dirs := make(map[string]struct{})
	for _, feed := range feeds {
		if feed == "" {
			continue
		}
		feed = filepath.Clean(feed)
		dir := filepath.Dir(feed)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		w.feeds[feed] = struct{}{}

		watch := []string{dir}
		if info, err := os.Lstat(dir); err == nil && info.Mode()&os.ModeSymlink != 0 {
			w.links[dir] = struct{}{}
			watch = append(watch, filepath.Dir(dir))
		}
		for _, d := range watch {
			if _, ok := dirs[d]; ok {
				continue
			}
			if err := watcher.Add(d); err != nil {
				_ = watcher.Close()
				return nil, fmt.Errorf("failed to watch %s: %w", d, err)
			}
			dirs[d] = struct{}{}
		}
	}

	if len(dirs) == 0 {
		_ = watcher.Close()
		return nil, ErrNothingToWatch
	}
	return w, nil
}

// Run processes file events until ctx is done. Bursts of changes within the
// debounce period produce one refresh.
func (w *Watcher) Run(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)
	defer func() { _ = w.watcher.Close() }()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.DebugContext(ctx, "feed changed", "path", event.Name, "op", event.Op.String())
			if _, ok := w.links[filepath.Clean(event.Name)]; ok {
				w.rewatch(ctx, event.Name)
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "feed watcher error", "error", err)
		case <-timer.C:
			logger.InfoContext(ctx, "feeds changed, refreshing catalog")
			if err := w.refresh(ctx); err != nil {
				logger.ErrorContext(ctx, "refresh after feed change failed", "error", err)
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	name := filepath.Clean(event.Name)
	_, feed := w.feeds[name]
	_, link := w.links[name]
	if !feed && !link {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// rewatch moves the watch on a replaced symlink to its new target.
func (w *Watcher) rewatch(ctx context.Context, link string) {
	_ = w.watcher.Remove(link)
	if info, err := os.Stat(link); err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(link); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to watch replaced feed directory", "path", link, "error", err)
	}
}
