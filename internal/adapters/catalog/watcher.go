package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/pkg/logger"
	"github.com/okian/hookah/pkg/metrics"
)

// Loader returns the current flavor list from the backing store.
type Loader func(ctx context.Context) ([]model.Flavor, error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithPollInterval sets the fallback poll period. Zero disables polling.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.interval = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(l logger.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// Watcher keeps a Catalog in sync with the flavors file. It reacts to
// filesystem events on the file's directory and also polls, reloading only
// when the content hash changes.
type Watcher struct {
	path     string
	catalog  *Catalog
	load     Loader
	interval time.Duration
	log      logger.Logger
	notify   func() (*fsnotify.Watcher, error)

	mu     sync.Mutex
	hash   uint64
	loaded bool
}

// NewWatcher returns a watcher for the file at path feeding c through load.
func NewWatcher(path string, c *Catalog, load Loader, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		catalog:  c,
		load:     load,
		interval: 8 * time.Second,
		log:      logger.Named("catalog"),
		notify:   fsnotify.NewWatcher,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reload refreshes the catalog when the file content changed since the
// last successful reload. It reports whether the catalog was replaced.
func (w *Watcher) Reload(ctx context.Context) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := os.ReadFile(w.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.RecordCatalogReload("error")
		return false, fmt.Errorf("read %s: %w", w.path, err)
	}
	sum := xxhash.Sum64(data)
	if w.loaded && sum == w.hash {
		metrics.RecordCatalogReload("unchanged")
		return false, nil
	}

	flavors, err := w.load(ctx)
	if err != nil {
		metrics.RecordCatalogReload("error")
		return false, err
	}
	n := w.catalog.Set(flavors)
	w.hash, w.loaded = sum, true

	metrics.RecordCatalogReload("changed")
	metrics.UpdateFlavorsTotal(n)
	w.log.Info(ctx, "catalog reloaded", logger.Int("flavors", n))
	return true, nil
}

// Run loads the catalog and keeps it fresh until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := w.Reload(ctx); err != nil {
		w.log.Warn(ctx, "initial catalog load failed", logger.Error(err))
	}

	// Without filesystem events the poll ticker alone keeps the catalog fresh.
	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if fw, err := w.notify(); err != nil {
		w.log.Warn(ctx, "fs watcher unavailable; polling only", logger.Error(err))
	} else {
		defer func() { _ = fw.Close() }()
		dir := filepath.Dir(w.path)
		if err := fw.Add(dir); err != nil {
			w.log.Warn(ctx, "watch catalog dir failed", logger.String("dir", dir), logger.Error(err))
		}
		events, errs = fw.Events, fw.Errors
	}

	var tick <-chan time.Time
	if w.interval > 0 {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reloadLogged(ctx)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "catalog watcher error", logger.Error(err))
		case <-tick:
			w.reloadLogged(ctx)
		}
	}
}

func (w *Watcher) reloadLogged(ctx context.Context) {
	if _, err := w.Reload(ctx); err != nil {
		w.log.Error(ctx, "catalog reload failed", logger.Error(err))
	}
}
