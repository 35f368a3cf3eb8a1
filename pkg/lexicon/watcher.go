package lexicon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/JaimeStill/directive/pkg/lifecycle"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a lexicon file into a Holder whenever the file changes.
// It watches the parent directory so saves that rename a new file over the
// path are seen. A file that is missing or fails to parse leaves the
// previous table in place.
type Watcher struct {
	path     string
	holder   *Holder
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher creates a Watcher for path publishing into holder.
func NewWatcher(path string, holder *Holder, logger *slog.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		holder:   holder,
		logger:   logger.With("system", "lexicon"),
		debounce: defaultDebounce,
	}
}

// Reload reads the file once and publishes it. Unlike Load, a missing
// file is an error.
func (w *Watcher) Reload() error {
	t, err := loadFile(w.path)
	if err != nil {
		return err
	}
	w.holder.Store(t)
	w.logger.Info("lexicon reloaded", "path", w.path, "pairs", len(t.Pairs), "match", t.Match)
	return nil
}

// Start registers the watch loop with the lifecycle coordinator.
// The loop exits when the coordinator's context is cancelled. A missing
// directory disables watching rather than failing startup.
func (w *Watcher) Start(lc *lifecycle.Coordinator) error {
	dir := filepath.Dir(w.path)
	if _, err := os.Stat(dir); err != nil {
		w.logger.Warn("lexicon directory unavailable, not watching", "path", w.path, "error", err)
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create lexicon watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	w.logger.Info("watching lexicon", "path", w.path)

	lc.OnShutdown(func() {
		w.run(lc.Context(), fsw)
		w.logger.Info("lexicon watcher stopped")
	})

	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer fsw.Close()

	var (
		mu       sync.Mutex
		debounce *time.Timer
	)

	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if debounce != nil {
			debounce.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			mu.Lock()
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.debounce, func() {
				if err := w.Reload(); err != nil {
					w.logger.Error("lexicon reload failed", "path", w.path, "error", err)
				}
			})
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("lexicon watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
