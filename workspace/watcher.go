package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Listener receives settled file system changes for matching sources.
type Listener interface {
	FileChanged(path string)
	FileDeleted(path string)
}

// Watcher forwards create, write, remove and rename events below a root
// to a Listener, debounced per path.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filter   *Filter
	listener Listener
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewWatcher(filter *Filter, listener Listener, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{
		watcher:  fw,
		filter:   filter,
		listener: listener,
		debounce: debounce,
		logger:   logger,
		pending:  make(map[string]*time.Timer),
	}
	if err := w.addTree(filter.root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree watches dir and every directory below it the filter does not skip.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.filter.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("cannot watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.filter.SkipDir(event.Name) {
				if err := w.addTree(event.Name); err != nil {
					w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}
	if !w.filter.Match(event.Name) {
		return
	}

	deleted := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
	if !deleted && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	w.schedule(event.Name, deleted)
}

// schedule delivers the last event seen for path once it has been quiet for
// the debounce interval.
func (w *Watcher) schedule(path string, deleted bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		current := w.release(path, timer)
		w.mu.Unlock()
		if current {
			w.deliver(path, deleted)
		}
	})
	w.pending[path] = timer
}

// release drops the pending entry for path if timer still owns it. A timer
// replaced by a later event reports false. w.mu must be held.
func (w *Watcher) release(path string, timer *time.Timer) bool {
	if w.pending[path] != timer {
		return false
	}
	delete(w.pending, path)
	return true
}

func (w *Watcher) deliver(path string, deleted bool) {
	if deleted {
		w.logger.Debug("file deleted", "path", path)
		w.listener.FileDeleted(path)
		return
	}
	w.logger.Debug("file changed", "path", path)
	w.listener.FileChanged(path)
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
