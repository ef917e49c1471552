// Package watch re-triggers analysis when source files under a set of roots change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Singularity-ng/singularity-analysis/internal/scanner"
	"github.com/Singularity-ng/singularity-analysis/pkg/config"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher collects write and create events for analyzable files and hands
// them to a callback in batches once they have settled.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	scanner   *scanner.Scanner
	roots     []string
	files     map[string]struct{}
	debounce  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors and registered directories.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New creates a watcher over paths. Directories are watched recursively
// using the same exclusion rules as the scanner; files are watched on their own.
func New(cfg *config.Config, paths []string, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		scanner:   scanner.NewScanner(cfg),
		files:     make(map[string]struct{}),
		debounce:  DefaultDebounce,
		logger:    slog.Default(),
		pending:   make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		p = filepath.Clean(p)
		if info.IsDir() {
			w.roots = append(w.roots, p)
		} else {
			w.files[p] = struct{}{}
		}
	}
	return w, nil
}

// Run registers the watched directories and blocks until ctx is done,
// calling onChange with the sorted paths that settled since the last call.
// onChange runs on the watch goroutine, so batches never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, paths []string)) error {
	if err := w.register(); err != nil {
		return err
	}

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, time.Now())

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case now := <-ticker.C:
			if ready := w.flush(now); len(ready) > 0 {
				onChange(ctx, ready)
			}
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

// WatchList returns the directories currently registered.
func (w *Watcher) WatchList() []string {
	return w.fsWatcher.WatchList()
}

func (w *Watcher) register() error {
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return err
		}
	}
	for f := range w.files {
		if err := w.fsWatcher.Add(filepath.Dir(f)); err != nil {
			return err
		}
	}
	return nil
}

// addTree registers dir and every directory below it that the scanner
// would descend into.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && w.scanner.SkipsDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return err
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event, now time.Time) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.insideRoot(path) && !w.scanner.SkipsDir(info.Name()) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("failed to watch directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.matches(path) {
		return
	}
	w.mu.Lock()
	w.pending[path] = now
	w.mu.Unlock()
}

func (w *Watcher) matches(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, root := range w.roots {
		if w.scanner.Matches(root, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) insideRoot(dir string) bool {
	for _, root := range w.roots {
		rel, err := filepath.Rel(root, dir)
		if err == nil && !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

// flush removes and returns the paths that have been quiet for the
// debounce period as of now.
func (w *Watcher) flush(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	sort.Strings(ready)
	return ready
}
