// Package watch rebuilds a site when its source tree changes.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// DefaultDebounce coalesces bursts of events (editor saves, git checkouts).
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches every directory below a source root except the output
// directory and excluded entries.
type Watcher struct {
	root     string
	output   string
	exclude  []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New starts watching root. debounce <= 0 selects DefaultDebounce. Changes
// to entries matching exclude (path.Match patterns, as in build.exclude)
// are ignored.
func New(root string, debounce time.Duration, exclude ...string) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	w := &Watcher{
		root:     abs,
		output:   filepath.Join(abs, site.OutputDir),
		exclude:  exclude,
		debounce: debounce,
		fsw:      fsw,
	}
	if err := w.addDirsRecursive(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addDirsRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// ignored reports whether a change at path must not trigger a rebuild:
// anything in the output directory, excluded entries, hidden entries and
// editor temp files.
func (w *Watcher) ignored(path string) bool {
	if path == w.output || strings.HasPrefix(path, w.output+string(filepath.Separator)) {
		return true
	}
	if path == w.root {
		return false
	}
	if rel, err := filepath.Rel(w.root, path); err == nil && w.excluded(filepath.ToSlash(rel)) {
		return true
	}
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}

// excluded matches rel and each of its parent directories against the
// exclude patterns.
func (w *Watcher) excluded(rel string) bool {
	for p := rel; p != "." && p != "/"; p = pathpkg.Dir(p) {
		if site.Excluded(p, w.exclude) {
			return true
		}
	}
	return false
}

// Run calls rebuild after each debounced burst of changes until ctx is
// done. Rebuilds never overlap; changes during a rebuild queue exactly one
// more. Rebuild errors are logged, not returned.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	defer w.fsw.Close()

	requests := make(chan struct{}, 1)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(w.debounce, func() {
			select {
			case requests <- struct{}{}:
			default:
			}
		})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-requests:
				slog.Info("Change detected; rebuilding site", logfields.Source(w.root))
				if err := rebuild(ctx); err != nil {
					slog.Warn("Rebuild failed", logfields.Error(err))
				}
			}
		}
	}()
	defer wg.Wait()

	slog.Info("Watching source tree", logfields.Source(w.root))
	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev, trigger)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event, trigger func()) {
	if w.ignored(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// Close stops watching without running.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
