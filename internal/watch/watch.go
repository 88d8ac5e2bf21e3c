// Package watch keeps the skeleton cache warm. It watches a root
// directory for file changes and re-reduces changed files after a
// debounce interval, so the next copy is served from cache.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	ignore "github.com/sabhiram/go-gitignore"

	"smartcontext/internal/cache"
	"smartcontext/internal/logging"
	"smartcontext/internal/scan"
	"smartcontext/internal/skeleton"
)

// DefaultDebounce is how long a path must stay quiet before it is
// re-reduced.
const DefaultDebounce = 500 * time.Millisecond

// maxWatches limits directory watchers to prevent file descriptor
// exhaustion on large trees.
const maxWatches = 1000

// Watcher refreshes cached skeletons as files change.
type Watcher struct {
	root     string
	scanCfg  scan.Config
	store    *cache.Store
	watcher  *fsnotify.Watcher
	matcher  *ignore.GitIgnore
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	logger *slog.Logger
}

// Config holds watcher configuration.
type Config struct {
	Scan     scan.Config
	Debounce time.Duration
	Logger   *slog.Logger
}

// New creates a watcher over root that refreshes store.
func New(root string, store *cache.Store, cfg Config) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	patterns := append(scan.LoadGitignore(absRoot), cfg.Scan.IgnorePatterns...)

	return &Watcher{
		root:     absRoot,
		scanCfg:  cfg.Scan,
		store:    store,
		watcher:  fsw,
		matcher:  scan.CompileIgnore(patterns),
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		logger:   logger,
	}, nil
}

// Run adds watches for the tree and blocks handling events until the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	count, err := w.addWatches(w.root)
	if err != nil {
		return fmt.Errorf("adding watches: %w", err)
	}
	w.logger.Info("watching", "root", w.root, "dirs", count)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopping")
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// addWatches registers every non-ignored directory under dir.
func (w *Watcher) addWatches(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || !entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		if rel != "." {
			if w.ignoredDir(entry.Name(), rel) {
				return filepath.SkipDir
			}
		}
		if count >= maxWatches {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return nil
		}
		count++
		return nil
	})
	return count, err
}

func (w *Watcher) ignoredDir(name, rel string) bool {
	switch name {
	case ".git", ".hg", ".svn", "node_modules", ".smartcontext":
		return true
	}
	return w.matcher != nil && w.matcher.MatchesPath(filepath.ToSlash(rel)+"/")
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories need their own watches immediately.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if _, err := w.addWatches(event.Name); err != nil {
				w.logger.Warn("watching new directory failed", "path", event.Name, "error", err)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if !w.candidate(rel) {
		return
	}

	if event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		if err := w.store.DeleteByPath(rel); err != nil {
			w.logger.Warn("evicting removed file failed", "path", rel, "error", err)
		}
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	w.scheduleRefresh(rel, event.Name)
}

// candidate mirrors the scan filters: extension allowlist plus ignore
// patterns.
func (w *Watcher) candidate(rel string) bool {
	exts := w.scanCfg.Extensions
	if len(exts) == 0 {
		exts = scan.DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(rel))
	found := false
	for _, allowed := range exts {
		if ext == allowed {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	return w.matcher == nil || !w.matcher.MatchesPath(rel)
}

// scheduleRefresh resets the per-path debounce timer.
func (w *Watcher) scheduleRefresh(rel, abs string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[rel]; ok {
		timer.Stop()
	}
	w.timers[rel] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, rel)
		w.mu.Unlock()
		w.refresh(rel, abs)
	})
}

// refresh re-reduces one file into the cache.
func (w *Watcher) refresh(rel, abs string) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return
	}
	maxSize := w.scanCfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = scan.DefaultMaxFileSize
	}
	if int64(len(data)) > maxSize || scan.IsBinary(data) {
		return
	}

	hash := cache.Hash(data)
	if _, ok := w.store.Get(hash); ok {
		return
	}
	if err := w.store.Put(hash, rel, skeleton.Reduce(string(data))); err != nil {
		w.logger.Warn("refreshing skeleton failed", "path", rel, "error", err)
		return
	}
	w.logger.Debug("refreshed skeleton", "path", rel)
}
