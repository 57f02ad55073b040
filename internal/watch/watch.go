// Package watch re-checks files as they change on disk.
//
// A Watcher runs an initial check of its scope, then follows the included
// directories with fsnotify. Changes are debounced and each changed file is
// checked again. Findings are cached by content so that saving a file
// without changing it replays the previous findings without running the
// analyzers.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dkoosis/scame/internal/logging"
	"github.com/dkoosis/scame/pkg/batch"
	"github.com/dkoosis/scame/pkg/language"
	"github.com/dkoosis/scame/pkg/options"
	"github.com/dkoosis/scame/pkg/report"
)

// Config tunes a Watcher.
type Config struct {
	// Debounce is how long changes are collected before checking.
	Debounce time.Duration

	// CacheSize bounds the number of cached file results.
	CacheSize int

	// IgnoreDirs are directory names never watched.
	IgnoreDirs []string

	// AfterRun is called after every check run with the checked paths and
	// the number of findings reported.
	AfterRun func(paths []string, findings int)
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		Debounce:   200 * time.Millisecond,
		CacheSize:  1024,
		IgnoreDirs: []string{".git", ".hg", ".bzr", "node_modules", "__pycache__"},
	}
}

// Watcher checks files of a scope whenever they change.
type Watcher struct {
	opts     *options.Options
	reporter *report.Reporter
	cfg      Config
	excludes batch.Excludes
	cache    *lru.Cache[string, []report.Finding]

	// files are explicitly included files; their directories are watched
	// but only these files are checked.
	files map[string]bool

	hits atomic.Int64
	mu   sync.Mutex
}

// New returns a Watcher for opts.Scope reporting to r.
func New(opts *options.Options, r *report.Reporter, cfg Config) (*Watcher, error) {
	if opts == nil {
		opts = options.Default()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultConfig().CacheSize
	}
	excludes, err := batch.CompileExcludes(opts.Scope.Exclude)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, []report.Finding](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating result cache: %w", err)
	}
	return &Watcher{
		opts:     opts,
		reporter: r,
		cfg:      cfg,
		excludes: excludes,
		cache:    cache,
		files:    make(map[string]bool),
	}, nil
}

// CacheHits returns how many checks were answered from the cache.
func (w *Watcher) CacheHits() int64 {
	return w.hits.Load()
}

// Check checks the file at path, replaying cached findings when its content
// was checked before.
func (w *Watcher) Check(ctx context.Context, path string) error {
	if !language.IsEditable(path) {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	key := contentKey(path, data)
	if findings, ok := w.cache.Get(key); ok {
		w.hits.Add(1)
		logging.Scoped(ctx, "watch").Debug("cache hit", "file", path)
		for _, f := range findings {
			w.reporter.Report(f)
		}
		return nil
	}

	var buf report.Buffer
	batch.CheckText(ctx, path, string(data), report.New(&buf), w.opts)
	w.cache.Add(key, buf.Findings())
	buf.ReplayTo(w.reporter)
	return nil
}

// contentKey identifies a file's content. The path is part of the key
// because findings carry it.
func contentKey(path string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Run checks the whole scope, then watches it until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	log := logging.Scoped(ctx, "watch")

	paths, err := batch.Discover(w.opts.Scope)
	if err != nil {
		return err
	}
	if err := w.checkAll(ctx, paths); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	for _, source := range w.opts.Scope.Include {
		if err := w.add(fsw, filepath.Clean(source)); err != nil {
			return err
		}
	}

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fsw, event.Name); err != nil {
						log.Debug("watch failed", "dir", event.Name, "error", err)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.wanted(event.Name) {
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.cfg.Debounce)
			} else {
				timer.Reset(w.cfg.Debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			sort.Strings(changed)
			if err := w.checkAll(ctx, changed); err != nil {
				log.Warn("check failed", "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		}
	}
}

// checkAll runs one check of paths and reports the run.
func (w *Watcher) checkAll(ctx context.Context, paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.reporter.Reset()
	var checked []string
	for _, p := range paths {
		if err := w.Check(ctx, p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Removed between the event and the check.
				continue
			}
			return err
		}
		checked = append(checked, p)
	}
	if err := w.reporter.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if w.cfg.AfterRun != nil {
		w.cfg.AfterRun(checked, w.reporter.CallCount())
	}
	return nil
}

// add watches source: the tree of a directory or the parent of a file.
func (w *Watcher) add(fsw *fsnotify.Watcher, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("watching %s: %w", source, err)
	}
	if !info.IsDir() {
		w.files[source] = true
		return fsw.Add(filepath.Dir(source))
	}
	return w.addTree(fsw, source)
}

func (w *Watcher) addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && w.ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignoredDir(name string) bool {
	for _, ignored := range w.cfg.IgnoreDirs {
		if name == ignored {
			return true
		}
	}
	return false
}

// wanted reports whether a changed path belongs to the scope.
func (w *Watcher) wanted(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	for _, source := range w.opts.Scope.Include {
		dir := filepath.Clean(source)
		if w.files[dir] {
			continue
		}
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return !w.excludes.Match(path) && language.IsEditable(path)
		}
	}
	return false
}
