// Package watch keeps a module index in sync with a directory of YAML
// files. Every change rebuilds a fresh index from the whole directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cameronsjo/modulemd/internal/codec"
	"github.com/cameronsjo/modulemd/internal/fileutil"
	"github.com/cameronsjo/modulemd/internal/index"
	"github.com/cameronsjo/modulemd/internal/trace"
)

// DefaultDebounce is the quiet period before a reload.
const DefaultDebounce = 500 * time.Millisecond

// Failure is a document that could not be loaded.
type Failure struct {
	File string
	Doc  *codec.Subdocument
}

// LoadDir builds an index from every YAML file under dir. Documents that
// fail to parse are returned as failures; a document that cannot be added,
// such as conflicting defaults, fails the whole load.
func LoadDir(dir string, opts ...index.Option) (*index.Index, []Failure, error) {
	files, err := fileutil.ListYAML(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", dir, err)
	}

	idx := index.New(opts...)
	var failures []Failure
	for _, file := range files {
		docs, err := idx.UpdateFromFile(file)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range docs {
			failures = append(failures, Failure{File: file, Doc: d})
		}
	}
	return idx, failures, nil
}

// ReloadFunc is called after every reload attempt.
type ReloadFunc func(idx *index.Index, failures []Failure, err error)

// Watcher watches a directory and publishes the rebuilt index.
type Watcher struct {
	dir       string
	debounce  time.Duration
	logger    *slog.Logger
	observer  trace.Observer
	indexOpts []index.Option
	onReload  ReloadFunc

	watcher *fsnotify.Watcher
	timer   *debouncer

	mu       sync.RWMutex
	current  *index.Index
	failures []Failure
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithObserver sets the observer notified of reloads.
func WithObserver(observer trace.Observer) Option {
	return func(w *Watcher) {
		w.observer = observer
	}
}

// WithIndexOptions sets the options of every rebuilt index.
func WithIndexOptions(opts ...index.Option) Option {
	return func(w *Watcher) {
		w.indexOpts = opts
	}
}

// OnReload registers fn to run after every reload attempt.
func OnReload(fn ReloadFunc) Option {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// New creates a watcher for dir. Call Reload for the initial load and Run
// to follow changes.
func New(dir string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		logger:   trace.Discard(),
		watcher:  fsw,
		current:  index.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.timer = newDebouncer(w.debounce)
	return w, nil
}

// Index returns a copy of the last successfully loaded index.
func (w *Watcher) Index() *index.Index {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current.Copy()
}

// Failures returns the failed documents of the last successful load.
func (w *Watcher) Failures() []Failure {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]Failure(nil), w.failures...)
}

// Reload rebuilds the index from the directory. On error the previous
// index stays published.
func (w *Watcher) Reload() (err error) {
	span := trace.Begin(w.logger, w.observer, "watch.reload", "dir", w.dir)
	defer span.End(&err)

	idx, failures, err := LoadDir(w.dir, w.indexOpts...)
	if err == nil {
		w.mu.Lock()
		w.current = idx
		w.failures = failures
		w.mu.Unlock()
		span.Logger().Info("index reloaded", "modules", idx.Len(), "failures", len(failures))
	}
	if w.onReload != nil {
		w.onReload(idx, failures, err)
	}
	return err
}

// Run follows changes until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addDirectory(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching", "dir", w.dir, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			// fsnotify is not recursive, new directories need their own watch
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectory(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
					}
					w.timer.trigger(w.reloadAsync)
					continue
				}
			}
			if !shouldProcess(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			w.timer.trigger(w.reloadAsync)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			// Continue watching despite errors
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) reloadAsync() {
	if err := w.Reload(); err != nil {
		w.logger.Error("reload failed", "error", err)
	}
}

// Close stops the watcher and cancels a pending reload.
func (w *Watcher) Close() error {
	w.timer.stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch directory %q: %w", path, err)
		}
		return nil
	})
}

func shouldProcess(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return fileutil.IsYAML(event.Name)
}

// debouncer runs the last triggered callback once no trigger arrived for
// interval.
type debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval}
}

func (d *debouncer) trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
