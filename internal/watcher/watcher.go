// Package watcher notifies on changes to a single file, debounced so a
// burst of writes (editors, atomic replace via rename) produces one
// notification. The build command uses it to rebuild the index when the
// catalog file changes.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hwcatalog/hwsearch/internal/errors"
)

// DefaultDebounce is the quiet window before a change is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches one file for writes, creates and renames. The parent
// directory is watched rather than the file itself, so atomic
// save-and-rename workflows are still observed.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	fsw    *fsnotify.Watcher
	events chan struct{}

	mu    sync.Mutex
	timer *time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the quiet window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the watcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logger }
}

// New creates a Watcher for the given file path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidPath, "failed to resolve watch path", err).
			WithDetail("path", path)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.InternalError("failed to create file watcher", err)
	}

	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		fsw:      fsw,
		events:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events delivers one signal per debounced change burst.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Start runs the watch loop until ctx is cancelled. It blocks; run it
// on its own goroutine when change handling happens elsewhere.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return errors.New(errors.ErrCodeInvalidPath, "failed to watch directory", err).
			WithDetail("path", dir)
	}
	w.logger.Info("watching catalog",
		slog.String("path", w.path),
		slog.Duration("debounce", w.debounce))

	for {
		select {
		case <-ctx.Done():
			return w.Close()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.schedule()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// relevant keeps events that touch the watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// schedule arms the trailing-edge debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.events <- struct{}{}:
		default:
			// A pending notification already covers this burst.
		}
	})
}

// Close stops the underlying watcher and cancels any pending
// notification.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
