// Package watcher runs a handler for subtitle files dropped into a directory.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"subsum/internal/subtitle"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultMaxConcurrent = 2
	defaultDebounce      = 500 * time.Millisecond
)

// Handler processes one file.
type Handler func(ctx context.Context, path string) error

type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before it is handled.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

type Watcher struct {
	dir      string
	handler  Handler
	fs       *fsnotify.Watcher
	sem      chan struct{}
	debounce time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	wg      sync.WaitGroup
}

func New(dir string, handler Handler, maxConcurrent int, log *slog.Logger, opts ...Option) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err = fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	w := &Watcher{
		dir:      dir,
		handler:  handler,
		fs:       fs,
		sem:      make(chan struct{}, maxConcurrent),
		debounce: defaultDebounce,
		log:      log,
		pending:  make(map[string]*time.Timer),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Start blocks until ctx is done, then waits for running handlers.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.InfoContext(ctx, "Watcher is started",
		"dir", w.dir,
		"maxConcurrent", cap(w.sem))

	for {
		select {
		case <-ctx.Done():
			w.drain()
			w.log.InfoContext(ctx, "Watcher is stopped",
				"dir", w.dir)
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				w.drain()
				return errors.New("watcher events channel is closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.drain()
				return errors.New("watcher errors channel is closed")
			}
			w.log.ErrorContext(ctx, "Watcher error",
				"error", err,
				"dir", w.dir)
		}
	}
}

func (w *Watcher) Stop() error {
	return w.fs.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if !subtitle.IsSubtitleFile(event.Name) {
		w.log.DebugContext(ctx, "Ignoring non-subtitle file",
			"path", event.Name)
		return
	}

	path := event.Name

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}

	w.wg.Add(1)

	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		if w.pending[path] == t {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		w.fire(ctx, path)
	})
	w.pending[path] = t
}

func (w *Watcher) fire(ctx context.Context, path string) {
	defer w.wg.Done()

	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-w.sem }()

	w.log.InfoContext(ctx, "New subtitle file is detected",
		"path", path)

	if err := w.handler(ctx, path); err != nil {
		w.log.ErrorContext(ctx, "Failed to handle file",
			"error", err,
			"path", path)
	}
}

// drain cancels timers that have not fired and waits for the rest.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
