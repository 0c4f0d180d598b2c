// Package watcher notices edits to the dataset directory so cached search
// entries and homepage snapshots can be dropped.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one directory and reports settled changes in batches.
// Every relevant event restarts the settle timer; when it fires, all
// changes seen since the last batch are delivered together.
type Watcher struct {
	logger   *slog.Logger
	opts     Options
	fs       *fsnotify.Watcher
	onChange func(Batch)

	mu      sync.Mutex // protects changes and timer
	changes map[string]EventType
	timer   *time.Timer

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher that calls onChange with each settled batch.
// onChange runs on a timer goroutine, never concurrently with itself.
func New(logger *slog.Logger, opts Options, onChange func(Batch)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts.setDefaults()

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:   logger,
		opts:     opts,
		fs:       fs,
		onChange: onChange,
		changes:  make(map[string]EventType),
		done:     make(chan struct{}),
	}, nil
}

// Watch adds a directory. Subdirectories are not watched.
func (w *Watcher) Watch(dir string) error {
	dir = filepath.Clean(dir)

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := w.fs.Add(dir); err != nil {
		return fmt.Errorf("failed to add watch: %w", err)
	}
	w.logger.Debug("added watch", "path", dir)
	return nil
}

// Start processes events on a new goroutine until ctx is done or Stop is
// called. Stop waits for that goroutine to exit.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// handle records one fsnotify event.
func (w *Watcher) handle(event fsnotify.Event) {
	path := event.Name
	if w.opts.shouldIgnore(path) {
		return
	}

	var typ EventType
	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		typ = EventRemoved
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return
		}
		typ = EventChanged
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.changes[path] = typ
	if w.timer == nil {
		w.timer = time.AfterFunc(w.opts.SettleDelay, w.flush)
	} else {
		w.timer.Reset(w.opts.SettleDelay)
	}
}

// flush delivers the pending batch.
func (w *Watcher) flush() {
	w.mu.Lock()
	changes := w.changes
	w.changes = make(map[string]EventType)
	w.timer = nil
	w.mu.Unlock()

	select {
	case <-w.done:
		return
	default:
	}

	if len(changes) == 0 || w.onChange == nil {
		return
	}

	batch := newBatch(changes)
	w.logger.Info("data files changed", "files", batch.Files())
	w.onChange(batch)
}

// Stop stops the watcher and releases resources. Pending changes are
// discarded.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		clear(w.changes)
		w.mu.Unlock()

		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}
