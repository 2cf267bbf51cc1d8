// Package watcher observes directories with fsnotify and debounces the changes.
package watcher

import (
	"context"
	iofs "io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/roster/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	recursive bool
	logger    ports.Logger
	events    chan ports.WatchEvent
	stopOnce  sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRecursive also watches every subdirectory, including ones created later.
// Hidden directories are skipped.
func WithRecursive(enable bool) Option {
	return func(w *Watcher) {
		w.recursive = enable
	}
}

// NewWatcher creates a watcher. Errors reported by fsnotify go to logger.
func NewWatcher(logger ports.Logger, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	w := &Watcher{
		fsWatcher: fsw,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching dir.
func (w *Watcher) Start(ctx context.Context, dir string) error {
	for d := range w.directories(dir) {
		if err := w.fsWatcher.Add(d); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", d)
		}
	}
	go w.processEvents(ctx)
	return nil
}

// Stop releases the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsWatcher.Close()
	})
	return err
}

// Events returns an iterator over observed changes. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// directories yields root and, when recursive, every visible directory below it.
func (w *Watcher) directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !w.recursive {
			yield(root)
			return
		}
		_ = filepath.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are not watched
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return iofs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			we, ok := convertEvent(event)
			if !ok {
				continue
			}
			select {
			case w.events <- we:
			case <-ctx.Done():
				return
			}
			if w.recursive && we.Operation == ports.OpCreate {
				w.watchNew(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Error(zerr.Wrap(err, "file watcher error"))
			}
		}
	}
}

func (w *Watcher) watchNew(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	for d := range w.directories(path) {
		_ = w.fsWatcher.Add(d)
	}
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	case event.Has(fsnotify.Chmod):
		op = ports.OpChmod
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
