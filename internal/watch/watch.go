// Package watch re-imports a Markdown file whenever it changes on disk.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/draftmd/internal/document"
	"git.home.luguber.info/inful/draftmd/internal/foundation/errors"
	"git.home.luguber.info/inful/draftmd/internal/logfields"
	"git.home.luguber.info/inful/draftmd/internal/markdown"
)

// DefaultDebounce collapses bursts of editor writes into one import.
const DefaultDebounce = 200 * time.Millisecond

// Handler receives every successfully imported document.
type Handler func(doc *document.Document) error

// Watcher monitors one Markdown file.
type Watcher struct {
	path     string
	debounce time.Duration
	handle   Handler
	watcher  *fsnotify.Watcher
}

// New creates a watcher for path. The directory is watched rather than the
// file so that editors replacing the file by rename are followed.
func New(path string, debounce time.Duration, handle Handler) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve path").
			WithContext("path", path).
			Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
			WithContext("path", filepath.Dir(abs)).
			Build()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: abs, debounce: debounce, handle: handle, watcher: w}, nil
}

// Run imports the file once, then again after every change, until ctx is
// done. Handler errors are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	if err := w.reload(); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&fsnotify.Remove != 0 {
				slog.Warn("Watched file removed", logfields.Path(ev.Name))
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			if err := w.reload(); err != nil {
				slog.Error("Reload failed", logfields.Path(w.path), logfields.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read watched file").
			WithContext("path", w.path).
			Build()
	}
	doc := markdown.Import(string(data))
	slog.Debug("Imported watched file", logfields.Path(w.path), logfields.Blocks(doc.BlockCount()))
	return w.handle(doc)
}
