// ============================================================================
// skriptc - Skript-zu-C Compiler
// ============================================================================
//
// Package:     watch
// Description: Rebuild-on-change loop for a single source file
// Author:      Mike Stoffels
// Created:     2026-10-17
// License:     MIT
// ============================================================================

package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	skerr "github.com/msto63/skriptc/pkg/core/error"
	"github.com/msto63/skriptc/pkg/core/logging"
)

// DefaultDebounce is used when Config.Debounce is zero
const DefaultDebounce = 200 * time.Millisecond

// BuildFunc runs one build. Errors are logged and do not stop the watcher.
type BuildFunc func(ctx context.Context) error

// Config holds watcher configuration
type Config struct {
	Path     string
	Debounce time.Duration
	Build    BuildFunc
	Logger   *logging.Logger
}

// Watcher rebuilds a source file whenever it changes. Builds run one at a
// time on the watcher's goroutine.
type Watcher struct {
	path     string
	debounce time.Duration
	build    BuildFunc
	logger   *logging.Logger
}

// New creates a watcher for cfg.Path
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" || cfg.Build == nil {
		return nil, skerr.New("watch needs a path and a build function").
			WithCode(skerr.CodeInvalidInput).
			WithOperation("watch.New")
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, skerr.Wrap(err, "invalid watch path").
			WithCode(skerr.CodeInvalidInput).
			WithOperation("watch.New")
	}

	w := &Watcher{
		path:     path,
		debounce: cfg.Debounce,
		build:    cfg.Build,
		logger:   cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = logging.Default()
	}
	w.logger = w.logger.WithName("watch")
	return w, nil
}

// Run builds once, then rebuilds on every change until ctx is done.
// The parent directory is watched so editors that save by rename are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return skerr.Wrap(err, "failed to create watcher").
			WithCode(skerr.CodeIOError).
			WithOperation("watch.Run")
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return skerr.Wrap(err, "failed to watch directory").
			WithCode(skerr.CodeIOError).
			WithOperation("watch.Run").
			WithDetail("dir", dir)
	}
	w.logger.Info("Watching for changes", "file", w.path)

	w.runBuild(ctx)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Source changed", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			pending = timer.C

		case <-pending:
			pending = nil
			w.runBuild(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) runBuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := w.build(ctx); err != nil {
		w.logger.Error("Build failed", "error", err)
	}
}
