package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-formdesigner/pkg/designdoc"
	"github.com/goliatone/go-formdesigner/pkg/session"
)

const seedDebounce = 200 * time.Millisecond

// seedWatcher reloads the seed design when its file changes. The parent
// directory is watched because editors often replace files by rename.
type seedWatcher struct {
	path   string
	loader *designdoc.Loader
	store  *session.Store
	logger *zap.Logger
}

func (w *seedWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("server: seed watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("server: watch %s: %w", w.path, err)
	}
	w.logger.Info("watching seed design", zap.String("path", w.path))

	name := filepath.Clean(w.path)
	debounce := time.NewTimer(seedDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(seedDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("seed watcher error", zap.Error(err))
		case <-debounce.C:
			w.reload(ctx)
		}
	}
}

// reload keeps the previous seed when the new document does not load.
func (w *seedWatcher) reload(ctx context.Context) {
	design, err := w.loader.Load(ctx, designdoc.SourceFromFile(w.path))
	if err != nil {
		w.logger.Warn("seed design not reloaded", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.store.SetSeed(design)
	w.logger.Info("seed design reloaded", zap.String("path", w.path), zap.Int("elements", len(design.Elements)))
}
