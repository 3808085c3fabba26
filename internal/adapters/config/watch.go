package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// Watch reloads the configuration at path whenever the file is written,
// created or renamed into place, and calls apply with every configuration
// that loads and validates. Invalid revisions are logged and skipped. Watch
// blocks until ctx is done.
//
// The parent directory is watched so that editors replacing the file
// atomically are followed.
func (l *Loader) Watch(ctx context.Context, path string, apply func(domain.Config)) error {
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file watcher"), "path", path)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch configuration directory"), "path", path)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			l.reload(path, apply)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Logger.Warn(fmt.Sprintf("config watcher: %v", err))
		}
	}
}

func (l *Loader) reload(path string, apply func(domain.Config)) {
	cfg, err := l.LoadFile(path)
	if err != nil {
		l.Logger.Error(err)
		return
	}
	l.Logger.Info("reloaded " + domain.ConfigFileName)
	apply(cfg)
}
