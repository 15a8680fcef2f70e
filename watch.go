package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchSettle is how long WatchConfig waits for a burst of writes to end
// before reloading.
const watchSettle = 50 * time.Millisecond

// WatchConfig calls fn with the reloaded configuration every time the file
// at path changes, until ctx is done. Reload failures are logged and fn is
// not called. WatchConfig blocks; run it in its own goroutine.
//
// The directory is watched rather than the file so that editors replacing
// the file by rename keep being followed.
func WatchConfig(ctx context.Context, path string, fn func(Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("ui: watch config: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("ui: watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("ui: watch config: %w", err)
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				settle = time.After(watchSettle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			Logger().Warn("ui: config watcher", "path", path, "err", err)
		case <-settle:
			settle = nil
			cfg, err := LoadConfig(abs)
			if err != nil {
				Logger().Warn("ui: config reload failed", "path", path, "err", err)
				continue
			}
			Logger().Info("ui: config reloaded", "path", path)
			fn(cfg)
		}
	}
}
