package aggregate

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/royfox/little-reviews/internal/storage"
)

const rebuildDebounce = 200 * time.Millisecond

// Watch observes the records directory and calls rebuild once per burst of
// record file changes until ctx is cancelled. Changes to other files are
// ignored.
func Watch(ctx context.Context, dir string, logger *slog.Logger, rebuild func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("dir", dir))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			logger.Debug("watcher: rebuilding")
			rebuild()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !storage.IsRecordFile(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(rebuildDebounce)
			} else {
				timer.Reset(rebuildDebounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
