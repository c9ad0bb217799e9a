package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/menushare/internal/models"
)

const watchDebounce = 200 * time.Millisecond

// Watch re-reads the menu file at path whenever it changes and passes the
// result to onChange until ctx is cancelled. The parent directory is
// watched so editors that replace the file on save are followed. Files that
// fail to parse are logged and skipped.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func(models.Snapshot)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	logger.Info("catalog watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			fire = timer.C
		} else {
			timer.Reset(watchDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("catalog watcher: stopped")
			return nil

		case <-fire:
			snap, err := Read(abs)
			if err != nil {
				logger.Warn("catalog watcher: reload failed", slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			logger.Info("catalog watcher: reloaded", slog.String("path", abs),
				slog.Int("categories", len(snap.Categories)), slog.Int("items", len(snap.Items)))
			onChange(snap)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("catalog watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
