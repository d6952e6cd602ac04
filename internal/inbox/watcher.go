package inbox

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long a file must be quiet before it is imported.
const settle = 200 * time.Millisecond

// Watch imports the current directory contents, then follows file changes
// until ctx is cancelled.
//
// New directories created at runtime are added to the watch list. Rename
// events trigger a full Sync so moved files are picked up under their new
// name.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, in.dir.Root()); err != nil {
		return err
	}
	if err := in.Sync(ctx); err != nil {
		in.logger.Warn("inbox: initial sync failed", slog.String("error", err.Error()))
	}

	in.logger.Info("inbox: watching", slog.String("root", in.dir.Root()))

	pending := make(map[string]struct{})
	resync := false
	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(settle)
			timerCh = timer.C
		} else {
			timer.Reset(settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-timerCh:
			for p := range pending {
				if err := in.Load(ctx, p); err != nil {
					in.logger.Warn("inbox: import failed", slog.String("path", p), slog.String("error", err.Error()))
				}
			}
			clear(pending)
			if resync {
				resync = false
				if err := in.Sync(ctx); err != nil {
					in.logger.Warn("inbox: sync failed", slog.String("error", err.Error()))
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						in.logger.Warn("inbox: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					resync = true
					schedule()
					continue
				}
			}

			if !IsCalendarFile(ev.Name) {
				continue
			}
			rel, relErr := in.dir.rel(ev.Name)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[rel] = struct{}{}
				schedule()
			case ev.Op&fsnotify.Remove != 0:
				delete(pending, rel)
				in.Remove(ctx, rel)
			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports the old name only; the new name arrives
				// as a Create if it stays inside the inbox.
				delete(pending, rel)
				in.Remove(ctx, rel)
				resync = true
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
