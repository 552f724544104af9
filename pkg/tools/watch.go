package tools

import (
	"context"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry whenever a file under dir is written, created,
// removed, or renamed, so handler manifests can be edited without
// restarting the process. It blocks until ctx is done or the watcher fails.
func (r *Registry) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	r.logger.Info("watching tool directory for changes", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.Info("tool directory changed, reloading", "file", event.Name)
			r.Reload(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("tool directory watch error", "error", err)
		}
	}
}
