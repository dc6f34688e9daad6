package framework

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is implemented by Registry.
type Invalidator interface {
	Invalidate()
}

// Watch invalidates target whenever a YAML file in dir changes. The watch stops
// when ctx is done.
func Watch(ctx context.Context, dir string, target Invalidator) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if isDefinitionFile(evt.Name) && evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					slog.Info("framework definition changed", "file", evt.Name, "op", evt.Op.String())
					target.Invalidate()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("framework watcher error", "error", err)
			}
		}
	}()
	return nil
}

func isDefinitionFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
