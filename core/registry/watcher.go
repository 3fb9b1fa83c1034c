package registry

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/sqlgate/sqlgate/core/config"
	"github.com/sqlgate/sqlgate/core/infrastructure/logging"
)

// Watch reloads the registry whenever the config file changes on disk.
// A file that fails to parse leaves the current snapshot in place.
// Blocks until ctx is cancelled; callers run it in a goroutine.
func (r *Registry) Watch(ctx context.Context, path string) error {
	log := logging.New("registry:watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace files on save, which drops
	// a watch placed on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	log.Debugf("Watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := config.Load(path)
			if err != nil {
				log.Warnf("Config change ignored, reload failed: %v", err)
				continue
			}
			r.Reload(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Watcher error: %v", err)
		}
	}
}
