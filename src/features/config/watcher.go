package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// Watch reloads the configuration whenever the file at path changes, until ctx is done.
// Invalid files are logged and ignored so the running configuration stays in place.
// onReload, if set, is called with every configuration that was applied.
func (m *Manager) Watch(ctx context.Context, path string, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return err
	}

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return err
	}
	slog.Info("Watching configuration file", "path", absPath)

	go func() {
		defer watcher.Close()

		var (
			mu    sync.Mutex
			timer *time.Timer
		)
		reload := func() {
			cfg, err := readFile(absPath)
			if err != nil {
				slog.Error("Ignoring invalid configuration change", "path", absPath, "error", err)
				return
			}
			m.Update(cfg)
			slog.Info("Configuration reloaded", "path", absPath)
			if onReload != nil {
				onReload(cfg)
			}
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, reload)
				mu.Unlock()

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Error("Config watcher error", "error", err)

			case <-ctx.Done():
				mu.Lock()
				if timer != nil {
					timer.Stop()
				}
				mu.Unlock()
				return
			}
		}
	}()
	return nil
}
