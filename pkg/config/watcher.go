package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/latticehq/lattice/pkg/observability"
)

// Watch monitors a config file and invokes onChange with the freshly loaded
// configuration whenever it is rewritten. It blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, logger *observability.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	logger.WithField("path", path).Info("watching config file")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg := defaultConfig()
			if err := cfg.loadFile(path); err != nil {
				logger.WithError(err).Warn("ignoring unreadable config change")
				continue
			}
			cfg.loadEnv()
			if err := cfg.Validate(); err != nil {
				logger.WithError(err).Warn("ignoring invalid config change")
				continue
			}
			logger.WithField("path", path).Info("config reloaded")
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("config watch error")
		}
	}
}
