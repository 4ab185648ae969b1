package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce coalesces rapid successive writes (editors, partial
// writes) into a single reload.
const defaultDebounce = 2 * time.Second

// Watcher observes the configuration file and replaces the store's watched
// value on every stabilized change. It never touches the send path: a
// failed re-parse is logged and the previous good value stays in place, and
// a deleted or moved file leaves both the watcher and the loop running on
// the last good configuration.
type Watcher struct {
	configPath string
	store      *Store
	logger     *zap.Logger
	debounce   time.Duration
}

// NewWatcher creates a watcher for the given configuration file.
func NewWatcher(configPath string, store *Store, logger *zap.Logger) *Watcher {
	return &Watcher{
		configPath: filepath.Clean(configPath),
		store:      store,
		logger:     logger,
		debounce:   defaultDebounce,
	}
}

// SetDebounce overrides the quiescence window. Tests use short windows.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Start watches until the context is cancelled. The watch is placed on the
// file's directory so atomic rename-over-save by editors keeps working.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fs watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	w.logger.Info("watching configuration", zap.String("file", w.configPath))

	// timer armed only while a change is pending
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return fmt.Errorf("fs watcher event channel closed")
			}
			if filepath.Clean(event.Name) != w.configPath {
				continue
			}

			switch {
			case event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create):
				timer.Reset(w.debounce)

			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				w.logger.Warn("configuration file removed or moved, keeping last good configuration",
					zap.String("file", w.configPath))
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return fmt.Errorf("fs watcher error channel closed")
			}
			w.logger.Error("fs watcher error", zap.Error(err))

		case <-timer.C:
			w.reload()
		}
	}
}

// reload re-parses the configuration file and publishes the new watched
// value. Parse failures leave the previous value intact.
func (w *Watcher) reload() {
	watched, err := LoadWatched(w.configPath)
	if err != nil {
		w.logger.Error("configuration reload failed, keeping last good configuration",
			zap.Error(err))
		return
	}

	w.store.Replace(watched)
	w.logger.Info("configuration reloaded", zap.String("file", w.configPath))
}
