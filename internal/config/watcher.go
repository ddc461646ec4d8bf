package config

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the config file when it changes on disk and swaps
// the validated result into the store. Editors and the daemon's own
// Save both replace the file by rename, so the parent directory is
// watched alongside the file itself.
type Watcher struct {
	log      *zap.Logger
	path     string
	store    *Store
	onReload func(*Config)

	fw       *fsnotify.Watcher
	debounce time.Duration
	started  atomic.Bool
	done     chan struct{}
}

// NewWatcher creates a watcher for the config file at path. onReload,
// if non-nil, runs after every successful swap.
func NewWatcher(log *zap.Logger, path string, store *Store, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		log:      log,
		path:     path,
		store:    store,
		onReload: onReload,
		fw:       fw,
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. Safe to Close from another goroutine.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	// The file itself may not exist yet; that is fine, the directory
	// watch catches its creation.
	if err := w.fw.Add(w.path); err != nil {
		w.log.Debug("config file not watchable yet", zap.String("path", w.path), zap.Error(err))
	}

	w.started.Store(true)
	go w.run()
	return nil
}

func (w *Watcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Editors fire bursts of events per save; coalesce them.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			w.reload()

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

// reload parses and validates the file. On failure the running config
// is kept. A half-saved or corrupt file must not disturb the loop.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn("config file changed but not loadable, keeping current config",
			zap.String("path", w.path), zap.Error(err))
		return
	}
	w.store.Update(cfg)
	w.log.Info("config reloaded",
		zap.String("path", w.path),
		zap.Int("battery_threshold", cfg.BatteryThreshold),
		zap.Strings("apps", cfg.Apps),
		zap.Int("poll_interval_s", cfg.PollIntervalSeconds))
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	if w.started.Load() {
		<-w.done
	}
	return err
}
