package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is notified with the old and new Config after a
// debounced reload. A non-nil error from a callback does not stop
// later callbacks from running; the watcher logs nothing itself —
// callers own that via whatever Logger they were given.
type ChangeCallback func(oldConfig, newConfig *Config) error

// Watcher reloads Config when its backing file changes on disk,
// debounced so a burst of writes (an editor's atomic-save-by-rename)
// triggers one reload, not several. Adapted from the teacher's
// ConfigWatcher; same fsnotify-driven shape, generalized to the
// trimmed Config.
type Watcher struct {
	configPath string
	loader     *ConfigLoader
	watcher    *fsnotify.Watcher

	mu        sync.RWMutex
	current   *Config
	callbacks []ChangeCallback

	reloadDelay time.Duration
}

// NewWatcher prepares a watcher for configPath; Run arms the fsnotify
// watch on configPath's directory (fsnotify watches directories
// reliably across editors' save strategies; watching the file handle
// directly misses rename-based atomic saves).
func NewWatcher(configPath string) (*Watcher, error) {
	if !configFileExists(configPath) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		configPath:  configPath,
		loader:      NewConfigLoader(configPath, "NETRECON"),
		watcher:     fsw,
		reloadDelay: 500 * time.Millisecond,
	}, nil
}

// OnChange registers a callback invoked after every successful reload.
func (w *Watcher) OnChange(cb ChangeCallback) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, cb)
	w.mu.Unlock()
}

// Current returns the most recently loaded Config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Run loads the initial config and then watches for changes until ctx
// is done. Blocking; run it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.loader.Load()
	if err != nil {
		return fmt.Errorf("load initial config: %w", err)
	}
	if err := initial.Validate(); err != nil {
		return fmt.Errorf("initial config invalid: %w", err)
	}
	w.mu.Lock()
	w.current = initial
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("watch config file: %w", err)
	}
	defer w.watcher.Close()

	var debounce *time.Timer
	reload := func() {
		newCfg, err := w.loader.Load()
		if err != nil || newCfg.Validate() != nil {
			return // keep serving the last good config
		}
		w.mu.Lock()
		old := w.current
		w.current = newCfg
		cbs := append([]ChangeCallback(nil), w.callbacks...)
		w.mu.Unlock()
		for _, cb := range cbs {
			_ = cb(old, newCfg)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.reloadDelay, reload)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
