package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceDelay coalesces the burst of filesystem events editors and
// atomic saves produce into one reload.
const debounceDelay = 500 * time.Millisecond

// Watcher reloads configuration when the overlay file changes. Only the
// development server runs one; production configuration is immutable for
// the life of the process.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	mu       sync.RWMutex
	current  *Config
	onChange []func(*Config)

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher starts watching the overlay file behind the given config.
// The file's directory is watched too, because editors replace files by
// rename and the original watch dies with the old inode.
func NewWatcher(initial *Config, path string, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		logger:  logger,
		current: initial,
		stopCh:  make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after a successful reload.
// Callbacks run on the watcher goroutine and must not block.
func (w *Watcher) OnChange(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Stop ends the watch. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) watchLoop() {
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			w.logger.Info("configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-w.stopCh:
			w.logger.Info("stopping configuration watcher")
			return
		}
	}
}

// reload re-runs the full load. A file that no longer parses or
// validates keeps the previous configuration in place.
func (w *Watcher) reload() {
	next, err := LoadConfig()
	if err != nil {
		w.logger.Error("configuration reload rejected", zap.Error(err))
		return
	}

	w.mu.Lock()
	if reflect.DeepEqual(w.current, next) {
		w.mu.Unlock()
		w.logger.Debug("configuration unchanged after reload")
		return
	}
	w.current = next
	callbacks := make([]func(*Config), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()

	w.logger.Info("configuration reloaded",
		zap.Int("callbacks", len(callbacks)),
	)
	for _, fn := range callbacks {
		fn(next)
	}
}
