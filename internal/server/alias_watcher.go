package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jobmatch/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// AliasWatcher watches the skill alias file and calls reload when it changes
type AliasWatcher struct {
	mu sync.RWMutex

	path        string
	lastModTime time.Time
	lastSize    int64
	exists      bool

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}
	done       chan struct{}

	reload func() error
	logger *errors.Logger

	running      bool
	reloadCount  int
	failureCount int
	lastReload   time.Time
	lastError    string
}

// NewAliasWatcher creates a watcher for path. A zero debounceDelay means one second.
func NewAliasWatcher(path string, debounceDelay time.Duration, reload func() error, logger *errors.Logger) (*AliasWatcher, error) {
	if path == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "alias watcher needs an alias file", nil)
	}
	if reload == nil {
		return nil, fmt.Errorf("alias watcher needs a reload callback")
	}
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	return &AliasWatcher{
		path:          path,
		debounceDelay: debounceDelay,
		reloadChan:    make(chan struct{}, 1),
		reload:        reload,
		logger:        logger,
	}, nil
}

// Start begins watching the alias file
func (aw *AliasWatcher) Start() error {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.running {
		return fmt.Errorf("alias watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	aw.fsWatcher = watcher
	aw.snapshot()

	// The directory catches editors and deploy tools that replace the file by rename.
	dir := filepath.Dir(aw.path)
	if err := aw.fsWatcher.Add(dir); err != nil {
		if closeErr := aw.fsWatcher.Close(); closeErr != nil {
			aw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	aw.stopChan = make(chan struct{})
	aw.done = make(chan struct{})
	aw.running = true
	go aw.watchLoop(aw.fsWatcher, aw.stopChan, aw.done)

	aw.logger.Info("Alias file watcher started",
		"file", aw.path,
		"debounce_delay", aw.debounceDelay)
	return nil
}

// Stop stops the watcher and waits for its loop to exit
func (aw *AliasWatcher) Stop() error {
	aw.mu.Lock()
	if !aw.running {
		aw.mu.Unlock()
		return nil
	}
	close(aw.stopChan)
	if aw.debounceTimer != nil {
		aw.debounceTimer.Stop()
	}
	err := aw.fsWatcher.Close()
	aw.running = false
	done := aw.done
	aw.mu.Unlock()

	<-done
	if err != nil {
		aw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}
	aw.logger.Info("Alias file watcher stopped")
	return nil
}

func (aw *AliasWatcher) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if aw.isAliasEvent(event) {
				aw.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			aw.logger.LogError(err, "File watcher error")

		case <-aw.reloadChan:
			if aw.hasChanged() {
				aw.logger.Info("Alias file changed, reloading", "file", aw.path)
				aw.runReload()
			}

		case <-stop:
			return
		}
	}
}

func (aw *AliasWatcher) isAliasEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(aw.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (aw *AliasWatcher) scheduleReload() {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.debounceTimer != nil {
		aw.debounceTimer.Stop()
	}
	aw.debounceTimer = time.AfterFunc(aw.debounceDelay, func() {
		select {
		case aw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// hasChanged compares the file's modification time and size against the last snapshot
func (aw *AliasWatcher) hasChanged() bool {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	stat, err := os.Stat(aw.path)
	if err != nil {
		// a missing file keeps the current resolver
		aw.exists = false
		return false
	}
	if !aw.exists || !stat.ModTime().Equal(aw.lastModTime) || stat.Size() != aw.lastSize {
		aw.exists = true
		aw.lastModTime = stat.ModTime()
		aw.lastSize = stat.Size()
		return true
	}
	return false
}

func (aw *AliasWatcher) snapshot() {
	if stat, err := os.Stat(aw.path); err == nil {
		aw.exists = true
		aw.lastModTime = stat.ModTime()
		aw.lastSize = stat.Size()
	}
}

func (aw *AliasWatcher) runReload() {
	err := aw.reload()

	aw.mu.Lock()
	defer aw.mu.Unlock()
	aw.lastReload = time.Now()
	if err != nil {
		aw.failureCount++
		aw.lastError = err.Error()
		aw.logger.LogError(err, "Alias reload failed, keeping previous aliases", "file", aw.path)
		return
	}
	aw.reloadCount++
	aw.lastError = ""
}

// IsRunning returns whether the watcher is currently running
func (aw *AliasWatcher) IsRunning() bool {
	aw.mu.RLock()
	defer aw.mu.RUnlock()
	return aw.running
}

// Status reports the watcher state for /health and /stats
func (aw *AliasWatcher) Status() map[string]any {
	aw.mu.RLock()
	defer aw.mu.RUnlock()

	status := map[string]any{
		"file":          aw.path,
		"running":       aw.running,
		"reload_count":  aw.reloadCount,
		"failure_count": aw.failureCount,
	}
	if !aw.lastReload.IsZero() {
		status["last_reload"] = aw.lastReload
	}
	if aw.lastError != "" {
		status["last_error"] = aw.lastError
	}
	return status
}
