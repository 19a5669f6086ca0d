package app

import (
	"os"
	"sync"
	"syscall"
	"time"
)

// ConfigWatcher polls a file (the configuration file) and calls back once
// when it changes. The tool configuration is fixed for the life of a
// controller, so a change is applied by restarting the process.
type ConfigWatcher struct {
	mu       sync.Mutex
	path     string
	baseline time.Time
	interval time.Duration
	stopCh   chan struct{}
	onChange func()
}

// NewConfigWatcher watches path. Returns nil if the file cannot be stat'ed.
func NewConfigWatcher(path string, interval time.Duration) *ConfigWatcher {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	return &ConfigWatcher{
		path:     path,
		baseline: info.ModTime(),
		interval: interval,
	}
}

// OnChange sets the callback. It runs on the watcher goroutine.
func (w *ConfigWatcher) OnChange(callback func()) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Start begins polling in a background goroutine.
func (w *ConfigWatcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	stop := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stop)
}

// Stop ends polling. Safe to call more than once.
func (w *ConfigWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *ConfigWatcher) watchLoop(stop chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !w.Changed() {
				continue
			}
			w.mu.Lock()
			cb := w.onChange
			w.mu.Unlock()
			if cb != nil {
				cb()
			}
			// Only trigger once
			return
		}
	}
}

// Changed reports whether the file was modified since the baseline.
func (w *ConfigWatcher) Changed() bool {
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return info.ModTime().After(w.baseline)
}

// ResetBaseline accepts the current file as unchanged. Call this when the
// user declines a restart.
func (w *ConfigWatcher) ResetBaseline() {
	if info, err := os.Stat(w.path); err == nil {
		w.mu.Lock()
		w.baseline = info.ModTime()
		w.mu.Unlock()
	}
}

// RestartProcess replaces the current process with a new instance of the
// running executable, preserving arguments and environment. It does not
// return on success.
func RestartProcess() error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	return syscall.Exec(execPath, os.Args, os.Environ())
}
