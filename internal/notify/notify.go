// Package notify watches the .arbor/signals directory so a running
// generation can be stopped from another terminal.
package notify

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StopFile is the signal file name that requests a stop.
const StopFile = "stop"

// pollInterval backs up the fsnotify watcher on filesystems without events.
const pollInterval = 500 * time.Millisecond

// Watcher reports stop requests made by creating <dir>/signals/stop.
type Watcher struct {
	signalsDir string

	mu      sync.RWMutex
	stopped bool

	stopCh   chan struct{}
	stopOnce sync.Once

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a watcher rooted at arborDir (usually ".arbor").
func New(arborDir string) (*Watcher, error) {
	signalsDir := filepath.Join(arborDir, "signals")
	if err := os.MkdirAll(signalsDir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		signalsDir: signalsDir,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without watcher; Bind polls.
		return w, nil
	}
	if err := watcher.Add(signalsDir); err != nil {
		watcher.Close()
		return w, nil
	}
	w.watcher = watcher

	go w.watchSignals()

	return w, nil
}

func (w *Watcher) watchSignals() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == StopFile && (event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0) {
				w.markStopped()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) markStopped() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// StopRequested reports whether a stop has been requested. The file is
// checked directly in case the watcher missed the event.
func (w *Watcher) StopRequested() bool {
	if _, err := os.Stat(w.stopPath()); err == nil {
		w.markStopped()
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stopped
}

// RequestStop creates the stop file.
func (w *Watcher) RequestStop() error {
	return os.WriteFile(w.stopPath(), []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes a stale stop file. Call it before starting a run.
func (w *Watcher) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	if err := os.Remove(w.stopPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Bind returns a context that is cancelled when a stop is requested.
func (w *Watcher) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-w.done:
				return
			case <-w.stopCh:
				cancel()
				return
			case <-ticker.C:
				if w.StopRequested() {
					cancel()
					return
				}
			}
		}
	}()

	return ctx, cancel
}

// SignalsDir returns the watched directory.
func (w *Watcher) SignalsDir() string {
	return w.signalsDir
}

func (w *Watcher) stopPath() string {
	return filepath.Join(w.signalsDir, StopFile)
}

// Close shuts down the watcher.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}
