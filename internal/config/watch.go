package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it is written or replaced.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch calls fn with the reloaded config (or the load error) each time
// the file at path changes. The parent directory is watched so editors
// that replace the file atomically are still seen.
func Watch(path string, fn func(*Config, error)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{watcher: watcher, done: make(chan struct{})}
	w.wg.Add(1)
	go w.loop(filepath.Clean(path), fn)
	return w, nil
}

func (w *Watcher) loop(path string, fn func(*Config, error)) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
				fn(LoadFromPath(path))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fn(nil, &ConfigurationError{Message: "watching config", Err: err})
		}
	}
}

// Close stops watching and waits for the callback goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
