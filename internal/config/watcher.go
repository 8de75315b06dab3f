package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler receives the freshly loaded config after the file changes.
type ReloadHandler func(Config)

// Watcher reloads the config file when it changes on disk. The parent
// directory is watched rather than the file itself, since most editors
// replace config files by rename.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	handler ReloadHandler
	done    chan struct{}
}

// NewWatcher starts watching the config file at path. The handler runs on
// the watcher's goroutine; it should hand the config off, not block.
func NewWatcher(path string, handler ReloadHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:    path,
		watcher: fsw,
		handler: handler,
		done:    make(chan struct{}),
	}
	go w.processLoop()
	return w, nil
}

func (w *Watcher) processLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				// Malformed edits keep the previous config in effect.
				continue
			}
			w.handler(cfg)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
