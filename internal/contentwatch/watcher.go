// Package contentwatch watches the content directory (card list and
// database files) for external edits and notifies a callback, per
// SPEC_FULL.md's Content Watcher component. It never blocks or
// participates in draft mutation — it only triggers a rescan hook.
package contentwatch

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes one or more directories and invokes onChange whenever
// a file inside them is created, written, or removed.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)
	done     chan struct{}
}

// New creates a Watcher over the given directories. onChange is called
// from the Watcher's own goroutine; callers that need to touch shared
// state from it must synchronize themselves.
func New(dirs []string, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return &Watcher{fsw: fsw, onChange: onChange, done: make(chan struct{})}, nil
}

// Run processes filesystem events until Close is called. Intended to be
// run in its own goroutine for the server's lifetime.
func (w *Watcher) Run() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.onChange(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("contentwatch: watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops watching and releases the underlying inotify/kqueue handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
