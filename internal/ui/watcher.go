package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDelay coalesces the create/write/rename burst of one atomic replace.
const watchDelay = 100 * time.Millisecond

// IndexWatcher reports rewrites of the index file. The parent directory is
// watched because atomic replaces swap the file's inode.
type IndexWatcher struct {
	watcher *fsnotify.Watcher
	name    string
	changes chan struct{}
	done    chan struct{}

	closeOnce sync.Once
	mu        sync.Mutex
	timer     *time.Timer
	stopped   bool
}

// WatchIndex starts watching the file at path. The directory is created
// if it does not exist yet.
func WatchIndex(path string) (*IndexWatcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("watch: ensure dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &IndexWatcher{
		watcher: fw,
		name:    filepath.Base(path),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Changes yields one value per burst of rewrites. It is closed by Close.
func (w *IndexWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops the watcher.
func (w *IndexWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *IndexWatcher) loop() {
	defer w.shutdown()

	for {
		select {
		case <-w.done:
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(evt.Name) != w.name {
				continue
			}
			if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.enqueue()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// The next reload picks up whatever was missed.
			w.enqueue()
		}
	}
}

func (w *IndexWatcher) enqueue() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.timer != nil {
		return
	}
	w.timer = time.AfterFunc(watchDelay, w.flush)
}

func (w *IndexWatcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timer = nil
	if w.stopped {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
		// A notification is already pending.
	}
}

func (w *IndexWatcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	close(w.changes)
}
