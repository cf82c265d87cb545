package app

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"img-compare/internal/raster"
)

// Watcher reloads sources opened from disk when their files change. The
// watched set follows the session's file list.
type Watcher struct {
	session  *Session
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu     sync.Mutex
	paths  map[string]bool // files of interest
	dirs   map[string]int  // watched directories with reference counts
	timers map[string]*time.Timer
	stopCh chan struct{}
}

// NewWatcher creates a watcher for session. Changes are applied after the
// file has been quiet for debounce.
func NewWatcher(session *Session, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		session:  session,
		fs:       fsw,
		debounce: debounce,
		paths:    make(map[string]bool),
		dirs:     make(map[string]int),
		timers:   make(map[string]*time.Timer),
		stopCh:   make(chan struct{}),
	}
	session.On(EventFilesChanged, func(data interface{}) {
		if files, ok := data.([]FileEntry); ok {
			w.Sync(files)
		}
	})
	w.Sync(session.Files())
	return w, nil
}

// Start begins processing file events in a background goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop stops the watcher and releases its resources.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.fs.Close()

	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
}

// Sync watches the directories of every disk-backed file and forgets the
// rest. Editors often replace files, so directories are watched rather than
// the files themselves.
func (w *Watcher) Sync(files []FileEntry) {
	want := make(map[string]bool)
	for _, f := range files {
		if f.Source != nil && f.Source.Path != "" {
			want[filepath.Clean(f.Source.Path)] = true
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for path := range w.paths {
		if !want[path] {
			delete(w.paths, path)
			w.releaseDir(filepath.Dir(path))
		}
	}
	for path := range want {
		if w.paths[path] {
			continue
		}
		dir := filepath.Dir(path)
		if w.dirs[dir] == 0 {
			if err := w.fs.Add(dir); err != nil {
				log.Printf("Watch: cannot watch %s: %v", dir, err)
				continue
			}
		}
		w.dirs[dir]++
		w.paths[path] = true
	}
}

func (w *Watcher) releaseDir(dir string) {
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	if err := w.fs.Remove(dir); err != nil {
		log.Printf("Watch: cannot unwatch %s: %v", dir, err)
	}
}

// Watching reports whether path is being watched.
func (w *Watcher) Watching(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paths[filepath.Clean(path)]
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.schedule(filepath.Clean(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("Watch: %v", err)
		}
	}
}

// schedule debounces reloads so a file written in several chunks is read
// once.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.paths[path] {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.reload(path)
	})
}

// reload reads path again and swaps it in for the stale source.
func (w *Watcher) reload(path string) {
	var old *raster.Source
	for _, f := range w.session.Files() {
		if f.Source.Path != "" && filepath.Clean(f.Source.Path) == path {
			old = f.Source
			break
		}
	}
	if old == nil {
		return
	}

	next, err := raster.Open(path)
	if err != nil {
		log.Printf("Watch: failed to reload %s: %v", path, err)
		return
	}
	if !next.IsImage() {
		// Partially written; a later event will catch the complete file.
		return
	}
	log.Printf("Watch: reloading %s", path)
	w.session.Replace(old, next)
}
