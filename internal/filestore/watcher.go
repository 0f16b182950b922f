package filestore

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"jls/internal/logging"
)

// Watcher debounces filesystem events under the workspace roots and feeds
// them into a Store's external* entry points. Non-.java watched files
// (build descriptors) are reported through OnBuildFileEvent instead of
// being tracked as source files.
type Watcher struct {
	mu               sync.Mutex
	watcher          *fsnotify.Watcher
	store            *Store
	debounce         map[string]time.Time
	debounceDur      time.Duration
	stopCh           chan struct{}
	doneCh           chan struct{}
	running          bool
	OnBuildFileEvent func(path string)
}

// buildFileNames are the non-Java watched files named in the external
// interfaces: a change to any of these marks the compiler stale.
var buildFileNames = map[string]struct{}{
	"pom.xml":         {},
	"BUILD":           {},
	"WORKSPACE":       {},
	"javaconfig.json": {},
}

// NewWatcher creates a watcher bound to store. Call Start to begin.
func NewWatcher(store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:     fw,
		store:       store,
		debounce:    make(map[string]time.Time),
		debounceDur: 250 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// AddRoot recursively registers every non-excluded directory under root
// with the underlying fsnotify watcher.
func (w *Watcher) AddRoot(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root {
			if _, excluded := excludedDirs[info.Name()]; excluded {
				return filepath.SkipDir
			}
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			logging.WatcherWarn("watch %s: %v", path, addErr)
		}
		return nil
	})
}

// Watch registers a single directory with the underlying fsnotify watcher.
func (w *Watcher) Watch(dir string) error {
	return w.watcher.Add(dir)
}

// Start begins the non-blocking event loop.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.loop()
}

func (w *Watcher) loop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.WatcherWarn("fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	last, pending := w.debounce[ev.Name]
	now := time.Now()
	if pending && now.Sub(last) < w.debounceDur {
		w.debounce[ev.Name] = now
		w.mu.Unlock()
		return
	}
	w.debounce[ev.Name] = now
	w.mu.Unlock()

	base := filepath.Base(ev.Name)
	_, isBuildFile := buildFileNames[base]

	switch {
	case ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0:
		if isBuildFile && w.OnBuildFileEvent != nil {
			w.OnBuildFileEvent(ev.Name)
		} else if filepath.Ext(ev.Name) == ".java" {
			w.store.ExternalDelete(ev.Name)
		}
	case ev.Op&fsnotify.Create != 0:
		if isBuildFile && w.OnBuildFileEvent != nil {
			w.OnBuildFileEvent(ev.Name)
		} else if filepath.Ext(ev.Name) == ".java" {
			w.store.ExternalCreate(ev.Name)
		}
	case ev.Op&fsnotify.Write != 0:
		if isBuildFile && w.OnBuildFileEvent != nil {
			w.OnBuildFileEvent(ev.Name)
		} else if filepath.Ext(ev.Name) == ".java" {
			w.store.ExternalChange(ev.Name)
		}
	}
}

// Stop terminates the watcher goroutine and closes the underlying fsnotify
// watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}
