package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/justyntemme/dropshelf/internal/debug"
)

// FileWatcher reports shelf files that were deleted or moved away. It
// watches the parent directories of the tracked files, since fsnotify
// does not follow a single file across renames.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	tracked  map[string]bool // Shelf file paths
	dirs     map[string]int  // Watched dir -> number of tracked files in it
	gone     chan string     // Paths confirmed missing
	done     chan struct{}   // Shutdown signal
	debounce time.Duration
}

// NewFileWatcher creates a watcher; debounce <= 0 selects 200ms.
func NewFileWatcher(debounce time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	fw := &FileWatcher{
		watcher:  w,
		tracked:  make(map[string]bool),
		dirs:     make(map[string]int),
		gone:     make(chan string, 16),
		done:     make(chan struct{}),
		debounce: debounce,
	}

	go fw.run()
	return fw, nil
}

// run processes filesystem events with debouncing
func (fw *FileWatcher) run() {
	lastEvent := make(map[string]time.Time)
	ticker := time.NewTicker(fw.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(event.Name)
			fw.mu.Lock()
			if fw.tracked[path] {
				lastEvent[path] = time.Now()
				debug.Log(debug.WATCH, "FSNotify event: %s on %s", event.Op, path)
			}
			fw.mu.Unlock()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "FSNotify error: %v", err)

		case <-ticker.C:
			now := time.Now()
			for path, at := range lastEvent {
				if now.Sub(at) < fw.debounce {
					continue
				}
				delete(lastEvent, path)
				// Report only files still missing after the debounce.
				if _, err := os.Lstat(path); err == nil {
					continue
				}
				select {
				case fw.gone <- path:
					debug.Log(debug.WATCH, "Shelf file gone: %s", path)
				case <-fw.done:
					return
				}
			}
		}
	}
}

// Sync makes the tracked set equal to paths, adding and removing directory
// watches as needed. Directories that cannot be watched are logged and
// skipped.
func (fw *FileWatcher) Sync(paths []string) {
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[filepath.Clean(p)] = true
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for p := range fw.tracked {
		if !want[p] {
			fw.untrackLocked(p)
		}
	}
	for p := range want {
		if !fw.tracked[p] {
			fw.trackLocked(p)
		}
	}
}

func (fw *FileWatcher) trackLocked(path string) {
	dir := filepath.Dir(path)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			debug.Log(debug.WATCH, "Cannot watch %s: %v", dir, err)
			return
		}
		debug.Log(debug.WATCH, "Now watching directory: %s", dir)
	}
	fw.dirs[dir]++
	fw.tracked[path] = true
}

func (fw *FileWatcher) untrackLocked(path string) {
	delete(fw.tracked, path)
	dir := filepath.Dir(path)
	fw.dirs[dir]--
	if fw.dirs[dir] > 0 {
		return
	}
	delete(fw.dirs, dir)
	if err := fw.watcher.Remove(dir); err != nil {
		// Path may already be gone
		debug.Log(debug.WATCH, "Error unwatching %s: %v", dir, err)
	}
}

// Tracked returns the number of tracked files.
func (fw *FileWatcher) Tracked() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return len(fw.tracked)
}

// Gone returns the channel of shelf files that disappeared
func (fw *FileWatcher) Gone() <-chan string {
	return fw.gone
}

// Close shuts down the watcher
func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
