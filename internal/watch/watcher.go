// Package watch keeps shader builds up to date: it reacts to file system
// changes (or polls) and runs a rescan and build pass for each batch.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before its change is
// reported.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors shader directories using fsnotify and reports debounced
// changes. Changes are coalesced: when the consumer is busy, further
// notifications are dropped because one pending signal already covers them.
type Watcher struct {
	Changes <-chan string // Read-only external channel

	changes  chan string // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
	ignore   func(name string, op fsnotify.Op) bool

	mu   sync.Mutex
	dirs map[string]bool
}

// NewWatcher creates a watcher. ignore, when non-nil, filters out events that
// should never trigger a build, such as writes to generated outputs.
func NewWatcher(debounce time.Duration, ignore func(name string, op fsnotify.Op) bool) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan string, 1)
	return &Watcher{
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: debounce,
		ignore:   ignore,
		dirs:     make(map[string]bool),
	}, nil
}

// Add starts watching dir. Adding a directory twice is a no-op.
func (w *Watcher) Add(dir string) error {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirs[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	return nil
}

// Dirs returns the number of watched directories.
func (w *Watcher) Dirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Start begins delivering changes.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the watcher and channels.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Debounce: track last event time per file.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.forget(event.Name)
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next change or poll recovers.
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, ".tmp") || strings.HasPrefix(base, ".") {
		return false
	}
	return w.ignore == nil || !w.ignore(event.Name, event.Op)
}

// forget drops a watched directory that was deleted or moved away. The kernel
// has already released its watch, so a later Add must register it again.
func (w *Watcher) forget(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.dirs, filepath.Clean(name))
}

func (w *Watcher) emit(file string) {
	select {
	case w.changes <- file:
	default:
	}
}
