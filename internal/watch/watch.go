// Package watch reports text files that have settled after being written
// under a directory tree.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	DefaultDelay        = 200 * time.Millisecond
	defaultEventsBuffer = 100
	defaultErrorsBuffer = 10
)

// Event is a file that was created or written and then left alone for the
// debounce delay.
type Event struct {
	Path string
}

// Watcher watches a directory tree recursively and emits one Event per burst
// of writes to a matching file.
type Watcher struct {
	root  string
	match func(path string) bool

	fsWatcher *fsnotify.Watcher
	events    chan Event
	errors    chan error
	ready     chan string
	done      chan struct{}
	closeOnce sync.Once

	debouncer *debouncer

	mu      sync.Mutex
	watched map[string]struct{}

	wg sync.WaitGroup
}

// New starts watching root. match selects the files of interest; nil
// matches every file. delay <= 0 uses DefaultDelay.
func New(root string, match func(string) bool, delay time.Duration) (*Watcher, error) {
	if root == "" {
		return nil, fmt.Errorf("root is required")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("abs root: %w", err)
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		root:      absRoot,
		match:     match,
		fsWatcher: fsw,
		events:    make(chan Event, defaultEventsBuffer),
		errors:    make(chan error, defaultErrorsBuffer),
		ready:     make(chan string, defaultEventsBuffer),
		done:      make(chan struct{}),
		watched:   make(map[string]struct{}),
	}
	w.debouncer = newDebouncer(delay, func(path string) {
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})

	if err := w.addRecursive(absRoot); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.events)
	defer close(w.errors)

	for {
		select {
		case <-w.done:
			return
		case path := <-w.ready:
			w.emitEvent(Event{Path: path})
		case evt, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handle(evt)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.emitError(err)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event) {
	if evt.Name == "" || evt.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	path := filepath.Clean(evt.Name)
	if ignored(w.root, path) {
		return
	}

	info, err := os.Lstat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if evt.Op&fsnotify.Create != 0 {
			if err := w.addRecursive(path); err != nil {
				w.emitError(err)
			}
		}
		return
	}
	if !info.Mode().IsRegular() || !w.match(path) {
		return
	}
	w.debouncer.Touch(path)
}

// Events returns the channel of settled files. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors returns the channel of watcher errors.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Root is the absolute directory being watched.
func (w *Watcher) Root() string { return w.root }

// Close stops the watcher and releases OS resources. Pending debounced
// files are dropped.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	w.closeOnce.Do(func() {
		close(w.done)
		w.debouncer.Stop()
	})
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) emitEvent(e Event) {
	select {
	case w.events <- e:
	default:
		// Drop if the consumer is stalled; the next write re-triggers.
	}
}

func (w *Watcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.Type()&os.ModeSymlink != 0 || !d.IsDir() {
			return nil
		}
		if path != w.root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
}

func (w *Watcher) addDir(path string) error {
	clean := filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watched[clean]; ok {
		return nil
	}
	if err := w.fsWatcher.Add(clean); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("watch %s: %w", clean, err)
	}
	w.watched[clean] = struct{}{}
	return nil
}

func skipDir(name string) bool {
	switch name {
	case "node_modules", "vendor":
		return true
	}
	return strings.HasPrefix(name, ".")
}

// ignored reports whether path lies outside root, inside a skipped
// directory, or is an editor temp file.
func ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return true
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for _, p := range parts[:len(parts)-1] {
		if skipDir(p) {
			return true
		}
	}
	base := parts[len(parts)-1]
	return strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp")
}
