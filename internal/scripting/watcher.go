package scripting

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses editor save bursts into one event per file.
const DefaultDebounce = 200 * time.Millisecond

// MinDebounce is the shortest accepted debounce window.
const MinDebounce = 10 * time.Millisecond

// EventKind is the last filesystem operation seen for a path in a burst.
type EventKind int

const (
	EventWrite EventKind = iota
	EventCreate
	EventRemove
	EventRename
)

func (k EventKind) String() string {
	switch k {
	case EventWrite:
		return "write"
	case EventCreate:
		return "create"
	case EventRemove:
		return "remove"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// WatchEvent is a debounced change to one path.
type WatchEvent struct {
	Path string
	Kind EventKind
}

// Watcher observes a directory tree on its own goroutine and delivers
// debounced events through a bounded channel. It never touches the Bridge
// or the interpreter.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	events   chan WatchEvent
	logger   *log.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type pendingEvent struct {
	kind EventKind
	at   time.Time
}

// NewWatcher starts watching dir recursively. buffer bounds the number of
// delivered events waiting to be polled.
func NewWatcher(dir string, debounce time.Duration, buffer int, logger *log.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if debounce < MinDebounce {
		debounce = MinDebounce
	}
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = log.Default()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scripting: watch %s: not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scripting: create watcher: %w", err)
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: debounce,
		events:   make(chan WatchEvent, buffer),
		logger:   logger,
		done:     make(chan struct{}),
	}
	if err := w.addTree(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()

	logger.Info("script watcher initialized", "dir", dir, "debounce", debounce)
	return w, nil
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("scripting: watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer w.wg.Done()

	pending := make(map[string]pendingEvent)
	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			kind, ok := kindOf(ev.Op)
			if !ok {
				continue
			}
			path := filepath.Clean(ev.Name)
			if kind == EventCreate {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if err := w.addTree(path); err != nil {
						w.logger.Warn("could not watch new directory", "dir", path, "error", err)
					}
					continue
				}
			}
			pending[path] = pendingEvent{kind: kind, at: time.Now()}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("script watcher error", "error", err)

		case now := <-ticker.C:
			w.flush(pending, now)
		}
	}
}

// flush delivers every path that has been quiet for the debounce window.
// A full channel leaves the path pending for the next flush.
func (w *Watcher) flush(pending map[string]pendingEvent, now time.Time) {
	for path, pe := range pending {
		if now.Sub(pe.at) < w.debounce {
			continue
		}
		select {
		case w.events <- WatchEvent{Path: path, Kind: pe.kind}:
			delete(pending, path)
		default:
			return
		}
	}
}

func kindOf(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return EventRemove, true
	case op.Has(fsnotify.Rename):
		return EventRename, true
	case op.Has(fsnotify.Create):
		return EventCreate, true
	case op.Has(fsnotify.Write):
		return EventWrite, true
	}
	return 0, false
}

// Poll returns every event delivered so far without blocking.
func (w *Watcher) Poll() []WatchEvent {
	var out []WatchEvent
	for {
		select {
		case ev := <-w.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Close stops the watcher goroutine and releases the OS watch.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}
