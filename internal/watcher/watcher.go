// Package watcher turns filesystem activity under library roots into
// debounced batches. A batch is delivered once the tree has been quiet for
// the debounce interval, so a file still being copied triggers one re-plan
// instead of one per write.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Nomadcxx/jellyfix/internal/logging"
	"github.com/Nomadcxx/jellyfix/internal/media"
	"github.com/fsnotify/fsnotify"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventWrite  EventType = "write"
	EventMove   EventType = "move"
	EventDelete EventType = "delete"
)

type FileEvent struct {
	Type EventType
	Path string
}

// Batch is the set of changes seen during one quiet period.
type Batch struct {
	// Roots are the watched roots containing at least one changed path.
	Roots  []string
	Events []FileEvent
}

// Handler receives batches. Batches are delivered one at a time from the
// goroutine running Run.
type Handler interface {
	HandleBatch(ctx context.Context, batch Batch) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, batch Batch) error

func (f HandlerFunc) HandleBatch(ctx context.Context, batch Batch) error {
	return f(ctx, batch)
}

const DefaultDebounce = 10 * time.Second

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	handler   Handler
	logger    *logging.Logger
	debounce  time.Duration
	recursive bool

	mu    sync.Mutex
	roots []string
}

type Option func(*Watcher)

func WithRecursive(recursive bool) Option {
	return func(w *Watcher) {
		w.recursive = recursive
	}
}

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

func NewWatcher(handler Handler, opts ...Option) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		handler:   handler,
		logger:    logging.Nop(),
		debounce:  DefaultDebounce,
		recursive: true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds library roots. It may be called before or during Run.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		root, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("unable to resolve %s: %w", path, err)
		}
		if w.recursive {
			if err := w.addRecursive(root); err != nil {
				return err
			}
		} else if err := w.fsWatcher.Add(root); err != nil {
			return fmt.Errorf("unable to watch %s: %w", root, err)
		}

		w.mu.Lock()
		w.roots = append(w.roots, root)
		w.mu.Unlock()
		w.logger.Info("watcher", "Watching library", logging.F("path", root))
	}
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("unable to watch %s: %w", root, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && media.IsHidden(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("unable to watch %s: %w", path, err)
		}
		w.logger.Debug("watcher", "Watching directory", logging.F("path", path))
		return nil
	})
}

// Run delivers batches until ctx is cancelled or the watcher is closed.
// Pending events are dropped on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]FileEvent)
	var fire <-chan time.Time

	arm := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if w.collect(event, pending) {
				arm()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Warn("watcher", "Watcher error", logging.F("error", err.Error()))

		case <-fire:
			fire = nil
			batch := w.batch(pending)
			pending = make(map[string]FileEvent)
			if len(batch.Events) == 0 {
				continue
			}
			w.logger.Info("watcher", "Library changed",
				logging.F("events", len(batch.Events)),
				logging.F("roots", strings.Join(batch.Roots, ", ")))
			if err := w.handler.HandleBatch(ctx, batch); err != nil {
				w.logger.Error("watcher", "Error handling batch", err)
			}
		}
	}
}

// collect records a relevant event and reports whether the debounce timer
// should restart.
func (w *Watcher) collect(event fsnotify.Event, pending map[string]FileEvent) bool {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.recursive || media.IsHidden(event.Name) {
				return false
			}
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("watcher", "Unable to watch new directory", logging.F("path", event.Name), logging.F("error", err.Error()))
			}
			// a folder moved in arrives as one event; its files never fire
			found := false
			_ = filepath.WalkDir(event.Name, func(path string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() && Relevant(path) {
					pending[path] = FileEvent{Type: EventCreate, Path: path}
					found = true
				}
				return nil
			})
			return found
		}
	}

	if !Relevant(event.Name) {
		return false
	}

	eventType := EventCreate
	switch {
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventWrite
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventMove
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventDelete
	case event.Op&fsnotify.Create == fsnotify.Create:
	default:
		return false
	}

	w.logger.Debug("watcher", "Event", logging.F("type", string(eventType)), logging.F("path", event.Name))
	pending[event.Name] = FileEvent{Type: eventType, Path: event.Name}
	return true
}

func (w *Watcher) batch(pending map[string]FileEvent) Batch {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()

	var b Batch
	touched := make(map[string]bool)
	for _, ev := range pending {
		b.Events = append(b.Events, ev)
		if root := owningRoot(roots, ev.Path); root != "" && !touched[root] {
			touched[root] = true
			b.Roots = append(b.Roots, root)
		}
	}
	sort.Slice(b.Events, func(i, j int) bool { return b.Events[i].Path < b.Events[j].Path })
	sort.Strings(b.Roots)
	return b
}

// owningRoot returns the deepest watched root containing path.
func owningRoot(roots []string, path string) string {
	best := ""
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

// Relevant reports whether a change to path can alter a plan: media files,
// subtitles, NFOs and images outside hidden folders. Temporary files written
// by atomic saves are ignored.
func Relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.Contains(base, ".tmp-") || strings.HasSuffix(base, ".part") {
		return false
	}
	return media.IsVideo(path) || media.IsSubtitle(path) || media.IsNFO(path) || media.IsImage(path)
}

func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}
