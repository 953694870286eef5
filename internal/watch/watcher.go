// Package watch re-analyzes source files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/sauco/internal/config"
	"github.com/standardbeagle/sauco/internal/debug"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
	"github.com/standardbeagle/sauco/internal/scan"
	"github.com/standardbeagle/sauco/pkg/pathutil"
)

// EventType is the kind of change a report was produced for
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
)

func (t EventType) String() string {
	switch t {
	case EventCreate:
		return "created"
	case EventWrite:
		return "changed"
	case EventRemove:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is delivered once per file after its changes settle.
// Report is nil for removed files.
type Event struct {
	Path   string
	Type   EventType
	Report *scan.FileReport
}

// Options controls a watch session
type Options struct {
	Debounce time.Duration // 0 selects config.DefaultDebounceMs
}

// Stats describes the activity of a watch session
type Stats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}

// Watcher monitors the scanner's root and analyzes changed files its filter selects
type Watcher struct {
	scanner   *scan.Scanner
	debouncer *debouncer
	ready     chan struct{}

	statsMu sync.RWMutex
	stats   Stats
}

// New creates a watcher for the tree the scanner covers
func New(scanner *scan.Scanner, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = time.Duration(config.DefaultDebounceMs) * time.Millisecond
	}
	return &Watcher{
		scanner:   scanner,
		debouncer: newDebouncer(opts.Debounce),
		ready:     make(chan struct{}),
	}
}

// Ready is closed once every directory is watched
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx ends, calling handle for every settled change.
// handle runs on a single goroutine, one event at a time.
func (w *Watcher) Run(ctx context.Context, handle func(Event)) error {
	root := w.scanner.Root()
	info, err := os.Stat(root)
	if err != nil {
		return saucoerrors.NewFileError("watch", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root %s is not a directory", root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	debug.LogWatch("starting file watcher for directory: %s\n", root)
	if err := w.addWatches(fsw, root); err != nil {
		return fmt.Errorf("failed to add watches starting from %s: %w", root, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		w.setActive(false)
		debug.LogWatch("file watcher stopped\n")
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.debouncer.run(ctx, func(events map[string]EventType) {
			w.flush(events, handle)
		})
	}()

	w.setActive(true)
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.incrementStats(0, 1)
			debug.LogWatch("file watcher error: %v\n", err)
		}
	}
}

// addWatches recursively watches every directory the filter does not prune
func (w *Watcher) addWatches(fsw *fsnotify.Watcher, dir string) error {
	root := w.scanner.Root()
	visitedDirs := make(map[string]bool)

	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && w.scanner.Filter().ExcludedDir(pathutil.ToSlashRelative(path, root)) {
			return filepath.SkipDir
		}

		if err := fsw.Add(path); err != nil {
			debug.LogWatch("failed to add watch for %s: %v\n", path, err)
		}
		return nil
	})
}

// handleEvent turns one fsnotify event into a debounced change
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	path := event.Name
	rel := pathutil.ToSlashRelative(path, w.scanner.Root())
	debug.LogWatch("received event %v for path %s\n", event.Op, rel)

	info, err := os.Stat(path)
	if err != nil {
		// removed, or renamed away
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.scanner.Filter().Match(rel) {
			w.debouncer.add(path, EventRemove)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 && !w.scanner.Filter().ExcludedDir(rel) {
			if err := w.addWatches(fsw, path); err != nil {
				debug.LogWatch("failed to watch new directory %s: %v\n", rel, err)
			}
			w.queueExisting(path)
		}
		return
	}

	if !w.scanner.Filter().Match(rel) {
		return
	}

	switch {
	case event.Op&fsnotify.Create != 0:
		w.debouncer.add(path, EventCreate)
	case event.Op&(fsnotify.Write|fsnotify.Rename) != 0:
		w.debouncer.add(path, EventWrite)
	}
}

// queueExisting picks up files that landed in a new directory before its watch was added
func (w *Watcher) queueExisting(dir string) {
	root := w.scanner.Root()
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel := pathutil.ToSlashRelative(path, root)
		if info.IsDir() {
			if path != dir && w.scanner.Filter().ExcludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Mode().IsRegular() && w.scanner.Filter().Match(rel) {
			w.debouncer.add(path, EventCreate)
		}
		return nil
	})
}

// flush analyzes a settled batch: removals first, then changes, then creations
func (w *Watcher) flush(events map[string]EventType, handle func(Event)) {
	paths := make([]string, 0, len(events))
	for path := range events {
		paths = append(paths, path)
	}
	sort.Slice(paths, func(i, j int) bool {
		ti, tj := flushOrder(events[paths[i]]), flushOrder(events[paths[j]])
		if ti != tj {
			return ti < tj
		}
		return paths[i] < paths[j]
	})

	debug.LogWatch("processing %d debounced file events\n", len(paths))
	for _, path := range paths {
		event := Event{
			Path: pathutil.ToSlashRelative(path, w.scanner.Root()),
			Type: events[path],
		}
		if event.Type != EventRemove {
			if _, err := os.Stat(path); err != nil {
				// gone again before the quiet period ended
				event.Type = EventRemove
			} else {
				report := w.scanner.AnalyzeFile(path)
				event.Report = &report
				if report.Err() != nil {
					w.incrementStats(0, 1)
				}
			}
		}
		handle(event)
		w.incrementStats(1, 0)
	}
}

func flushOrder(t EventType) int {
	switch t {
	case EventRemove:
		return 0
	case EventWrite:
		return 1
	default:
		return 2
	}
}

func (w *Watcher) incrementStats(events, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.stats.EventsProcessed += events
	w.stats.ErrorCount += errors
	w.stats.LastEventTime = time.Now()
}

func (w *Watcher) setActive(active bool) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.IsActive = active
}

// Stats returns the current watch statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return w.stats
}
