package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 100
)

// ChangeEvent describes a modification to one of the JSON data files.
type ChangeEvent struct {
	// File is the base name of the changed file, e.g. "sessions.json".
	File string
	// Op is the filesystem operation that triggered the event.
	Op string
	At time.Time
}

// StoreWatcher watches the data directory for changes to the JSON data
// files using fsnotify. Other redline processes writing proposals or
// resolving reviews surface here.
type StoreWatcher struct {
	dataDir string
	watcher *fsnotify.Watcher

	mu          sync.RWMutex
	subscribers map[string][]chan<- ChangeEvent // pattern -> channels
	debounce    map[string]*time.Timer          // file -> debounce timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStoreWatcher creates a new watcher for the data directory.
// The directory is created if it doesn't exist.
func NewStoreWatcher(dataDir string) (*StoreWatcher, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dataDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sw := &StoreWatcher{
		dataDir:     dataDir,
		watcher:     watcher,
		subscribers: make(map[string][]chan<- ChangeEvent),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	sw.wg.Add(1)
	go sw.run()

	return sw, nil
}

// Watch returns a channel that receives events when data files matching
// the pattern change. Patterns use doublestar glob syntax against the
// file base name; empty matches everything.
func (sw *StoreWatcher) Watch(ctx context.Context, pattern string) (<-chan ChangeEvent, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	ch := make(chan ChangeEvent, eventBufferSize)

	sw.mu.Lock()
	sw.subscribers[pattern] = append(sw.subscribers[pattern], ch)
	sw.mu.Unlock()

	// Handle context cancellation to unsubscribe
	go func() {
		select {
		case <-ctx.Done():
			sw.unsubscribe(pattern, ch)
		case <-sw.ctx.Done():
			// Watcher is closing, channel will be closed by Close()
		}
	}()

	return ch, nil
}

// Close stops watching and closes all subscriber channels.
func (sw *StoreWatcher) Close() error {
	sw.cancel()

	// Stop all debounce timers
	sw.mu.Lock()
	for _, timer := range sw.debounce {
		timer.Stop()
	}

	// Close all subscriber channels
	for _, subs := range sw.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	sw.subscribers = make(map[string][]chan<- ChangeEvent)
	sw.mu.Unlock()

	err := sw.watcher.Close()
	sw.wg.Wait()
	return err
}

// unsubscribe removes a channel from the subscriber list and closes it.
func (sw *StoreWatcher) unsubscribe(pattern string, ch chan<- ChangeEvent) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	subs := sw.subscribers[pattern]
	for i, sub := range subs {
		if sub == ch {
			sw.subscribers[pattern] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(sw.subscribers[pattern]) == 0 {
		delete(sw.subscribers, pattern)
	}
}

// run processes filesystem events from fsnotify.
func (sw *StoreWatcher) run() {
	defer sw.wg.Done()

	for {
		select {
		case <-sw.ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)
		case _, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// handleEvent processes a single filesystem event.
func (sw *StoreWatcher) handleEvent(event fsnotify.Event) {
	// Only care about writes/creates/renames (the atomic save lands as a rename)
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	filename := filepath.Base(event.Name)

	// Ignore temp files from in-flight atomic saves
	if !strings.HasSuffix(filename, ".json") || strings.HasSuffix(filename, ".tmp") {
		return
	}

	op := event.Op.String()

	// Debounce events per file
	sw.mu.Lock()
	if timer, exists := sw.debounce[filename]; exists {
		timer.Stop()
	}
	sw.debounce[filename] = time.AfterFunc(debounceDelay, func() {
		sw.notifySubscribers(filename, op)
	})
	sw.mu.Unlock()
}

// notifySubscribers sends an event to all matching subscribers.
func (sw *StoreWatcher) notifySubscribers(filename, op string) {
	event := ChangeEvent{
		File: filename,
		Op:   op,
		At:   time.Now(),
	}

	sw.mu.Lock()
	defer sw.mu.Unlock()

	for pattern, subs := range sw.subscribers {
		if ok, _ := doublestar.Match(pattern, filename); ok {
			for _, ch := range subs {
				select {
				case ch <- event:
				default:
					// Channel full, drop event to prevent blocking
				}
			}
		}
	}

	// Clean up debounce timer
	delete(sw.debounce, filename)
}
