package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/contre95/id3shim/src/features/watching"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a directory and emits one event per MP3 file once the
// file has stopped changing for the debounce period.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounce      time.Duration
	debounceMutex sync.Mutex
	timers        map[string]*time.Timer
	pending       map[string]watching.FileEventType
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- watching.FileEvent
}

// NewWatcher creates a new file system watcher
func NewWatcher(eventChan chan<- watching.FileEvent, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		debounce:  debounce,
		timers:    make(map[string]*time.Timer),
		pending:   make(map[string]watching.FileEventType),
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the path for file changes
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.watcher.Add(watchPath); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
		delete(w.pending, path)
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent starts or resets the debounce timer of the event's file
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType watching.FileEventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = watching.FileCreated
	case event.Has(fsnotify.Write):
		eventType = watching.FileModified
	default:
		return
	}
	if !isSupportedFile(event.Name) {
		return
	}

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	// a file created and then written is still reported as created
	if prev, ok := w.pending[event.Name]; !ok || prev != watching.FileCreated {
		w.pending[event.Name] = eventType
	}
	if timer, ok := w.timers[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.emit(path)
	})
}

func isSupportedFile(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".mp3"
}

// emit sends the settled event of one file
func (w *Watcher) emit(path string) {
	w.debounceMutex.Lock()
	eventType, ok := w.pending[path]
	delete(w.pending, path)
	delete(w.timers, path)
	w.debounceMutex.Unlock()
	if !ok {
		return
	}

	event := watching.FileEvent{
		Path:      path,
		EventType: eventType,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Debug("Emitted file event after debounce", "path", path, "type", eventType)
	default:
		slog.Warn("Event channel full, dropping file event", "path", path)
	}
}
