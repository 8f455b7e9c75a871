package watching

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/contre95/id3shim/src/features/tagging"
	"github.com/contre95/id3shim/src/id3"
)

// Normalizer rewrites the tag of one file.
type Normalizer interface {
	Normalize(ctx context.Context, path string, version id3.Version) (*tagging.TagInfo, error)
}

// DepthRecorder is told the queue length whenever it changes.
type DepthRecorder interface {
	SetQueueDepth(n int)
}

// Service queues the files reported by the watcher and normalizes them
// one at a time. Saving a tag replaces the file, which the watcher reports
// again, so files are not queued for the settle period after they were
// written.
type Service struct {
	queue      Queue
	normalizer Normalizer
	depth      DepthRecorder
	version    id3.Version
	settle     time.Duration
	wake       chan struct{}

	mu      sync.Mutex
	written map[string]time.Time
}

// NewService creates a new watching service. settle should outlast the
// watcher's debounce.
func NewService(queue Queue, normalizer Normalizer, depth DepthRecorder, version id3.Version, settle time.Duration) *Service {
	return &Service{
		queue:      queue,
		normalizer: normalizer,
		depth:      depth,
		version:    version,
		settle:     settle,
		wake:       make(chan struct{}, 1),
		written:    make(map[string]time.Time),
	}
}

// Run consumes events until ctx is cancelled or events is closed. The
// worker is stopped before Run returns.
func (s *Service) Run(ctx context.Context, events <-chan FileEvent) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.work(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.Enqueue(event.Path)
		}
	}
}

// Enqueue queues a file for normalization. A file already queued or
// written by the service within the settle period is skipped.
func (s *Service) Enqueue(path string) {
	if s.recentlyWritten(path) {
		slog.Debug("Ignoring change made by the service", "path", path)
		return
	}
	err := s.queue.Add(QueueItem{Path: path, Timestamp: time.Now()})
	if errors.Is(err, ErrAlreadyExists) {
		slog.Debug("File already queued", "path", path)
		return
	}
	if err != nil {
		slog.Error("Failed to queue file", "path", path, "error", err)
		return
	}
	s.depth.SetQueueDepth(s.queue.Len())
	slog.Info("File queued", "path", path)

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Service) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.drain(ctx)
		}
	}
}

// drain normalizes every queued file.
func (s *Service) drain(ctx context.Context) {
	for _, item := range s.queue.GetAll() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.normalizer.Normalize(ctx, item.Path, s.version); err != nil {
			slog.Error("Failed to normalize file", "path", item.Path, "error", err)
		}
		s.markWritten(item.Path)
		if err := s.queue.Remove(item.Path); err != nil {
			slog.Warn("Failed to dequeue file", "path", item.Path, "error", err)
		}
		s.depth.SetQueueDepth(s.queue.Len())
	}
}

func (s *Service) markWritten(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for p, at := range s.written {
		if now.Sub(at) >= s.settle {
			delete(s.written, p)
		}
	}
	s.written[path] = now
}

func (s *Service) recentlyWritten(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.written[path]
	return ok && time.Since(at) < s.settle
}
