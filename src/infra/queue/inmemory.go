package queue

import (
	"sort"
	"sync"

	"github.com/contre95/id3shim/src/features/watching"
)

// InMemoryQueue is an in-memory implementation of the Queue interface
type InMemoryQueue struct {
	items sync.Map // map[string]watching.QueueItem
}

// NewInMemoryQueue creates a new in-memory queue
func NewInMemoryQueue() watching.Queue {
	return &InMemoryQueue{}
}

// Add adds a new item to the queue
func (q *InMemoryQueue) Add(item watching.QueueItem) error {
	if _, loaded := q.items.LoadOrStore(item.Path, item); loaded {
		return watching.ErrAlreadyExists
	}
	return nil
}

// GetAll returns all items in the queue, oldest first
func (q *InMemoryQueue) GetAll() []watching.QueueItem {
	var items []watching.QueueItem
	q.items.Range(func(_, value any) bool {
		if item, ok := value.(watching.QueueItem); ok {
			items = append(items, item)
		}
		return true
	})
	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Path < items[j].Path
		}
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
	return items
}

// Remove removes an item from the queue by path
func (q *InMemoryQueue) Remove(path string) error {
	if _, loaded := q.items.LoadAndDelete(path); !loaded {
		return watching.ErrNotFound
	}
	return nil
}

// Len returns the number of queued items
func (q *InMemoryQueue) Len() int {
	n := 0
	q.items.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
