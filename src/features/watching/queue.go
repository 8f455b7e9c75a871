package watching

import (
	"errors"
	"time"
)

var (
	ErrAlreadyExists = errors.New("file already in the queue")
	ErrNotFound      = errors.New("file was not found in the queue")
)

// QueueItem is a file waiting to be normalized. Items are keyed by path.
type QueueItem struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// Queue holds the files waiting to be normalized.
type Queue interface {
	// Add adds a new item to the queue, returns ErrAlreadyExists if the path is already queued.
	Add(item QueueItem) error
	// GetAll returns all items in the queue, oldest first.
	GetAll() []QueueItem
	// Remove removes an item from the queue by path
	Remove(path string) error
	// Len returns the number of queued items
	Len() int
}
