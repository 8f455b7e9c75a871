package watching

import (
	"time"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated  FileEventType = "created"
	FileModified FileEventType = "modified"
)

// FileEvent represents a settled change to one file
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
}
