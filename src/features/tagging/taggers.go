package tagging

import (
	"context"
	"time"
)

// TagReader reads tags back from a file, independently of the writer.
type TagReader interface {
	ReadFileTags(ctx context.Context, filePath string) (*TagInfo, error)
}

// Journal keeps a record of every change written to a file.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
	History(ctx context.Context, filePath string) ([]JournalEntry, error)
}

// ArtworkResizer fits cover images to the configured size and re-encodes
// them. It returns the new image data and its MIME type.
type ArtworkResizer interface {
	Resize(data []byte, maxSize, quality int) ([]byte, string, error)
}

// MetricsRecorder receives the outcome of tagging operations.
type MetricsRecorder interface {
	ObserveSave(version int, d time.Duration)
	ObserveRewrite(outcome string, d time.Duration)
	ObserveCover(d time.Duration)
}
