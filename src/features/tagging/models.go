package tagging

import (
	"errors"
	"time"
)

var (
	// ErrVerifyFailed is returned when a saved file does not read back with
	// the requested version.
	ErrVerifyFailed = errors.New("saved tag failed verification")
	// ErrUnsupportedFile is returned for files that cannot carry an ID3v2 tag.
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrInvalidFrameID  = errors.New("invalid frame id")
	// ErrOutsideRoot is returned for API paths outside the configured root.
	ErrOutsideRoot = errors.New("path outside of the served root")
	ErrInvalidImage    = errors.New("invalid image")
)

// Operation names a journaled change.
type Operation string

const (
	OpSave    Operation = "save"
	OpRewrite Operation = "rewrite"
	OpCover   Operation = "cover"
)

// TagInfo is the tag of a file as read back from disk.
type TagInfo struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Year       int    `json:"year"`
	Genre      string `json:"genre"`
	Comment    string `json:"comment"`
	HasPicture bool   `json:"has_picture"`
}

// JournalEntry records one change written to a file.
type JournalEntry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Operation Operation `json:"operation"`
	FrameID   string    `json:"frame_id,omitempty"`
	Version   int       `json:"version"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// RewriteOptions overrides the configured rewrite settings. Zero values
// fall back to the configuration.
type RewriteOptions struct {
	Frame   string
	Charset string
	Version int
}
