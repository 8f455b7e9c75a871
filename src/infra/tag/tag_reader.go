package tag

import (
	"context"
	"fmt"
	"os"

	"github.com/contre95/id3shim/src/features/tagging"
	"github.com/dhowden/tag"
)

// TagReader reads tags with the dhowden/tag library, which shares no code
// with the writer and so serves as an independent check of saved files.
type TagReader struct{}

// NewTagReader creates a new TagReader
func NewTagReader() tagging.TagReader {
	return &TagReader{}
}

// ReadFileTags reads the tag of a music file.
func (r *TagReader) ReadFileTags(ctx context.Context, filePath string) (*tagging.TagInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	tags, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &tagging.TagInfo{
		Path:       filePath,
		Format:     string(tags.Format()),
		Title:      tags.Title(),
		Artist:     tags.Artist(),
		Album:      tags.Album(),
		Year:       tags.Year(),
		Genre:      tags.Genre(),
		Comment:    tags.Comment(),
		HasPicture: tags.Picture() != nil,
	}, nil
}
