package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/contre95/id3shim/src/features/tagging"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const defaultQuality = 85

// Service fits cover images for embedding.
type Service struct{}

// NewService creates a new artwork service
func NewService() tagging.ArtworkResizer {
	return &Service{}
}

// Resize decodes a JPEG, PNG, GIF or WebP image, shrinks it to fit in a
// maxSize square keeping its aspect ratio and re-encodes it as JPEG.
// A maxSize of 0 keeps the original dimensions.
func (s *Service) Resize(data []byte, maxSize, quality int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if maxSize > 0 && (bounds.Dx() > maxSize || bounds.Dy() > maxSize) {
		img = resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3)
		slog.Debug("Artwork resized", "format", format, "from", bounds.Size(), "to", img.Bounds().Size())
	}

	if quality <= 0 {
		quality = defaultQuality
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}
