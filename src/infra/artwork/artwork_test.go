package artwork

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResize_ShrinksKeepingAspect(t *testing.T) {
	data, mime, err := NewService().Resize(pngImage(t, 200, 100), 50, 80)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestResize_SmallImageKeepsSize(t *testing.T) {
	data, _, err := NewService().Resize(pngImage(t, 40, 30), 100, 0)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 30), img.Bounds().Size())
}

func TestResize_InvalidData(t *testing.T) {
	_, _, err := NewService().Resize([]byte("not an image"), 100, 85)
	assert.Error(t, err)
}
