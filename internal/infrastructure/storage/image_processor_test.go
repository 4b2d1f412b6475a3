package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageProcessor_Validate(t *testing.T) {
	p := NewImageProcessor()

	assert.NoError(t, p.ValidateImage(pngBytes(t, 10, 10)))
	assert.ErrorIs(t, p.ValidateImage(nil), ErrInvalidImage)
	assert.ErrorIs(t, p.ValidateImage([]byte("<html>")), ErrInvalidImage)

	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black}), nil))
	assert.ErrorIs(t, p.ValidateImage(gifBuf.Bytes()), ErrInvalidImage)

	small := &ImageProcessor{MaxSize: 10}
	assert.ErrorIs(t, small.ValidateImage(pngBytes(t, 10, 10)), ErrInvalidImage)
}

func TestImageProcessor_ProcessImage(t *testing.T) {
	p := NewImageProcessor()

	variants, err := p.ProcessImage(pngBytes(t, 1600, 800))
	require.NoError(t, err)
	require.Len(t, variants, len(CoverVariants))

	for _, v := range CoverVariants {
		img, err := imaging.Decode(bytes.NewReader(variants[v.Name]))
		require.NoError(t, err, v.Name)
		assert.Equal(t, v.Size, img.Bounds().Dx(), v.Name)
		assert.Equal(t, v.Size/2, img.Bounds().Dy(), v.Name)
	}
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/bookshelf/covers/abc/medium.jpg",
		ObjectURL("http://localhost:9000", "bookshelf", "covers/abc/medium.jpg"))
}
