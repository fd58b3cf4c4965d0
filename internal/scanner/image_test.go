package scanner

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFromBytesAcceptsPNG(t *testing.T) {
	a := NewAcquirer(1 << 20)
	img, err := a.FromBytes(whitePNG(t, 32, 24))
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestFromBytesRejectsNonImage(t *testing.T) {
	a := NewAcquirer(1 << 20)
	_, err := a.FromBytes([]byte("this is plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestFromBytesRejectsOversize(t *testing.T) {
	a := NewAcquirer(16)
	_, err := a.FromBytes(whitePNG(t, 8, 8))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFromBytesRejectsCorruptImage(t *testing.T) {
	data := whitePNG(t, 16, 16)
	// Keep the PNG signature but destroy the chunk data.
	for i := 12; i < len(data); i++ {
		data[i] = 0xAB
	}
	a := NewAcquirer(1 << 20)
	_, err := a.FromBytes(data)
	assert.ErrorIs(t, err, ErrImageDecode)
}

func TestSizeLimitCheckedBeforeType(t *testing.T) {
	a := NewAcquirer(4)
	_, err := a.FromBytes([]byte("not an image and too long"))
	assert.ErrorIs(t, err, ErrTooLarge)
}
