package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
)

// Validation and decode failures for uploaded scan images.
var (
	ErrUnsupportedType = errors.New("unsupported_type: file is not a JPEG, PNG, GIF or WebP image")
	ErrTooLarge        = errors.New("too_large: file exceeds the upload size limit")
	ErrImageDecode     = errors.New("image_decode_failed: file could not be decoded as an image")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Acquirer turns an uploaded file into a pixel buffer ready for QR detection.
type Acquirer struct {
	maxBytes int64
}

// NewAcquirer creates an acquirer enforcing the given upload size limit.
func NewAcquirer(maxBytes int64) *Acquirer {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &Acquirer{maxBytes: maxBytes}
}

// FromBytes validates the file content and decodes it into an RGBA buffer at
// the image's natural dimensions. Validation runs before any decode attempt.
func (a *Acquirer) FromBytes(data []byte) (*image.RGBA, error) {
	if int64(len(data)) > a.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), a.maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedTypes...) {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedType, mtype.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	// Rasterize onto a fresh RGBA surface so the decoder always sees the
	// same pixel layout regardless of source format.
	bounds := img.Bounds()
	buf := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(buf, buf.Bounds(), img, bounds.Min, draw.Src)
	return buf, nil
}
