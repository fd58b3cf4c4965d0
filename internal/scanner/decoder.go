package scanner

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// ErrNoQRCode means the image decoded fine but contains no readable QR code.
var ErrNoQRCode = errors.New("no QR code found in image")

// DecodeQR extracts the text payload of the QR code in img. Inversion
// detection is left disabled so the same pixels always produce the same
// result. Pure function, no state.
func DecodeQR(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", ErrNoQRCode
	}
	return result.GetText(), nil
}
