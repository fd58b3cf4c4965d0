package scanner

import (
	"encoding/json"

	qrcode "github.com/skip2/go-qrcode"
)

// GeneratePNG renders a student's QR code as a PNG. The payload is the JSON
// identity, which ParsePayload round-trips through its structured path.
func GeneratePNG(id StudentIdentity, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	payload, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(payload), qrcode.Medium, size)
}
