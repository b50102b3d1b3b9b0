package scancode

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the square edge used on printed labels.
const DefaultSize = 160

// QR renders payload into a square monochrome QR image of size pixels using
// high error correction, matching what cheap thermal heads can still resolve.
// A failed generation returns an error; the label pipeline must abort before
// any byte reaches the printer.
func QR(payload string, size int) (image.Image, error) {
	if payload == "" {
		return nil, fmt.Errorf("scancode: empty payload")
	}
	if size <= 0 {
		size = DefaultSize
	}
	code, err := qrcode.New(payload, qrcode.High)
	if err != nil {
		return nil, fmt.Errorf("scancode: generate: %w", err)
	}
	code.DisableBorder = true
	return code.Image(size), nil
}
