package escpos

import (
	"fmt"
	"image"
)

// Control bytes shared by every command.
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	LF  byte = 0x0A
)

// maxRasterWidth keeps the high byte of the width field at zero. Thermal
// heads this code targets are 384 or 576 dots wide, far below the limit.
const maxRasterWidth = 2048

// Init resets the printer to its power-on state.
func Init() []byte {
	return []byte{ESC, '@'}
}

// Bold toggles emphasized text mode.
func Bold(on bool) []byte {
	if on {
		return []byte{ESC, 'E', 0x01}
	}
	return []byte{ESC, 'E', 0x00}
}

// AlignLeft selects left justification for text mode.
func AlignLeft() []byte {
	return []byte{ESC, 'a', 0x00}
}

// AlignCenter selects centered justification for text mode.
func AlignCenter() []byte {
	return []byte{ESC, 'a', 0x01}
}

// DoubleHeight toggles double-height characters.
func DoubleHeight(on bool) []byte {
	if on {
		return []byte{ESC, '!', 0x10}
	}
	return []byte{ESC, '!', 0x00}
}

// Feed emits n blank lines.
func Feed(n int) []byte {
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = LF
	}
	return out
}

// PartialCut cuts the paper leaving one point attached.
func PartialCut() []byte {
	return []byte{GS, 'V', 0x01}
}

// FullCut cuts the paper completely.
func FullCut() []byte {
	return []byte{GS, 'V', 0x00}
}

// WidthBytes returns the number of bytes one raster row occupies.
func WidthBytes(width int) int {
	return (width + 7) / 8
}

// Raster serializes an image into the GS v 0 raster bit-image command. Rows
// are packed eight pixels per byte, bit 7 holding the leftmost pixel of each
// group, 1 meaning black. A partial trailing byte in a row is zero-padded, so
// the payload is always exactly height * WidthBytes(width) bytes: the printer
// reads the header fields literally and one stray byte shifts every following
// row.
func Raster(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("escpos: nil image")
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("escpos: degenerate image %dx%d", width, height)
	}
	if width >= maxRasterWidth {
		return nil, fmt.Errorf("escpos: width %d exceeds raster limit", width)
	}

	widthBytes := WidthBytes(width)
	out := make([]byte, 0, 8+height*widthBytes)
	out = append(out,
		GS, 'v', '0', 0x00,
		byte(widthBytes%256), byte(widthBytes/256),
		byte(height%256), byte(height/256),
	)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x += 8 {
			var packed byte
			for bit := 0; bit < 8; bit++ {
				px := x + bit
				if px >= width {
					break
				}
				if isBlack(img, bounds.Min.X+px, bounds.Min.Y+y) {
					packed |= 1 << uint(7-bit)
				}
			}
			out = append(out, packed)
		}
	}

	return out, nil
}

// isBlack classifies a pixel by luminance. The label composer only draws pure
// black on pure white, but scan-code generators occasionally anti-alias, so
// the midpoint threshold keeps the result stable either way.
func isBlack(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	gray := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
	return gray < 128
}

// Document assembles a full print job for one raster label: reset, bitmap,
// blank-line feed, then a partial cut so the tear clears the printed area.
func Document(img image.Image) ([]byte, error) {
	raster, err := Raster(img)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(raster)+6)
	out = append(out, Init()...)
	out = append(out, raster...)
	out = append(out, Feed(2)...)
	out = append(out, PartialCut()...)
	return out, nil
}

// QRCode emits the native QR model-2 command sequence for printers that
// render their own codes; the label pipeline rasterizes instead, this is for
// plain-text test receipts.
func QRCode(data string) []byte {
	payload := []byte(data)
	total := len(payload) + 3
	out := make([]byte, 0, len(payload)+40)
	// Model 2.
	out = append(out, GS, '(', 'k', 0x04, 0x00, 0x31, 0x41, 0x32, 0x00)
	// Module size 6, a readable density for 58mm stock.
	out = append(out, GS, '(', 'k', 0x03, 0x00, 0x31, 0x43, 0x06)
	// Error correction level H.
	out = append(out, GS, '(', 'k', 0x03, 0x00, 0x31, 0x45, 0x33)
	// Store data.
	out = append(out, GS, '(', 'k', byte(total%256), byte(total/256), 0x31, 0x50, 0x30)
	out = append(out, payload...)
	// Print.
	out = append(out, GS, '(', 'k', 0x03, 0x00, 0x31, 0x51, 0x30)
	return out
}
