package escpos

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestWidthBytes(t *testing.T) {
	assert.Equal(t, 1, WidthBytes(1))
	assert.Equal(t, 1, WidthBytes(8))
	assert.Equal(t, 2, WidthBytes(9))
	assert.Equal(t, 48, WidthBytes(384))
	assert.Equal(t, 72, WidthBytes(576))
}

func TestRasterHeader(t *testing.T) {
	img := whiteImage(384, 300)

	out, err := Raster(img)
	require.NoError(t, err)

	require.True(t, len(out) >= 8)
	assert.Equal(t, []byte{0x1D, 'v', '0', 0x00}, out[:4])
	// 384 px -> 48 bytes per row, little endian.
	assert.Equal(t, byte(48), out[4])
	assert.Equal(t, byte(0), out[5])
	// Height 300 = 0x012C, little endian.
	assert.Equal(t, byte(0x2C), out[6])
	assert.Equal(t, byte(0x01), out[7])

	assert.Len(t, out, 8+300*48)
}

func TestRasterAllWhiteIsZero(t *testing.T) {
	out, err := Raster(whiteImage(16, 4))
	require.NoError(t, err)

	payload := out[8:]
	assert.Len(t, payload, 4*2)
	for i, b := range payload {
		assert.Zero(t, b, "byte %d", i)
	}
}

func TestRasterBitSevenIsLeftmost(t *testing.T) {
	img := whiteImage(8, 1)
	img.Set(0, 0, color.Black)

	out, err := Raster(img)
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), out[8])

	img = whiteImage(8, 1)
	img.Set(7, 0, color.Black)
	out, err = Raster(img)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), out[8])
}

func TestRasterPadsPartialByte(t *testing.T) {
	// 10 px wide: row occupies two bytes, trailing six bits zero.
	img := whiteImage(10, 2)
	for x := 0; x < 10; x++ {
		img.Set(x, 0, color.Black)
	}

	out, err := Raster(img)
	require.NoError(t, err)

	payload := out[8:]
	require.Len(t, payload, 4)
	assert.Equal(t, byte(0xFF), payload[0])
	assert.Equal(t, byte(0xC0), payload[1])
	assert.Equal(t, byte(0x00), payload[2])
	assert.Equal(t, byte(0x00), payload[3])
}

func TestRasterRejectsDegenerateImages(t *testing.T) {
	_, err := Raster(nil)
	assert.Error(t, err)

	_, err = Raster(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	assert.Error(t, err)

	_, err = Raster(image.NewRGBA(image.Rect(0, 0, 10, 0)))
	assert.Error(t, err)

	_, err = Raster(image.NewRGBA(image.Rect(0, 0, 4096, 1)))
	assert.Error(t, err)
}

func TestRasterNonZeroOrigin(t *testing.T) {
	img := image.NewRGBA(image.Rect(100, 50, 108, 51))
	for x := 100; x < 108; x++ {
		img.Set(x, 50, color.White)
	}
	img.Set(100, 50, color.Black)

	out, err := Raster(img)
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), out[8])
}

func TestDocumentLayout(t *testing.T) {
	img := whiteImage(16, 2)

	out, err := Document(img)
	require.NoError(t, err)

	// Reset first.
	assert.Equal(t, []byte{0x1B, '@'}, out[:2])

	raster, err := Raster(img)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(out[2:2+len(raster)], raster))

	// Two line feeds then a partial cut close the job.
	tail := out[2+len(raster):]
	assert.Equal(t, []byte{0x0A, 0x0A, 0x1D, 'V', 0x01}, tail)
}

func TestDocumentFailsFastOnBadImage(t *testing.T) {
	out, err := Document(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestFeed(t *testing.T) {
	assert.Equal(t, []byte{0x0A, 0x0A, 0x0A}, Feed(3))
	assert.Nil(t, Feed(0))
	assert.Nil(t, Feed(-1))
}

func TestTextModeCommands(t *testing.T) {
	assert.Equal(t, []byte{0x1B, 'E', 0x01}, Bold(true))
	assert.Equal(t, []byte{0x1B, 'E', 0x00}, Bold(false))
	assert.Equal(t, []byte{0x1B, 'a', 0x01}, AlignCenter())
	assert.Equal(t, []byte{0x1D, 'V', 0x00}, FullCut())
}
