package label

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"

	"github.com/almada-laundry/almada/internal/entity"
)

func sampleOrder() *entity.Order {
	return &entity.Order{
		ID:         42,
		Barcode:    "ALM-1A2B3C4D",
		Weight:     "3.5",
		TotalPrice: "24500",
		Status:     entity.StatusPending,
		OrderDate:  time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		Customer:   &entity.Customer{Name: "Budi Santoso", Phone: "+628111111111"},
		Laundry:    &entity.Laundry{Name: "Almada Laundry"},
		Service:    &entity.ServiceType{Name: "Wash & Fold"},
	}
}

func whiteCode(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestComposeCanvasGeometry(t *testing.T) {
	c := NewComposer(DefaultWidth)

	canvas, err := c.Compose(sampleOrder(), whiteCode(160))
	require.NoError(t, err)

	assert.Equal(t, DefaultWidth, canvas.Bounds().Dx())
	// Content is at least the code column plus the title band and tear-off.
	assert.Greater(t, canvas.Bounds().Dy(), 160+tearOffSpace)
}

func TestComposeIsDeterministic(t *testing.T) {
	c := NewComposer(DefaultWidth)
	order := sampleOrder()
	code := whiteCode(160)

	first, err := c.Compose(order, code)
	require.NoError(t, err)
	second, err := c.Compose(order, code)
	require.NoError(t, err)

	assert.Equal(t, first.Bounds(), second.Bounds())
	assert.Equal(t, first.Pix, second.Pix)
}

func TestComposeRejectsBadInputs(t *testing.T) {
	c := NewComposer(DefaultWidth)

	_, err := c.Compose(nil, whiteCode(160))
	assert.Error(t, err)

	_, err = c.Compose(sampleOrder(), nil)
	assert.Error(t, err)

	_, err = c.Compose(sampleOrder(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)

	// A code as wide as the head leaves no room for the text column.
	_, err = c.Compose(sampleOrder(), whiteCode(DefaultWidth))
	assert.Error(t, err)
}

func TestTextLinesContactFallback(t *testing.T) {
	order := sampleOrder()
	lines := TextLines(order)
	assert.Equal(t, "+628111111111", lines[1])

	order.Customer.Phone = ""
	order.Customer.Username = "budi"
	lines = TextLines(order)
	assert.Equal(t, "@budi", lines[1])

	order.Customer.Username = ""
	lines = TextLines(order)
	assert.Equal(t, "unavailable", lines[1])

	order.Customer = nil
	lines = TextLines(order)
	assert.Equal(t, "unavailable", lines[1])
}

func TestTextLinesContent(t *testing.T) {
	order := sampleOrder()
	order.Note = "no softener"
	lines := TextLines(order)

	assert.Equal(t, "Budi Santoso", lines[0])
	assert.Contains(t, lines, "Wash & Fold")
	assert.Contains(t, lines, "Weight: 3.5 kg")
	assert.Contains(t, lines, "Total: Rp 24500")
	assert.Contains(t, lines, "14 Mar 2026 10:30")
	assert.Equal(t, "no softener", lines[len(lines)-1])
}

func TestWrapKeepsLinesWithinWidth(t *testing.T) {
	face := inconsolata.Regular8x16
	text := "one two three four five six seven eight nine ten"
	maxWidth := 80

	lines := Wrap(face, text, maxWidth)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		assert.LessOrEqual(t, font.MeasureString(face, line).Ceil(), maxWidth, "line %q", line)
	}

	// No words lost or reordered.
	joined := lines[0]
	for _, line := range lines[1:] {
		joined += " " + line
	}
	assert.Equal(t, text, joined)
}

func TestWrapOverlongWordEmittedWhole(t *testing.T) {
	face := inconsolata.Regular8x16
	lines := Wrap(face, "supercalifragilistic", 32)
	assert.Equal(t, []string{"supercalifragilistic"}, lines)
}

func TestWrapEmptyText(t *testing.T) {
	assert.Equal(t, []string{""}, Wrap(inconsolata.Regular8x16, "   ", 100))
}
