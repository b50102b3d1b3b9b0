package label

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/almada-laundry/almada/internal/entity"
)

// Default geometry for a 58mm head at 203dpi.
const (
	DefaultWidth = 384
	margin       = 8
	// tearOffSpace is blank paper below the content so the cutter clears
	// everything that was printed.
	tearOffSpace = 48
)

const dateLayout = "02 Jan 2006 15:04"

// Composer lays a receipt label out on a single raster canvas: a centered
// bold title, the scan code in the left column, and wrapped order text in the
// right column. Composition is deterministic: the same order and scan code
// always produce a pixel-identical canvas.
type Composer struct {
	width int
	title font.Face
	body  font.Face
}

// NewComposer builds a composer for the given head width in pixels; widths
// below the scan-code column fall back to DefaultWidth.
func NewComposer(width int) *Composer {
	if width < 4*margin {
		width = DefaultWidth
	}
	return &Composer{
		width: width,
		title: inconsolata.Bold8x16,
		body:  inconsolata.Regular8x16,
	}
}

// Compose renders the label for an order. The scan code must already be
// rendered; callers surface generation failures upstream instead of invoking
// the composer without one.
func (c *Composer) Compose(order *entity.Order, code image.Image) (*image.RGBA, error) {
	if order == nil {
		return nil, fmt.Errorf("label: nil order")
	}
	if code == nil {
		return nil, fmt.Errorf("label: nil scan code image")
	}

	codeBounds := code.Bounds()
	codeW, codeH := codeBounds.Dx(), codeBounds.Dy()
	if codeW <= 0 || codeH <= 0 {
		return nil, fmt.Errorf("label: degenerate scan code %dx%d", codeW, codeH)
	}

	textX := margin + codeW + margin
	textWidth := c.width - textX - margin
	if textWidth < 8 {
		return nil, fmt.Errorf("label: scan code width %d leaves no text column", codeW)
	}

	var wrapped []string
	for _, line := range TextLines(order) {
		wrapped = append(wrapped, Wrap(c.body, line, textWidth)...)
	}

	lineHeight := c.body.Metrics().Height.Ceil()
	titleHeight := c.title.Metrics().Height.Ceil()
	textHeight := len(wrapped) * lineHeight

	contentHeight := codeH
	if textHeight > contentHeight {
		contentHeight = textHeight
	}
	height := margin + titleHeight + margin + contentHeight + margin + tearOffSpace

	canvas := image.NewRGBA(image.Rect(0, 0, c.width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	// Title, centered.
	title := order.LaundryName()
	titleW := font.MeasureString(c.title, title).Ceil()
	titleX := (c.width - titleW) / 2
	if titleX < 0 {
		titleX = 0
	}
	titleBaseline := margin + c.title.Metrics().Ascent.Ceil()
	drawString(canvas, c.title, title, titleX, titleBaseline)

	// Scan code, left column, bottom-aligned above the tear-off region.
	codeY := height - tearOffSpace - codeH
	target := image.Rect(margin, codeY, margin+codeW, codeY+codeH)
	draw.Draw(canvas, target, code, codeBounds.Min, draw.Src)

	// Text lines, right column, top-down just below the title.
	baseline := margin + titleHeight + margin + c.body.Metrics().Ascent.Ceil()
	for _, line := range wrapped {
		drawString(canvas, c.body, line, textX, baseline)
		baseline += lineHeight
	}

	return canvas, nil
}

// TextLines builds the ordered block of receipt lines for an order. The
// contact line prefers the phone number, then the username handle, then a
// placeholder.
func TextLines(order *entity.Order) []string {
	var customerName, contact string
	if order.Customer != nil {
		customerName = order.Customer.Name
		switch {
		case order.Customer.Phone != "":
			contact = order.Customer.Phone
		case order.Customer.Username != "":
			contact = "@" + order.Customer.Username
		}
	}
	if contact == "" {
		contact = "unavailable"
	}

	serviceName := ""
	if order.Service != nil {
		serviceName = order.Service.Name
	}

	lines := []string{
		customerName,
		contact,
		serviceName,
		fmt.Sprintf("Weight: %s kg", order.Weight),
		fmt.Sprintf("Total: Rp %s", order.TotalPrice),
	}

	when := order.OrderDate
	if when.IsZero() {
		when = order.CreatedAt
	}
	if !when.IsZero() {
		lines = append(lines, when.Format(dateLayout))
	}
	if order.Note != "" {
		lines = append(lines, order.Note)
	}
	return lines
}

// Wrap splits text into lines whose measured width stays within maxWidth.
// Words accumulate until the next one would overflow; a single word wider
// than the column is emitted on its own line rather than truncated, accepting
// visual overflow over data loss.
func Wrap(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	limit := fixed.I(maxWidth)
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate) <= limit {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

func drawString(dst draw.Image, face font.Face, s string, x, baseline int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
