package render

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/gamedevlabs/pixe"
)

// textPadding is the inner padding of a text element box, logical units.
const textPadding = 4.0

// letterSpacingThreshold: below this, spacing is ignored and lines are
// drawn in one pass; above, glyphs are placed one by one.
const letterSpacingThreshold = 0.5

// renderText rasterizes a text element into its own image, unrotated.
// The result has the element's pixel dimensions at the context scale.
func (c *Context) renderText(t *pixe.TextElement) (*image.RGBA, error) {
	w := int(t.Width * c.Scale)
	h := int(t.Height * c.Scale)
	if w < 1 || h < 1 {
		return nil, pixe.NewValidationError("text element with empty bounds")
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	if t.BackgroundColor != "" {
		bg, err := pixe.ParseHexColor(t.BackgroundColor)
		if err == nil {
			fillRect(dst, dst.Bounds(), bg)
		}
	}

	face, err := c.face(t.FontWeight, t.FontSize*c.Scale)
	if err != nil {
		return nil, err
	}

	col, err := pixe.ParseHexColor(t.Color)
	if err != nil {
		col = color.RGBA{A: 0xff}
	}

	pad := textPadding * c.Scale
	maxW := float64(w) - 2*pad
	spacing := t.LetterSpacing * c.Scale

	lines := wrapText(face, t.Content, maxW, spacing)

	lineHeight := t.FontSize * t.LineHeight * c.Scale
	ascent := float64(face.Metrics().Ascent.Round())

	y := pad + ascent
	for n, line := range lines {
		// stop once the accumulated line height exceeds the box
		if y-ascent+lineHeight > float64(h)-pad {
			break
		}

		lineW := measure(face, line, spacing)
		x := pad
		switch t.TextAlign {
		case pixe.AlignCenter:
			x = pad + (maxW-lineW)/2
		case pixe.AlignRight:
			x = pad + maxW - lineW
		case pixe.AlignJustify:
			// the last line of a paragraph stays left-aligned
			if n < len(lines)-1 && strings.Contains(line, " ") {
				drawJustified(dst, face, col, line, x, y, maxW, spacing)
				y += lineHeight
				continue
			}
		}

		drawLine(dst, face, col, line, x, y, spacing)
		y += lineHeight
	}

	if t.BorderColor != "" && t.BorderWidth > 0 {
		bc, err := pixe.ParseHexColor(t.BorderColor)
		if err == nil {
			strokeRect(dst, bc, t.BorderWidth*c.Scale)
		}
	}

	return dst, nil
}

// wrapText breaks content into lines that fit maxW. Embedded line breaks
// are kept; words wrap at spaces, and a single over-long word is emitted
// as its own line rather than dropped.
func wrapText(face font.Face, content string, maxW, spacing float64) []string {
	var lines []string

	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		cur := words[0]
		for _, word := range words[1:] {
			test := cur + " " + word
			if measure(face, test, spacing) <= maxW {
				cur = test
			} else {
				lines = append(lines, cur)
				cur = word
			}
		}
		lines = append(lines, cur)
	}

	return lines
}

// measure returns the advance width of s in pixels, including letter
// spacing when it is in effect.
func measure(face font.Face, s string, spacing float64) float64 {
	w := float64(font.MeasureString(face, s).Round())
	if spacing > letterSpacingThreshold {
		n := len([]rune(s))
		if n > 1 {
			w += spacing * float64(n-1)
		}
	}
	return w
}

// drawLine draws one line at the given baseline position. With letter
// spacing in effect, glyphs are placed one by one.
func drawLine(dst *image.RGBA, face font.Face, col color.RGBA, line string, x, y, spacing float64) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}

	if spacing <= letterSpacingThreshold {
		d.Dot = fixed.Point26_6{X: floatToFixed(x), Y: floatToFixed(y)}
		d.DrawString(line)
		return
	}

	pos := x
	for _, r := range line {
		d.Dot = fixed.Point26_6{X: floatToFixed(pos), Y: floatToFixed(y)}
		s := string(r)
		d.DrawString(s)
		pos += float64(font.MeasureString(face, s).Round()) + spacing
	}
}

// drawJustified spreads the extra horizontal space of a wrapped line
// evenly between its words.
func drawJustified(dst *image.RGBA, face font.Face, col color.RGBA, line string, x, y, maxW, spacing float64) {
	words := strings.Split(line, " ")
	if len(words) < 2 {
		drawLine(dst, face, col, line, x, y, spacing)
		return
	}

	total := 0.0
	for _, w := range words {
		total += measure(face, w, spacing)
	}
	gap := (maxW - total) / float64(len(words)-1)
	if gap < 0 {
		gap = 0
	}

	pos := x
	for _, w := range words {
		drawLine(dst, face, col, w, pos, y, spacing)
		pos += measure(face, w, spacing) + gap
	}
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetRGBA(x, y, col)
		}
	}
}

func strokeRect(dst *image.RGBA, col color.RGBA, width float64) {
	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetStrokeColor(col)
	gc.SetLineWidth(width)
	b := dst.Bounds()
	inset := width / 2
	gc.MoveTo(inset, inset)
	gc.LineTo(float64(b.Dx())-inset, inset)
	gc.LineTo(float64(b.Dx())-inset, float64(b.Dy())-inset)
	gc.LineTo(inset, float64(b.Dy())-inset)
	gc.Close()
	gc.Stroke()
}
