package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Resize creates a copy of the given image, scaled to width x height pixels.
func Resize(i image.Image, width, height int) *image.RGBA {
	size := image.Rect(0, 0, width, height)
	dst := image.NewRGBA(size)
	s := draw.BiLinear
	s.Scale(dst, size, i, i.Bounds(), draw.Over, nil)
	return dst
}

// ApplyOpacity applies the given opacity (0.0..1.0) to the given image.
// This returns a new image where the alpha channel is a combination
// of the source alpha and the opacity.
func ApplyOpacity(i image.Image, opacity float64) *image.RGBA {
	alpha := uint8(math.Round(255 * Clamp(opacity, 0, 1)))
	mask := image.NewUniform(color.Alpha{alpha})

	rect := i.Bounds()
	dst := image.NewRGBA(rect)
	p := image.Point{}
	draw.DrawMask(dst, rect, i, rect.Min, mask, p, draw.Over)
	return dst
}

// Rotate rotates the given image counter-clockwise by angle (radians)
// around its center. The result is a square image large enough to hold
// the rotated pixels (the diagonal of the source rectangle).
func Rotate(angle float64, i image.Image) *image.RGBA {
	box := i.Bounds()
	a := float64(box.Dx())
	b := float64(box.Dy())
	c := math.Sqrt(a*a + b*b)
	size := int(math.Ceil(c))
	dst := image.NewRGBA(image.Rect(0, 0, size, size))

	// Rotation around the center instead of the origin
	// means: Translate - Rotate - Translate.
	// The matrix maps destination pixels back onto the source
	// so that the result has no gaps.
	m := multiply(translation(a/2, b/2),
		multiply(rotation(-angle), translation(-c/2, -c/2)))

	var sx, sy float64
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			sx, sy = transform(m, float64(x), float64(y))
			px := int(math.Round(sx))
			py := int(math.Round(sy))
			if px < 0 || py < 0 || px >= box.Dx() || py >= box.Dy() {
				continue
			}
			dst.Set(x, y, i.At(box.Min.X+px, box.Min.Y+py))
		}
	}

	return dst
}

// Clone returns a full, independent copy of the given image.
func Clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// HasAlpha reports whether the image contains at least one pixel with a
// non-zero alpha value.
func HasAlpha(i *image.RGBA) bool {
	// Pix is RGBA order, alpha is every 4th byte.
	for n := 3; n < len(i.Pix); n += 4 {
		if i.Pix[n] != 0 {
			return true
		}
	}
	return false
}

// Clamp limits v to the range lo..hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
