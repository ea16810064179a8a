package imaging

import (
	"image"
	"image/draw"
)

// BlendMode selects the pixel combination rule used when compositing a
// source image over a destination.
type BlendMode int

const (
	// BlendNormal is plain source-over compositing.
	BlendNormal BlendMode = iota
	// BlendMultiply darkens the destination by the source color.
	BlendMultiply
	// BlendDestinationOut removes destination alpha where the source is
	// opaque, producing transparency instead of color.
	BlendDestinationOut
)

// Composite draws src over dst using the given blend mode.
// Both images must share the same bounds.
func Composite(dst, src *image.RGBA, mode BlendMode) {
	switch mode {
	case BlendMultiply:
		blendMultiply(dst, src)
	case BlendDestinationOut:
		blendDestinationOut(dst, src)
	default:
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Over)
	}
}

// blendMultiply combines the images per channel:
//
//  C = (1-sa)*Cd + sa*(Cd*Cs)
//  A = sa + da*(1-sa)
//
// with all values in 0..1 and colors non-premultiplied.
func blendMultiply(dst, src *image.RGBA) {
	for n := 0; n < len(dst.Pix); n += 4 {
		sa := float64(src.Pix[n+3]) / 255
		if sa == 0 {
			continue
		}
		da := float64(dst.Pix[n+3]) / 255

		for c := 0; c < 3; c++ {
			sc := float64(src.Pix[n+c]) / 255
			dc := float64(dst.Pix[n+c]) / 255
			if da == 0 {
				// nothing to darken, behave like source-over
				dc = sc
			} else {
				dc = (1-sa)*dc + sa*(dc*sc)
			}
			dst.Pix[n+c] = uint8(Clamp(dc, 0, 1)*255 + 0.5)
		}

		a := sa + da*(1-sa)
		dst.Pix[n+3] = uint8(Clamp(a, 0, 1)*255 + 0.5)
	}
}

// blendDestinationOut scales destination alpha by the inverse of the
// source alpha:
//
//  A = da * (1-sa)
func blendDestinationOut(dst, src *image.RGBA) {
	for n := 0; n < len(dst.Pix); n += 4 {
		sa := float64(src.Pix[n+3]) / 255
		if sa == 0 {
			continue
		}
		da := float64(dst.Pix[n+3]) / 255
		a := da * (1 - sa)

		if a == 0 {
			dst.Pix[n] = 0
			dst.Pix[n+1] = 0
			dst.Pix[n+2] = 0
			dst.Pix[n+3] = 0
			continue
		}
		dst.Pix[n+3] = uint8(Clamp(a, 0, 1)*255 + 0.5)
	}
}
