package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	i := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i.SetRGBA(x, y, c)
		}
	}
	return i
}

func TestResize(t *testing.T) {
	src := solid(10, 10, color.RGBA{255, 0, 0, 255})
	dst := Resize(src, 25, 5)

	b := dst.Bounds()
	if b.Dx() != 25 || b.Dy() != 5 {
		t.Errorf("unexpected size %vx%v", b.Dx(), b.Dy())
	}

	c := dst.RGBAAt(12, 2)
	if c.R != 255 || c.A != 255 {
		t.Errorf("unexpected center color %v", c)
	}
}

func TestApplyOpacity(t *testing.T) {
	src := solid(4, 4, color.RGBA{0, 0, 255, 255})
	dst := ApplyOpacity(src, 0.5)

	a := dst.RGBAAt(2, 2).A
	if a < 126 || a > 129 {
		t.Errorf("unexpected alpha %v", a)
	}

	// fully transparent pixels stay transparent
	src = image.NewRGBA(image.Rect(0, 0, 4, 4))
	dst = ApplyOpacity(src, 0.5)
	if HasAlpha(dst) {
		t.Errorf("opacity added alpha to a transparent image")
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	// a 20x10 image rotated by 90 degrees fits into the diagonal square
	src := solid(20, 10, color.RGBA{0, 255, 0, 255})
	dst := Rotate(math.Pi/2, src)

	b := dst.Bounds()
	diag := int(math.Ceil(math.Sqrt(20*20 + 10*10)))
	if b.Dx() != diag || b.Dy() != diag {
		t.Errorf("unexpected size %vx%v, expected %v", b.Dx(), b.Dy(), diag)
	}

	// the center pixel is always covered
	c := dst.RGBAAt(diag/2, diag/2)
	if c.G != 255 {
		t.Errorf("unexpected center color %v", c)
	}

	// after a quarter turn the covered area is 10 wide and 20 tall:
	// a point on the horizontal edge of the square is outside it
	c = dst.RGBAAt(1, diag/2)
	if c.A != 0 {
		t.Errorf("pixel outside the rotated area should be transparent")
	}
}

func TestClone(t *testing.T) {
	src := solid(4, 4, color.RGBA{9, 9, 9, 255})
	dst := Clone(src)

	dst.Pix[0] = 0
	if src.Pix[0] != 9 {
		t.Errorf("clone shares memory with the source")
	}
}

func TestHasAlpha(t *testing.T) {
	i := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if HasAlpha(i) {
		t.Errorf("fresh image should be fully transparent")
	}

	i.SetRGBA(7, 7, color.RGBA{0, 0, 0, 1})
	if !HasAlpha(i) {
		t.Errorf("single pixel with alpha not detected")
	}
}
