package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestBlendNormal(t *testing.T) {
	dst := solid(4, 4, color.RGBA{255, 0, 0, 255})
	src := solid(4, 4, color.RGBA{0, 0, 255, 255})

	Composite(dst, src, BlendNormal)

	c := dst.RGBAAt(1, 1)
	if c.B != 255 || c.R != 0 {
		t.Errorf("opaque source should replace the destination, got %v", c)
	}
}

func TestBlendMultiplyDarkens(t *testing.T) {
	// white x gray = gray
	dst := solid(4, 4, color.RGBA{255, 255, 255, 255})
	src := solid(4, 4, color.RGBA{128, 128, 128, 255})

	Composite(dst, src, BlendMultiply)

	c := dst.RGBAAt(1, 1)
	if c.R < 127 || c.R > 129 {
		t.Errorf("multiply with white should yield the source color, got %v", c)
	}
	if c.A != 255 {
		t.Errorf("unexpected alpha %v", c.A)
	}
}

func TestBlendMultiplyNeverLightens(t *testing.T) {
	dst := solid(4, 4, color.RGBA{40, 40, 40, 255})
	src := solid(4, 4, color.RGBA{255, 255, 0, 255})

	Composite(dst, src, BlendMultiply)

	c := dst.RGBAAt(1, 1)
	if c.R > 40 || c.G > 40 {
		t.Errorf("multiply lightened the destination: %v", c)
	}
	if c.B != 0 {
		t.Errorf("multiply with a zero channel should zero it, got %v", c)
	}
}

func TestBlendMultiplyOnTransparent(t *testing.T) {
	// over a transparent destination, multiply behaves like source-over
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := solid(4, 4, color.RGBA{200, 100, 50, 255})

	Composite(dst, src, BlendMultiply)

	c := dst.RGBAAt(1, 1)
	if c.R != 200 || c.G != 100 || c.B != 50 {
		t.Errorf("unexpected color over transparency: %v", c)
	}
}

func TestBlendMultiplySkipsTransparentSource(t *testing.T) {
	dst := solid(4, 4, color.RGBA{10, 20, 30, 255})
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))

	Composite(dst, src, BlendMultiply)

	c := dst.RGBAAt(1, 1)
	if c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("transparent source modified the destination: %v", c)
	}
}

func TestBlendDestinationOut(t *testing.T) {
	dst := solid(4, 4, color.RGBA{255, 0, 0, 255})
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	// opaque source over the left half only
	for y := 0; y < 4; y++ {
		src.SetRGBA(0, y, color.RGBA{0, 0, 0, 255})
		src.SetRGBA(1, y, color.RGBA{0, 0, 0, 255})
	}

	Composite(dst, src, BlendDestinationOut)

	if dst.RGBAAt(0, 0).A != 0 {
		t.Errorf("covered pixel not erased")
	}
	if dst.RGBAAt(3, 0).A != 255 {
		t.Errorf("uncovered pixel changed")
	}
}

func TestBlendDestinationOutPartial(t *testing.T) {
	dst := solid(2, 2, color.RGBA{0, 0, 0, 200})
	src := solid(2, 2, color.RGBA{0, 0, 0, 128})

	Composite(dst, src, BlendDestinationOut)

	// 200 * (1 - 128/255), roughly 100
	a := dst.RGBAAt(0, 0).A
	if a < 98 || a > 102 {
		t.Errorf("unexpected partial alpha %v", a)
	}
}
