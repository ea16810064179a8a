package draw

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/imaging"
)

// PenType is one of the available brush algorithms.
type PenType int

const (
	Pen PenType = iota
	Marker
	Pencil
	Highlighter
	Spray
	Watercolor
)

func (p PenType) String() string {
	switch p {
	case Pen:
		return "pen"
	case Marker:
		return "marker"
	case Pencil:
		return "pencil"
	case Highlighter:
		return "highlighter"
	case Spray:
		return "spray"
	case Watercolor:
		return "watercolor"
	default:
		return "UNKNOWN"
	}
}

// SizeRange returns the valid brush size range for this pen type.
func (p PenType) SizeRange() (float64, float64) {
	switch p {
	case Marker:
		return 5, 80
	case Pencil:
		return 1, 30
	case Highlighter:
		return 10, 60
	case Spray:
		return 10, 100
	case Watercolor:
		return 5, 70
	default:
		return 1, 50
	}
}

// DefaultBlend returns the compositing mode the pen uses unless the
// brush configuration overrides it.
func (p PenType) DefaultBlend() imaging.BlendMode {
	switch p {
	case Highlighter, Watercolor:
		return imaging.BlendMultiply
	default:
		return imaging.BlendNormal
	}
}

// Config is the brush configuration for the drawing engine.
type Config struct {
	Pen      PenType
	Size     float64
	Color    color.RGBA
	Opacity  float64 // 0.0 .. 1.0
	Hardness float64 // 0 .. 100
	Flow     float64 // 0 .. 100
	Blend    imaging.BlendMode
}

// DefaultConfig returns a medium black pen.
func DefaultConfig() Config {
	return Config{
		Pen:      Pen,
		Size:     4,
		Color:    color.RGBA{0, 0, 0, 255},
		Opacity:  1.0,
		Hardness: 100,
		Flow:     50,
		Blend:    imaging.BlendNormal,
	}
}

// Clamped returns a copy with size clamped to the pen's valid range and
// opacity/hardness/flow to theirs.
func (c Config) Clamped() Config {
	lo, hi := c.Pen.SizeRange()
	c.Size = pixe.Clamp(c.Size, lo, hi)
	c.Opacity = pixe.Clamp(c.Opacity, 0, 1)
	c.Hardness = pixe.Clamp(c.Hardness, 0, 100)
	c.Flow = pixe.Clamp(c.Flow, 0, 100)
	return c
}

// Sample is one stroke segment sample, from the last recorded point to the
// current one, annotated with simulated pressure and movement angle.
type Sample struct {
	From     pixe.Point
	To       pixe.Point
	Pressure float64
	Angle    float64
	HasAngle bool
}

// renderSegment paints one sample onto the buffer using the configured
// pen algorithm, or erases when erase is set.
//
// Strokes are painted into a scratch layer first, then composited onto
// the buffer with the effective blend mode. The eraser always composites
// with destination-out, regardless of pen type.
func renderSegment(buf *image.RGBA, cfg Config, s Sample, erase bool, rng *rand.Rand) {
	scratch := image.NewRGBA(buf.Bounds())

	mode := cfg.Blend
	if mode == imaging.BlendNormal {
		mode = cfg.Pen.DefaultBlend()
	}

	if erase {
		strokeEraser(scratch, cfg, s)
		imaging.Composite(buf, scratch, imaging.BlendDestinationOut)
		return
	}

	switch cfg.Pen {
	case Marker:
		strokeMarker(scratch, cfg, s)
	case Pencil:
		strokePencil(scratch, cfg, s, rng)
	case Highlighter:
		strokeHighlighter(scratch, cfg, s)
	case Spray:
		strokeSpray(scratch, cfg, s, rng)
	case Watercolor:
		strokeWatercolor(scratch, cfg, s)
	default:
		strokePen(scratch, cfg, s)
	}

	imaging.Composite(buf, scratch, mode)
}

func alphaColor(c color.RGBA, opacity float64) color.RGBA {
	a := uint8(pixe.Clamp(opacity, 0, 1)*255 + 0.5)
	return color.RGBA{c.R, c.G, c.B, a}
}

func strokeLine(dst *image.RGBA, col color.RGBA, width float64, lineCap draw2d.LineCap, s Sample) {
	gc := draw2dimg.NewGraphicContext(dst)

	// a zero-length segment (a click) becomes a dot
	if pixe.Distance(s.From, s.To) < 0.01 {
		gc.SetFillColor(col)
		draw2dkit.Circle(gc, s.To.X, s.To.Y, math.Max(width/2, 0.5))
		gc.Fill()
		return
	}

	gc.SetStrokeColor(col)
	gc.SetLineWidth(width)
	gc.SetLineCap(lineCap)
	gc.SetLineJoin(draw2d.RoundJoin)
	gc.MoveTo(s.From.X, s.From.Y)
	gc.LineTo(s.To.X, s.To.Y)
	gc.Stroke()
}

// strokePen draws a solid round-capped stroke. Hardness below 100 adds a
// soft halo pass, blur magnitude = (100-hardness)*0.1*pressure.
func strokePen(dst *image.RGBA, cfg Config, s Sample) {
	w := math.Max(cfg.Size*s.Pressure, 0.5)

	if cfg.Hardness < 100 {
		blur := (100 - cfg.Hardness) * 0.1 * s.Pressure
		halo := alphaColor(cfg.Color, cfg.Opacity*0.3)
		strokeLine(dst, halo, w+blur*2, draw2d.RoundCap, s)
	}

	strokeLine(dst, alphaColor(cfg.Color, cfg.Opacity), w, draw2d.RoundCap, s)
}

// strokeMarker draws a flat-angled stroke with a streak gradient
// (opaque - 50% alpha - opaque) oriented at the movement angle plus 45°.
func strokeMarker(dst *image.RGBA, cfg Config, s Sample) {
	strokeLine(dst, alphaColor(cfg.Color, cfg.Opacity), cfg.Size, draw2d.ButtCap, s)

	angle := s.Angle + math.Pi/4
	applyStreak(dst, s, cfg.Size, angle)
}

// applyStreak modulates the alpha of the affected area with a linear ramp
// along the given axis: full at both ends, 50% in the middle.
func applyStreak(dst *image.RGBA, s Sample, size, angle float64) {
	box := segmentBox(dst, s, size)
	ux := math.Cos(angle)
	uy := math.Sin(angle)

	// projection range over the affected box corners
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, p := range [][2]float64{
		{float64(box.Min.X), float64(box.Min.Y)},
		{float64(box.Max.X), float64(box.Min.Y)},
		{float64(box.Min.X), float64(box.Max.Y)},
		{float64(box.Max.X), float64(box.Max.Y)},
	} {
		d := p[0]*ux + p[1]*uy
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	span := max - min
	if span <= 0 {
		return
	}

	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			n := dst.PixOffset(x, y)
			a := dst.Pix[n+3]
			if a == 0 {
				continue
			}
			t := (float64(x)*ux + float64(y)*uy - min) / span
			// triangle ramp: 1.0 at the ends, 0.5 in the middle
			f := 1.0 - 0.5*(1.0-math.Abs(2*t-1))
			dst.Pix[n+3] = uint8(float64(a) * f)
		}
	}
}

// strokePencil renders the segment as small filled circles sampled every
// ~2 logical units, with randomized size/opacity jitter scaled by pressure.
func strokePencil(dst *image.RGBA, cfg Config, s Sample, rng *rand.Rand) {
	gc := draw2dimg.NewGraphicContext(dst)

	dist := pixe.Distance(s.From, s.To)
	steps := int(math.Max(1, math.Ceil(dist/2)))
	dx := (s.To.X - s.From.X) / float64(steps)
	dy := (s.To.Y - s.From.Y) / float64(steps)

	for i := 0; i <= steps; i++ {
		x := s.From.X + dx*float64(i)
		y := s.From.Y + dy*float64(i)

		jitter := func() float64 { return 0.85 + rng.Float64()*0.3 }
		r := math.Max(cfg.Size/2*s.Pressure*jitter(), 0.3)
		op := pixe.Clamp(cfg.Opacity*s.Pressure*jitter(), 0, 1)

		gc.SetFillColor(alphaColor(cfg.Color, op))
		draw2dkit.Circle(gc, x, y, r)
		gc.Fill()
	}
}

// strokeHighlighter draws a wide square-capped stroke; the multiply
// default blend comes from the pen type.
func strokeHighlighter(dst *image.RGBA, cfg Config, s Sample) {
	strokeLine(dst, alphaColor(cfg.Color, cfg.Opacity*0.5), cfg.Size, draw2d.SquareCap, s)
}

// strokeSpray scatters small dots within a radius of size/2 around the
// current point; the dot count scales with flow rate and pressure.
func strokeSpray(dst *image.RGBA, cfg Config, s Sample, rng *rand.Rand) {
	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetFillColor(alphaColor(cfg.Color, cfg.Opacity*0.7))

	radius := cfg.Size / 2
	count := int(5 + cfg.Flow/100*25*s.Pressure)

	for i := 0; i < count; i++ {
		// uniform over the disc
		a := rng.Float64() * 2 * math.Pi
		d := math.Sqrt(rng.Float64()) * radius
		x := s.To.X + math.Cos(a)*d
		y := s.To.Y + math.Sin(a)*d
		draw2dkit.Circle(gc, x, y, 0.5+rng.Float64())
		gc.Fill()
	}
}

// strokeWatercolor stamps a radial gradient blob at the current point
// (opaque center fading to transparent edge) plus a thin connecting
// stroke to the previous point.
func strokeWatercolor(dst *image.RGBA, cfg Config, s Sample) {
	radius := math.Max(cfg.Size/2*s.Pressure, 1)

	x0 := int(math.Floor(s.To.X - radius))
	x1 := int(math.Ceil(s.To.X + radius))
	y0 := int(math.Floor(s.To.Y - radius))
	y1 := int(math.Ceil(s.To.Y + radius))
	box := image.Rect(x0, y0, x1+1, y1+1).Intersect(dst.Bounds())

	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			d := math.Hypot(float64(x)-s.To.X, float64(y)-s.To.Y)
			if d > radius {
				continue
			}
			f := 1.0 - d/radius
			a := cfg.Opacity * 0.6 * f
			n := dst.PixOffset(x, y)
			prev := float64(dst.Pix[n+3]) / 255
			if a > prev {
				dst.Pix[n] = cfg.Color.R
				dst.Pix[n+1] = cfg.Color.G
				dst.Pix[n+2] = cfg.Color.B
				dst.Pix[n+3] = uint8(a*255 + 0.5)
			}
		}
	}

	strokeLine(dst, alphaColor(cfg.Color, cfg.Opacity*0.4), math.Max(cfg.Size*0.15, 0.5), draw2d.RoundCap, s)
}

// strokeEraser paints an opaque round stroke which the caller composites
// with destination-out.
func strokeEraser(dst *image.RGBA, cfg Config, s Sample) {
	strokeLine(dst, color.RGBA{0, 0, 0, 255}, cfg.Size, draw2d.RoundCap, s)
}

// segmentBox returns the pixel area affected by a segment, inflated by
// the brush size and clipped to the image bounds.
func segmentBox(dst *image.RGBA, s Sample, size float64) image.Rectangle {
	pad := int(math.Ceil(size)) + 2
	x0 := int(math.Floor(math.Min(s.From.X, s.To.X))) - pad
	y0 := int(math.Floor(math.Min(s.From.Y, s.To.Y))) - pad
	x1 := int(math.Ceil(math.Max(s.From.X, s.To.X))) + pad
	y1 := int(math.Ceil(math.Max(s.From.Y, s.To.Y))) + pad
	return image.Rect(x0, y0, x1, y1).Intersect(dst.Bounds())
}
