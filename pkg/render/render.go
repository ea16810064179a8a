package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/llgcode/draw2d/draw2dimg"
	"golang.org/x/sync/errgroup"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/imaging"
	"github.com/gamedevlabs/pixe/internal/logging"
)

var gridColor = color.RGBA{224, 224, 224, 255}
// placeholderColor is 50% gray at half opacity, alpha-premultiplied.
var placeholderColor = color.RGBA{64, 64, 64, 128}

// PNG composites the board and writes it as PNG.
func (c *Context) PNG(mb *pixe.Moodboard, layer *image.RGBA, w io.Writer) error {
	dst, err := c.Render(mb, layer)
	if err != nil {
		return err
	}
	return png.Encode(w, dst)
}

// JPEG composites the board and writes it as JPEG. A JPEG has no alpha
// channel, so the canvas background shows through transparent areas.
func (c *Context) JPEG(mb *pixe.Moodboard, layer *image.RGBA, w io.Writer) error {
	dst, err := c.Render(mb, layer)
	if err != nil {
		return err
	}
	return jpeg.Encode(w, dst, &jpeg.Options{Quality: 90})
}

// Render composites the entire logical canvas into a raster buffer at
// the context's pixel scale. Painting order, back to front: background
// color, background image, grid lines, all elements by ascending
// z-index, then the drawing layer (only if it contains any ink).
func (c *Context) Render(mb *pixe.Moodboard, layer *image.RGBA) (*image.RGBA, error) {
	s := mb.Settings()
	w := int(math.Round(s.Width * c.Scale))
	h := int(math.Round(s.Height * c.Scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	bg, err := pixe.ParseHexColor(s.BackgroundColor)
	if err != nil {
		return nil, err
	}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if s.BackgroundImage != "" {
		img, err := c.loadImage(s.BackgroundImage)
		if err != nil {
			logging.Warning("Cannot load background image %q: %v", s.BackgroundImage, err)
		} else {
			scaled := imaging.Resize(img, w, h)
			draw.Draw(dst, dst.Bounds(), scaled, image.Point{}, draw.Over)
		}
	}

	if s.GridEnabled {
		c.renderGrid(dst, s)
	}

	loaded := c.prefetch(mb)

	for _, el := range mb.Elements() {
		switch el.Kind() {
		case pixe.ImageKind:
			c.renderImage(dst, el.Image, loaded[el.ID()])
		case pixe.TextKind:
			c.renderTextElement(dst, el.Text)
		}
	}

	if layer != nil && imaging.HasAlpha(layer) {
		scaled := imaging.Resize(layer, w, h)
		draw.Draw(dst, dst.Bounds(), scaled, image.Point{}, draw.Over)
	}

	return dst, nil
}

// prefetch loads all element images concurrently. Slow or failing loads
// delay the export but never abort it: a missing entry in the result map
// becomes a placeholder.
func (c *Context) prefetch(mb *pixe.Moodboard) map[string]image.Image {
	loaded := make(map[string]image.Image)
	var mx sync.Mutex
	var group errgroup.Group

	for _, img := range mb.Images {
		img := img
		group.Go(func() error {
			i, err := c.loadImage(img.URL)
			if err != nil {
				logging.Warning("Image %v failed all load strategies: %v", img.ID, err)
				return nil
			}
			mx.Lock()
			loaded[img.ID] = i
			mx.Unlock()
			return nil
		})
	}

	// the workers never return errors - failures resolve to placeholders
	_ = group.Wait()

	return loaded
}

func (c *Context) renderGrid(dst *image.RGBA, s pixe.CanvasSettings) {
	gc := draw2dimg.NewGraphicContext(dst)
	gc.SetStrokeColor(gridColor)
	gc.SetLineWidth(1)

	step := s.GridSize * c.Scale
	w := float64(dst.Bounds().Dx())
	h := float64(dst.Bounds().Dy())

	for x := step; x < w; x += step {
		gc.MoveTo(x, 0)
		gc.LineTo(x, h)
		gc.Stroke()
	}
	for y := step; y < h; y += step {
		gc.MoveTo(0, y)
		gc.LineTo(w, y)
		gc.Stroke()
	}
}

// renderImage draws one image element with rotation around its center
// and its opacity applied. A nil src paints the placeholder rectangle.
func (c *Context) renderImage(dst *image.RGBA, el *pixe.ImageElement, src image.Image) {
	bounds := pixe.Rect{X: el.X, Y: el.Y, W: el.Width, H: el.Height}

	if src == nil {
		c.renderPlaceholder(dst, bounds, el.Rotation, el.Opacity)
		return
	}

	w := int(math.Max(bounds.W*c.Scale, 1))
	h := int(math.Max(bounds.H*c.Scale, 1))
	scaled := imaging.Resize(src, w, h)

	c.compose(dst, scaled, bounds, el.Rotation, el.Opacity)
}

func (c *Context) renderTextElement(dst *image.RGBA, el *pixe.TextElement) {
	rendered, err := c.renderText(el)
	if err != nil {
		logging.Warning("Cannot render text element %v: %v", el.ID, err)
		return
	}

	bounds := pixe.Rect{X: el.X, Y: el.Y, W: el.Width, H: el.Height}
	c.compose(dst, rendered, bounds, el.Rotation, el.Opacity)
}

// renderPlaceholder draws the semi-transparent gray rectangle used when
// an image fails all load strategies.
func (c *Context) renderPlaceholder(dst *image.RGBA, bounds pixe.Rect, rotation, opacity float64) {
	w := int(math.Max(bounds.W*c.Scale, 1))
	h := int(math.Max(bounds.H*c.Scale, 1))

	ph := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(ph, ph.Bounds(), image.NewUniform(placeholderColor), image.Point{}, draw.Src)

	c.compose(dst, ph, bounds, rotation, opacity)
}

// compose places an element-local raster onto the canvas: rotation is
// applied around the element's center via a translate-rotate-translate
// sequence, opacity via a global alpha mask.
func (c *Context) compose(dst *image.RGBA, src *image.RGBA, bounds pixe.Rect, rotation, opacity float64) {
	img := src

	if opacity < 1.0 {
		img = imaging.ApplyOpacity(img, opacity)
	}

	center := bounds.Center()
	cx := center.X * c.Scale
	cy := center.Y * c.Scale

	if math.Mod(rotation, 360) != 0 {
		img = imaging.Rotate(pixe.Rad(rotation), img)
	}

	// place the (possibly rotated) raster with its center on the
	// element center
	x := int(math.Round(cx - float64(img.Bounds().Dx())/2))
	y := int(math.Round(cy - float64(img.Bounds().Dy())/2))
	r := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())

	draw.Draw(dst, r, img, img.Bounds().Min, draw.Over)
}
