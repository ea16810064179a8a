// Package render produces export artifacts for a moodboard: a raster
// image (PNG/JPEG) or a single-page PDF of the entire logical canvas.
//
// The compositor reads the same element tree the editor works on but is
// independent of the editing path.
package render

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/gamedevlabs/pixe"
)

// Context holds parameters and cached data for rendering operations.
//
// If multiple boards are rendered, they should share the same Context so
// fonts and downloaded images are reused.
type Context struct {
	// Scale is the pixel scale applied to logical canvas units.
	Scale float64

	client   *http.Client
	cache    pixe.Cache
	proxyURL string

	fontMx sync.Mutex
	fonts  map[fontKey]font.Face
}

type fontKey struct {
	bold bool
	size float64
}

// NewContext sets up a rendering context with a 1:1 pixel scale.
func NewContext() *Context {
	return &Context{
		Scale:  1.0,
		client: &http.Client{Timeout: 15 * time.Second},
		fonts:  make(map[fontKey]font.Face),
	}
}

// SetCache installs a blob cache for downloaded element images.
func (c *Context) SetCache(cache pixe.Cache) {
	c.cache = cache
}

// SetProxy installs a fetch-proxy URL template (one %s verb for the
// encoded target URL), used as a fallback when direct image loads fail.
func (c *Context) SetProxy(urlTemplate string) {
	c.proxyURL = urlTemplate
}

// face returns a cached font face for the given weight and pixel size.
//
// Headless export has no access to client-installed font families, so
// text renders with the bundled Go fonts; only the weight is honored.
func (c *Context) face(weight string, size float64) (font.Face, error) {
	bold := weight == "bold" || weight == "600" || weight == "700" || weight == "800"

	c.fontMx.Lock()
	defer c.fontMx.Unlock()

	key := fontKey{bold, size}
	if f, ok := c.fonts[key]; ok {
		return f, nil
	}

	data := goregular.TTF
	if bold {
		data = gobold.TTF
	}

	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, pixe.Wrap(err, "cannot parse font")
	}

	f, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, pixe.Wrap(err, "cannot create font face")
	}

	c.fonts[key] = f
	return f, nil
}

// ExportFilename builds the download file name for an export artifact:
// moodboard-{title}.{ext}, falling back to "untitled" for empty titles.
func ExportFilename(title, ext string) string {
	if title == "" {
		title = "untitled"
	}
	return fmt.Sprintf("moodboard-%s.%s", title, ext)
}
