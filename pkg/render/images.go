package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/logging"
)

// loadStrategy is one way of obtaining the pixel data for an element
// image. Strategies are tried in order; if all of them fail, the
// compositor falls back to a placeholder rectangle so an export can
// never hang or abort on a missing image.
type loadStrategy struct {
	name string
	load func(c *Context, ref string) (image.Image, error)
}

var loadStrategies = []loadStrategy{
	{"inline", loadInline},
	{"file", loadFile},
	{"cache", loadCached},
	{"direct", loadDirect},
	{"browser", loadBrowserLike},
	{"proxy", loadProxied},
}

// loadImage resolves an element's image reference through the strategy
// chain. The error return reports the last failure; callers are expected
// to substitute a placeholder rather than propagate it.
func (c *Context) loadImage(ref string) (image.Image, error) {
	var lastErr error
	for _, s := range loadStrategies {
		img, err := s.load(c, ref)
		if err == nil {
			logging.Debug("Loaded image %q via %s", ref, s.name)
			return img, nil
		}
		if !pixe.IsNotFound(err) {
			logging.Debug("Image load %q via %s failed: %v", ref, s.name, err)
			lastErr = err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no load strategy applies to %q", ref)
	}
	return nil, lastErr
}

// loadInline decodes data: URIs.
func loadInline(c *Context, ref string) (image.Image, error) {
	if !strings.HasPrefix(ref, "data:") {
		return nil, pixe.NewNotFound("not a data URI")
	}

	idx := strings.Index(ref, "base64,")
	if idx < 0 {
		return nil, fmt.Errorf("unsupported data URI")
	}

	data, err := base64.StdEncoding.DecodeString(ref[idx+len("base64,"):])
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// loadFile reads local files, with or without a file:// scheme.
func loadFile(c *Context, ref string) (image.Image, error) {
	path := ref
	if strings.HasPrefix(ref, "file://") {
		path = strings.TrimPrefix(ref, "file://")
	} else if strings.Contains(ref, "://") {
		return nil, pixe.NewNotFound("not a file path")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// loadCached serves previously downloaded blobs from the context cache.
func loadCached(c *Context, ref string) (image.Image, error) {
	if c.cache == nil || !isHTTP(ref) {
		return nil, pixe.NewNotFound("no cache")
	}

	r, err := c.cache.Get(ref)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	return img, err
}

// loadDirect fetches the image with a plain GET.
func loadDirect(c *Context, ref string) (image.Image, error) {
	if !isHTTP(ref) {
		return nil, pixe.NewNotFound("not an http url")
	}
	return c.fetch(ref, nil)
}

// loadBrowserLike retries with browser-style headers; some CDNs reject
// requests without them.
func loadBrowserLike(c *Context, ref string) (image.Image, error) {
	if !isHTTP(ref) {
		return nil, pixe.NewNotFound("not an http url")
	}
	return c.fetch(ref, map[string]string{
		"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) pixe-export",
		"Accept":     "image/*,*/*;q=0.8",
	})
}

// loadProxied routes the request through the configured fetch proxy.
func loadProxied(c *Context, ref string) (image.Image, error) {
	if c.proxyURL == "" || !isHTTP(ref) {
		return nil, pixe.NewNotFound("no proxy configured")
	}
	return c.fetch(fmt.Sprintf(c.proxyURL, url.QueryEscape(ref)), nil)
}

func (c *Context) fetch(u string, headers map[string]string) (image.Image, error) {
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	err = pixe.ExpectOK(res, "image download failed")
	if err != nil {
		return nil, err
	}

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		cacheErr := c.cache.Put(u, bytes.NewReader(data))
		if cacheErr != nil {
			logging.Warning("Failed to cache image %q: %v", u, cacheErr)
		}
	}

	return img, nil
}

func isHTTP(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
