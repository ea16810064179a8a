package pixe

import (
	"io"
)

// Storage is the interface for the persistence backend.
//
// It can either be the pix:e board service accessed over its ReST API
// or a local directory with board files.
//
// All mutating calls are fire-and-forget from the editing gesture's
// perspective; callers treat failures as non-fatal.
type Storage interface {
	// List returns all boards known to the backend.
	// The returned records may omit elements and the drawing layer.
	List() ([]*Moodboard, error)

	// Moodboard reads the full record for one board.
	Moodboard(id string) (*Moodboard, error)

	// UpdateImage applies a partial update to an image element.
	UpdateImage(boardID, imageID string, u ImageUpdate) error

	// DeleteImage removes an image element.
	DeleteImage(boardID, imageID string) error

	// CreateText creates a text element and returns the stored element,
	// including its backend-assigned id.
	CreateText(boardID string, t *TextElement) (*TextElement, error)

	// UpdateText applies a partial update to a text element.
	UpdateText(boardID, textID string, u TextUpdate) error

	// DeleteText removes a text element.
	DeleteText(boardID, textID string) error

	// UploadImage stores image data and places the new element at the
	// given initial bounds.
	UploadImage(boardID string, r io.Reader, filename, title, source string, at Rect) (*ImageElement, error)

	// ImportImage places a new image element referring to an external URL.
	ImportImage(boardID, imageURL string, at Rect) (*ImageElement, error)

	// SaveDrawingLayer persists the rasterized drawing layer
	// (base64 encoded PNG).
	SaveDrawingLayer(boardID, encoded string) error
}

// ImageUpdate is a partial update for an image element.
// Nil fields are left unchanged.
type ImageUpdate struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	ZIndex   *int     `json:"z_index,omitempty"`
}

// TextUpdate is a partial update for a text element.
// Nil fields are left unchanged.
type TextUpdate struct {
	Content  *string  `json:"content,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	ZIndex   *int     `json:"z_index,omitempty"`

	FontFamily      *string    `json:"font_family,omitempty"`
	FontSize        *float64   `json:"font_size,omitempty"`
	FontWeight      *string    `json:"font_weight,omitempty"`
	TextAlign       *TextAlign `json:"text_align,omitempty"`
	LineHeight      *float64   `json:"line_height,omitempty"`
	LetterSpacing   *float64   `json:"letter_spacing,omitempty"`
	Color           *string    `json:"color,omitempty"`
	BackgroundColor *string    `json:"background_color,omitempty"`
	BorderColor     *string    `json:"border_color,omitempty"`
	BorderWidth     *float64   `json:"border_width,omitempty"`
}

// BoundsUpdate builds an ImageUpdate for new bounds.
func BoundsUpdate(r Rect) ImageUpdate {
	return ImageUpdate{X: &r.X, Y: &r.Y, Width: &r.W, Height: &r.H}
}

// Apply copies the non-nil fields onto the given element.
func (u ImageUpdate) Apply(i *ImageElement) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&i.X, u.X)
	setF(&i.Y, u.Y)
	setF(&i.Width, u.Width)
	setF(&i.Height, u.Height)
	setF(&i.Rotation, u.Rotation)
	setF(&i.Opacity, u.Opacity)
	if u.ZIndex != nil {
		i.ZIndex = *u.ZIndex
	}
}

// Apply copies the non-nil fields onto the given element.
func (u TextUpdate) Apply(t *TextElement) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setS := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setS(&t.Content, u.Content)
	setF(&t.X, u.X)
	setF(&t.Y, u.Y)
	setF(&t.Width, u.Width)
	setF(&t.Height, u.Height)
	setF(&t.Rotation, u.Rotation)
	setF(&t.Opacity, u.Opacity)
	if u.ZIndex != nil {
		t.ZIndex = *u.ZIndex
	}
	setS(&t.FontFamily, u.FontFamily)
	setF(&t.FontSize, u.FontSize)
	setS(&t.FontWeight, u.FontWeight)
	if u.TextAlign != nil {
		t.TextAlign = *u.TextAlign
	}
	setF(&t.LineHeight, u.LineHeight)
	setF(&t.LetterSpacing, u.LetterSpacing)
	setS(&t.Color, u.Color)
	setS(&t.BackgroundColor, u.BackgroundColor)
	setS(&t.BorderColor, u.BorderColor)
	setF(&t.BorderWidth, u.BorderWidth)
}

// Cache is a simple blob store, keyed by string.
// It is used to cache downloaded image data between export runs.
type Cache interface {
	// Get returns a reader for the cache entry
	// or a NotFound error if no entry exists.
	Get(key string) (io.ReadCloser, error)
	// Put stores the content of the given reader under key.
	Put(key string, r io.Reader) error
}
