package pixe

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ElementKind distinguishes the two kinds of canvas elements.
type ElementKind int

const (
	ImageKind ElementKind = iota
	TextKind
)

// Minimum element sizes in logical units.
const (
	MinImageSize  = 20.0
	MinTextWidth  = 50.0
	MinTextHeight = 20.0
)

// DefaultTextContent is the placeholder for text elements committed with
// empty content.
const DefaultTextContent = "New Text"

// TextAlign is the horizontal alignment for a text element.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
	AlignJustify
)

// ImageElement is a positioned, resizable, rotatable image on the canvas.
type ImageElement struct {
	ID          string  `json:"id"`
	MoodboardID string  `json:"moodboard_id"`
	URL         string  `json:"image_url"`
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Rotation    float64 `json:"rotation"`
	Opacity     float64 `json:"opacity"`
	ZIndex      int     `json:"z_index"`
}

// NewImageElement creates an image element with default visual attributes.
func NewImageElement(boardID, url string) *ImageElement {
	return &ImageElement{
		ID:          uuid.New().String(),
		MoodboardID: boardID,
		URL:         url,
		Width:       200,
		Height:      200,
		Opacity:     1.0,
	}
}

// TextElement is a positioned, styled block of text on the canvas.
// Content may contain embedded line breaks.
type TextElement struct {
	ID          string  `json:"id"`
	MoodboardID string  `json:"moodboard_id"`
	Content     string  `json:"content"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Rotation    float64 `json:"rotation"`
	Opacity     float64 `json:"opacity"`
	ZIndex      int     `json:"z_index"`

	FontFamily      string    `json:"font_family"`
	FontSize        float64   `json:"font_size"`
	FontWeight      string    `json:"font_weight"`
	TextAlign       TextAlign `json:"text_align"`
	LineHeight      float64   `json:"line_height"`
	LetterSpacing   float64   `json:"letter_spacing"`
	Color           string    `json:"color"`
	BackgroundColor string    `json:"background_color"`
	BorderColor     string    `json:"border_color"`
	BorderWidth     float64   `json:"border_width"`
}

// NewTextElement creates a text element at the given logical position with
// the default typography.
func NewTextElement(boardID string, at Point) *TextElement {
	return &TextElement{
		ID:          uuid.New().String(),
		MoodboardID: boardID,
		Content:     DefaultTextContent,
		X:           at.X,
		Y:           at.Y,
		Width:       200,
		Height:      50,
		Opacity:     1.0,
		FontFamily:  "Arial",
		FontSize:    16,
		FontWeight:  "normal",
		TextAlign:   AlignLeft,
		LineHeight:  1.2,
		Color:       "#000000",
	}
}

// Element is the tagged union over image and text elements.
// Exactly one of Image or Text is set.
//
// Both kinds share one z-index domain so layering operations are
// comparable across all elements on a canvas.
type Element struct {
	Image *ImageElement
	Text  *TextElement
}

// WrapImage wraps an image element.
func WrapImage(i *ImageElement) Element {
	return Element{Image: i}
}

// WrapText wraps a text element.
func WrapText(t *TextElement) Element {
	return Element{Text: t}
}

func (e Element) Kind() ElementKind {
	if e.Text != nil {
		return TextKind
	}
	return ImageKind
}

func (e Element) ID() string {
	switch e.Kind() {
	case TextKind:
		return e.Text.ID
	default:
		return e.Image.ID
	}
}

// Bounds returns the element's logical bounding box (unrotated).
func (e Element) Bounds() Rect {
	switch e.Kind() {
	case TextKind:
		return Rect{e.Text.X, e.Text.Y, e.Text.Width, e.Text.Height}
	default:
		return Rect{e.Image.X, e.Image.Y, e.Image.Width, e.Image.Height}
	}
}

// SetBounds replaces the element's logical bounding box,
// clamping width and height to the kind's minimum size.
func (e Element) SetBounds(r Rect) {
	min := e.MinSize()
	if r.W < min.W {
		r.W = min.W
	}
	if r.H < min.H {
		r.H = min.H
	}
	switch e.Kind() {
	case TextKind:
		e.Text.X, e.Text.Y, e.Text.Width, e.Text.Height = r.X, r.Y, r.W, r.H
	default:
		e.Image.X, e.Image.Y, e.Image.Width, e.Image.Height = r.X, r.Y, r.W, r.H
	}
}

// MinSize returns the minimum logical size for the element's kind.
func (e Element) MinSize() Size {
	switch e.Kind() {
	case TextKind:
		return Size{MinTextWidth, MinTextHeight}
	default:
		return Size{MinImageSize, MinImageSize}
	}
}

// Rotation returns the element's rotation in degrees, normalized to [0,360).
func (e Element) Rotation() float64 {
	switch e.Kind() {
	case TextKind:
		return NormalizeDegrees(e.Text.Rotation)
	default:
		return NormalizeDegrees(e.Image.Rotation)
	}
}

// SetRotation stores the rotation (degrees), normalized to [0,360).
func (e Element) SetRotation(deg float64) {
	deg = NormalizeDegrees(deg)
	switch e.Kind() {
	case TextKind:
		e.Text.Rotation = deg
	default:
		e.Image.Rotation = deg
	}
}

func (e Element) Opacity() float64 {
	switch e.Kind() {
	case TextKind:
		return e.Text.Opacity
	default:
		return e.Image.Opacity
	}
}

func (e Element) ZIndex() int {
	switch e.Kind() {
	case TextKind:
		return e.Text.ZIndex
	default:
		return e.Image.ZIndex
	}
}

func (e Element) SetZIndex(z int) {
	switch e.Kind() {
	case TextKind:
		e.Text.ZIndex = z
	default:
		e.Image.ZIndex = z
	}
}

func (e Element) Validate() error {
	op := e.Opacity()
	if op < 0 || op > 1 {
		return NewValidationError("opacity %v out of range", op)
	}

	b := e.Bounds()
	min := e.MinSize()
	if b.W < min.W || b.H < min.H {
		return NewValidationError("element size %vx%v below minimum %vx%v", b.W, b.H, min.W, min.H)
	}

	if e.Kind() == TextKind {
		switch e.Text.TextAlign {
		case AlignLeft, AlignCenter, AlignRight, AlignJustify:
			// ok
		default:
			return NewValidationError("invalid text align %v", e.Text.TextAlign)
		}
		if e.Text.LineHeight <= 0 {
			return NewValidationError("line height must be positive")
		}
	}

	return nil
}

func (k ElementKind) String() string {
	switch k {
	case ImageKind:
		return "image"
	case TextKind:
		return "text"
	default:
		return "UNKNOWN"
	}
}

func (t *TextAlign) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}

	var ta TextAlign
	switch s {
	case "left":
		ta = AlignLeft
	case "center":
		ta = AlignCenter
	case "right":
		ta = AlignRight
	case "justify":
		ta = AlignJustify
	default:
		return fmt.Errorf("invalid text align %q", s)
	}

	*t = ta
	return nil
}

func (t TextAlign) MarshalJSON() ([]byte, error) {
	s := t.String()
	if s == "UNKNOWN" {
		return nil, fmt.Errorf("invalid text align type %v", t)
	}

	buf := bytes.NewBufferString(`"`)
	buf.WriteString(s)
	buf.WriteString(`"`)

	return buf.Bytes(), nil
}

func (t TextAlign) String() string {
	switch t {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "UNKNOWN"
	}
}
