package pixe

import (
	"fmt"
	"image/color"
	"sort"
	"strings"
	"time"
)

// Canvas defaults, applied when the moodboard record leaves them unset.
const (
	DefaultCanvasWidth     = 1920.0
	DefaultCanvasHeight    = 1080.0
	DefaultGridSize        = 20.0
	DefaultBackgroundColor = "#ffffff"
)

// Moodboard is the persisted record for one board.
// It carries the canvas settings, all placed elements and the rasterized
// drawing layer (base64 encoded PNG).
type Moodboard struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Title           string    `json:"title"`
	CanvasWidth     float64   `json:"canvas_width"`
	CanvasHeight    float64   `json:"canvas_height"`
	BackgroundColor string    `json:"background_color"`
	BackgroundImage string    `json:"background_image"`
	GridEnabled     bool      `json:"grid_enabled"`
	GridSize        float64   `json:"grid_size"`
	SnapToGrid      bool      `json:"snap_to_grid"`
	DrawingLayer    string    `json:"canvas_drawing_layer"`
	LastModified    time.Time `json:"last_modified"`

	Images []*ImageElement `json:"images"`
	Texts  []*TextElement  `json:"texts"`
}

// NewMoodboard creates an empty board with default canvas settings.
func NewMoodboard(projectID, title string) *Moodboard {
	return &Moodboard{
		ProjectID:       projectID,
		Title:           title,
		CanvasWidth:     DefaultCanvasWidth,
		CanvasHeight:    DefaultCanvasHeight,
		BackgroundColor: DefaultBackgroundColor,
		GridSize:        DefaultGridSize,
		Images:          make([]*ImageElement, 0),
		Texts:           make([]*TextElement, 0),
	}
}

// CanvasSettings is the immutable per-render-pass view of the canvas,
// derived from the moodboard record with defaults applied.
type CanvasSettings struct {
	Width           float64
	Height          float64
	BackgroundColor string
	BackgroundImage string
	GridEnabled     bool
	GridSize        float64
	SnapToGrid      bool
}

// Settings derives the canvas settings from the record,
// filling in defaults for unset values.
func (m *Moodboard) Settings() CanvasSettings {
	s := CanvasSettings{
		Width:           m.CanvasWidth,
		Height:          m.CanvasHeight,
		BackgroundColor: m.BackgroundColor,
		BackgroundImage: m.BackgroundImage,
		GridEnabled:     m.GridEnabled,
		GridSize:        m.GridSize,
		SnapToGrid:      m.SnapToGrid,
	}
	if s.Width <= 0 {
		s.Width = DefaultCanvasWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultCanvasHeight
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = DefaultBackgroundColor
	}
	if s.GridSize <= 0 {
		s.GridSize = DefaultGridSize
	}
	return s
}

// Elements returns all image and text elements merged into one list,
// sorted by ascending z-index. Elements with equal z keep images before
// texts, matching the paint order of the editor.
func (m *Moodboard) Elements() []Element {
	rv := make([]Element, 0, len(m.Images)+len(m.Texts))
	for _, i := range m.Images {
		rv = append(rv, WrapImage(i))
	}
	for _, t := range m.Texts {
		rv = append(rv, WrapText(t))
	}

	sort.SliceStable(rv, func(i, j int) bool {
		return rv[i].ZIndex() < rv[j].ZIndex()
	})

	return rv
}

// Element looks up a single element by id.
func (m *Moodboard) Element(id string) (Element, error) {
	for _, i := range m.Images {
		if i.ID == id {
			return WrapImage(i), nil
		}
	}
	for _, t := range m.Texts {
		if t.ID == id {
			return WrapText(t), nil
		}
	}
	return Element{}, NewNotFound("no element with id %q", id)
}

// RemoveElement removes the element with the given id from the record.
func (m *Moodboard) RemoveElement(id string) bool {
	for n, i := range m.Images {
		if i.ID == id {
			m.Images = append(m.Images[:n], m.Images[n+1:]...)
			return true
		}
	}
	for n, t := range m.Texts {
		if t.ID == id {
			m.Texts = append(m.Texts[:n], m.Texts[n+1:]...)
			return true
		}
	}
	return false
}

func (m *Moodboard) Validate() error {
	s := m.Settings()
	if s.Width <= 0 || s.Height <= 0 {
		return NewValidationError("invalid canvas size %vx%v", s.Width, s.Height)
	}
	if _, err := ParseHexColor(s.BackgroundColor); err != nil {
		return NewValidationError("invalid background color %q", s.BackgroundColor)
	}

	for _, e := range m.Elements() {
		if err := e.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ParseHexColor parses a "#rgb", "#rrggbb" or "#rrggbbaa" color string.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}

	if !strings.HasPrefix(s, "#") {
		return c, fmt.Errorf("invalid color %q", s)
	}

	hexByte := func(b byte) (uint8, error) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', nil
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, nil
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, nil
		}
		return 0, fmt.Errorf("invalid color %q", s)
	}

	var err error
	pair := func(hi, lo byte) uint8 {
		h, e := hexByte(hi)
		if e != nil {
			err = e
		}
		l, e := hexByte(lo)
		if e != nil {
			err = e
		}
		return h<<4 | l
	}

	switch len(s) {
	case 4:
		c.R = pair(s[1], s[1])
		c.G = pair(s[2], s[2])
		c.B = pair(s[3], s[3])
	case 7:
		c.R = pair(s[1], s[2])
		c.G = pair(s[3], s[4])
		c.B = pair(s[5], s[6])
	case 9:
		c.R = pair(s[1], s[2])
		c.G = pair(s[3], s[4])
		c.B = pair(s[5], s[6])
		c.A = pair(s[7], s[8])
	default:
		return c, fmt.Errorf("invalid color %q", s)
	}

	return c, err
}
