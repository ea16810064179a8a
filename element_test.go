package pixe

import (
	"encoding/json"
	"testing"
)

func TestNewTextElementDefaults(t *testing.T) {
	el := NewTextElement("board-1", Point{X: 10, Y: 20})

	if el.Content != DefaultTextContent {
		t.Errorf("unexpected default content %q", el.Content)
	}
	if el.Width != 200 || el.Height != 50 {
		t.Errorf("unexpected default size %vx%v", el.Width, el.Height)
	}
	if el.FontFamily != "Arial" || el.FontSize != 16 {
		t.Errorf("unexpected default font")
	}
	if el.LineHeight != 1.2 {
		t.Errorf("unexpected default line height %v", el.LineHeight)
	}

	err := WrapText(el).Validate()
	if err != nil {
		t.Error(err)
	}
}

func TestSetBoundsClampsToMinimum(t *testing.T) {
	img := NewImageElement("board-1", "https://example.com/a.png")
	e := WrapImage(img)

	e.SetBounds(Rect{X: 5, Y: 5, W: 2, H: 2})
	b := e.Bounds()
	if b.W != MinImageSize || b.H != MinImageSize {
		t.Errorf("image bounds not clamped: %vx%v", b.W, b.H)
	}

	txt := NewTextElement("board-1", Point{})
	te := WrapText(txt)
	te.SetBounds(Rect{W: 10, H: 5})
	b = te.Bounds()
	if b.W != MinTextWidth || b.H != MinTextHeight {
		t.Errorf("text bounds not clamped: %vx%v", b.W, b.H)
	}
}

func TestRotationNormalized(t *testing.T) {
	img := NewImageElement("board-1", "x")
	e := WrapImage(img)

	e.SetRotation(-90)
	if e.Rotation() != 270 {
		t.Errorf("rotation not normalized: %v", e.Rotation())
	}

	e.SetRotation(405)
	if e.Rotation() != 45 {
		t.Errorf("rotation not normalized: %v", e.Rotation())
	}
}

func TestElementValidate(t *testing.T) {
	img := NewImageElement("board-1", "x")
	e := WrapImage(img)
	if e.Validate() != nil {
		t.Errorf("fresh image element should validate")
	}

	img.Opacity = 1.5
	if e.Validate() == nil {
		t.Errorf("invalid opacity not detected")
	}
	img.Opacity = 1.0

	txt := NewTextElement("board-1", Point{})
	te := WrapText(txt)
	txt.LineHeight = 0
	if te.Validate() == nil {
		t.Errorf("invalid line height not detected")
	}
	txt.LineHeight = 1.2

	txt.TextAlign = TextAlign(100)
	if te.Validate() == nil {
		t.Errorf("invalid text align not detected")
	}
}

func TestTextAlignJSON(t *testing.T) {
	data, err := json.Marshal(AlignJustify)
	if err != nil {
		t.Error(err)
	}
	if string(data) != `"justify"` {
		t.Errorf("unexpected marshal result %q", data)
	}

	var ta TextAlign
	err = json.Unmarshal([]byte(`"center"`), &ta)
	if err != nil {
		t.Error(err)
	}
	if ta != AlignCenter {
		t.Errorf("unexpected unmarshal result %v", ta)
	}

	err = json.Unmarshal([]byte(`"diagonal"`), &ta)
	if err == nil {
		t.Errorf("invalid align value not rejected")
	}
}
