// Package draw implements the raster drawing layer of a moodboard:
// freehand strokes with several brush algorithms, simulated pressure and a
// snapshot-based undo/redo history.
//
// The engine is driven by pointer events in logical canvas coordinates.
// Callers convert screen input with the geometry utilities first so
// drawing stays consistent with element interactions under zoom.
package draw

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/png"
	"math/rand"
	"strings"
	"time"

	xdraw "image/draw"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/imaging"
	"github.com/gamedevlabs/pixe/internal/logging"
)

// Mode is the raster tool mode.
type Mode int

const (
	// ModeMove ignores pointer input (elements are being manipulated).
	ModeMove Mode = iota
	// ModeDraw paints with the configured brush.
	ModeDraw
	// ModeErase removes ink with destination-out compositing.
	ModeErase
)

// layerPrefix is the data-URI prefix used for the persisted drawing layer.
const layerPrefix = "data:image/png;base64,"

// Engine is the drawing engine for one canvas.
//
// It owns a raster buffer with the logical canvas dimensions and a linear
// history of full-buffer snapshots. It is not safe for concurrent use;
// all calls happen on the UI event loop.
type Engine struct {
	buf  *image.RGBA
	mode Mode
	cfg  Config
	hist *History

	drawing  bool
	last     pixe.Point
	lastTime time.Time

	rng *rand.Rand
}

// NewEngine creates an engine with a transparent buffer of the given
// logical canvas size.
func NewEngine(width, height int) *Engine {
	return &Engine{
		buf:  image.NewRGBA(image.Rect(0, 0, width, height)),
		mode: ModeMove,
		cfg:  DefaultConfig(),
		hist: NewHistory(DefaultHistoryDepth),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (e *Engine) Mode() Mode {
	return e.mode
}

func (e *Engine) SetMode(m Mode) {
	e.mode = m
}

func (e *Engine) Brush() Config {
	return e.cfg
}

// SetBrush replaces the brush configuration,
// clamping values to the pen type's valid ranges.
func (e *Engine) SetBrush(c Config) {
	e.cfg = c.Clamped()
}

// Buffer exposes the raster buffer for rendering.
// Callers must not retain it across further engine calls.
func (e *Engine) Buffer() *image.RGBA {
	return e.buf
}

// HasInk reports whether the buffer contains any non-transparent pixel.
func (e *Engine) HasInk() bool {
	return imaging.HasAlpha(e.buf)
}

// PointerDown starts a stroke at the given logical position.
// In draw mode an initial dot is stamped so a simple click leaves a mark.
func (e *Engine) PointerDown(p pixe.Point, t time.Time) {
	if e.mode == ModeMove || e.drawing {
		return
	}

	// snapshot the pre-stroke state so undo can restore it. After a
	// clear, the current position holds no snapshot and the empty
	// buffer is recorded here.
	if cur := e.hist.Current(); cur == nil || !bytes.Equal(cur.Pix, e.buf.Pix) {
		e.hist.Push(e.buf)
	}

	e.drawing = true
	e.last = p
	e.lastTime = t

	if e.mode == ModeDraw {
		renderSegment(e.buf, e.cfg, Sample{From: p, To: p, Pressure: 1.0}, false, e.rng)
	}
}

// PointerMove extends the current stroke. Pressure is simulated from the
// pointer velocity: slower movement yields higher pressure.
func (e *Engine) PointerMove(p pixe.Point, t time.Time) {
	if !e.drawing {
		return
	}

	dist := pixe.Distance(e.last, p)
	elapsed := float64(t.Sub(e.lastTime).Milliseconds())
	if elapsed < 1 {
		elapsed = 1
	}
	velocity := dist / elapsed
	pressure := pixe.Clamp(1.0-velocity*0.5, 0.3, 1.0)

	s := Sample{
		From:     e.last,
		To:       p,
		Pressure: pressure,
	}
	if dist > 2 {
		s.Angle = pixe.Angle(e.last, p)
		s.HasAngle = true
	}

	renderSegment(e.buf, e.cfg, s, e.mode == ModeErase, e.rng)

	e.last = p
	e.lastTime = t
}

// PointerUp ends the stroke and closes the undo entry with a snapshot of
// the buffer.
func (e *Engine) PointerUp() {
	if !e.drawing {
		return
	}
	e.drawing = false
	e.hist.Push(e.buf)
}

func (e *Engine) CanUndo() bool {
	return e.hist.CanUndo()
}

func (e *Engine) CanRedo() bool {
	return e.hist.CanRedo()
}

// Undo repaints the buffer from the previous snapshot.
func (e *Engine) Undo() bool {
	s := e.hist.Undo()
	if s == nil {
		return false
	}
	e.repaint(s)
	return true
}

// Redo repaints the buffer from the next snapshot.
// After Clear, a redo restores the first history snapshot.
func (e *Engine) Redo() bool {
	s := e.hist.Redo()
	if s == nil {
		return false
	}
	e.repaint(s)
	return true
}

// Clear wipes the buffer and moves the history pointer to -1.
func (e *Engine) Clear() {
	e.wipe()
	e.hist.Clear()
}

// History exposes the undo stack, mainly for inspection in tests and
// status displays.
func (e *Engine) History() *History {
	return e.hist
}

// Restore replaces the buffer with the persisted drawing layer (a base64
// encoded PNG, with or without the data-URI prefix). An empty string
// clears the buffer. The history restarts from the restored state.
func (e *Engine) Restore(encoded string) error {
	e.hist = NewHistory(DefaultHistoryDepth)

	if encoded == "" {
		e.wipe()
		return nil
	}

	raw := strings.TrimPrefix(encoded, layerPrefix)
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return pixe.Wrap(err, "cannot decode drawing layer")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return pixe.Wrap(err, "cannot decode drawing layer")
	}

	e.wipe()
	xdraw.Draw(e.buf, e.buf.Bounds(), img, img.Bounds().Min, xdraw.Over)
	logging.Debug("Restored drawing layer, %d bytes", len(data))

	return nil
}

// Encode serializes the buffer as a base64 PNG data URI for persistence.
func (e *Engine) Encode() (string, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, e.buf)
	if err != nil {
		return "", err
	}
	return layerPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (e *Engine) repaint(s *image.RGBA) {
	e.wipe()
	copy(e.buf.Pix, s.Pix)
}

func (e *Engine) wipe() {
	for n := range e.buf.Pix {
		e.buf.Pix[n] = 0
	}
}
