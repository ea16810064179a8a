// Package board implements the canvas controller for a moodboard editor:
// tool modes, zoom, selection, element gestures, layering and persistence
// batching. It orchestrates the element model from the root package and
// the raster engine from pkg/draw.
package board

import (
	"time"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/logging"
	"github.com/gamedevlabs/pixe/pkg/draw"
)

// Tool is the vector tool mode. The raster modes (move/draw/erase) are
// independent and live on the drawing engine.
type Tool int

const (
	ToolSelect Tool = iota
	ToolText
	ToolImage
)

// Zoom bounds and step.
const (
	MinZoom  = 0.1
	MaxZoom  = 3.0
	ZoomStep = 0.1
)

// toolGuard suppresses click dispatch briefly after a tool switch so the
// click that changed the mode is not reinterpreted as a placement click.
const toolGuard = 200 * time.Millisecond

// ClickResult describes what a canvas click did.
type ClickResult int

const (
	ClickIgnored ClickResult = iota
	ClickNone
	ClickClearedSelection
	ClickPlacedText
	ClickOpenImageDialog
)

// SaveReport summarizes a batch save.
type SaveReport struct {
	Saved  int
	Failed int
}

// Controller owns the transient editor state for one moodboard.
//
// The locally held element state is authoritative for rendering; storage
// responses only confirm or replace identifiers. All methods run on the
// UI event loop; the controller is not safe for concurrent use.
type Controller struct {
	mb     *pixe.Moodboard
	store  pixe.Storage
	engine *draw.Engine

	tool       Tool
	zoom       float64
	origin     pixe.Point
	selection  []string
	editing    string
	guardUntil time.Time
	dirty      map[string]bool

	g gesture

	// now is replaceable in tests
	now func() time.Time
}

// New creates a controller for the given board. The drawing engine is
// restored from the board's persisted drawing layer.
func New(mb *pixe.Moodboard, store pixe.Storage) *Controller {
	s := mb.Settings()
	engine := draw.NewEngine(int(s.Width), int(s.Height))
	err := engine.Restore(mb.DrawingLayer)
	if err != nil {
		logging.Warning("Cannot restore drawing layer for board %v: %v", mb.ID, err)
	}

	return &Controller{
		mb:     mb,
		store:  store,
		engine: engine,
		tool:   ToolSelect,
		zoom:   1.0,
		dirty:  make(map[string]bool),
		now:    time.Now,
	}
}

func (c *Controller) Moodboard() *pixe.Moodboard {
	return c.mb
}

func (c *Controller) Engine() *draw.Engine {
	return c.engine
}

func (c *Controller) Settings() pixe.CanvasSettings {
	return c.mb.Settings()
}

// Tools -----------------------------------------------------------------

func (c *Controller) Tool() Tool {
	return c.tool
}

// SetTool switches the vector tool and arms the click guard window.
func (c *Controller) SetTool(t Tool) {
	c.tool = t
	c.guardUntil = c.now().Add(toolGuard)
}

// SetRasterMode switches the raster tool. Entering draw or erase forces
// the vector tool back to select.
func (c *Controller) SetRasterMode(m draw.Mode) {
	c.engine.SetMode(m)
	if m == draw.ModeDraw || m == draw.ModeErase {
		c.SetTool(ToolSelect)
	}
}

// Zoom ------------------------------------------------------------------

func (c *Controller) Zoom() float64 {
	return c.zoom
}

func (c *Controller) ZoomIn() {
	c.zoom = pixe.Clamp(c.zoom+ZoomStep, MinZoom, MaxZoom)
}

func (c *Controller) ZoomOut() {
	c.zoom = pixe.Clamp(c.zoom-ZoomStep, MinZoom, MaxZoom)
}

// SetOrigin sets the canvas origin offset in screen coordinates, used to
// convert pointer positions.
func (c *Controller) SetOrigin(p pixe.Point) {
	c.origin = p
}

// ToLogical converts a screen position to logical canvas coordinates,
// applying grid snapping when enabled.
func (c *Controller) ToLogical(screen pixe.Point) pixe.Point {
	p := c.toLogicalRaw(screen)
	s := c.Settings()
	if s.SnapToGrid {
		p = pixe.Snap(p, s.GridSize)
	}
	return p
}

func (c *Controller) toLogicalRaw(screen pixe.Point) pixe.Point {
	return pixe.ToLogical(screen, c.origin, c.zoom)
}

// Selection -------------------------------------------------------------

// Selection returns the selected element ids in selection order.
func (c *Controller) Selection() []string {
	rv := make([]string, len(c.selection))
	copy(rv, c.selection)
	return rv
}

func (c *Controller) IsSelected(id string) bool {
	for _, s := range c.selection {
		if s == id {
			return true
		}
	}
	return false
}

// Select selects an element. With multi set (modifier-click), the element
// toggles in and out of the existing selection; otherwise it becomes the
// only selected element.
func (c *Controller) Select(id string, multi bool) {
	if _, err := c.mb.Element(id); err != nil {
		return
	}

	if !multi {
		c.selection = []string{id}
		return
	}

	for n, s := range c.selection {
		if s == id {
			c.selection = append(c.selection[:n], c.selection[n+1:]...)
			return
		}
	}
	c.selection = append(c.selection, id)
}

func (c *Controller) ClearSelection() {
	c.selection = c.selection[:0]
}

// Click dispatch --------------------------------------------------------

// HandleCanvasClick dispatches a click on the canvas. background reports
// whether the click target was the canvas itself rather than a child
// element.
func (c *Controller) HandleCanvasClick(screen pixe.Point, background bool) ClickResult {
	if c.now().Before(c.guardUntil) {
		return ClickIgnored
	}

	switch c.tool {
	case ToolText:
		// placement only applies to a click on the canvas itself
		if !background {
			return ClickNone
		}
		c.placeText(c.ToLogical(screen))
		return ClickPlacedText
	case ToolImage:
		return ClickOpenImageDialog
	default:
		if background {
			c.ClearSelection()
			return ClickClearedSelection
		}
		return ClickNone
	}
}

// placeText creates a new text element at the given logical position and
// persists it immediately. On success the backend-assigned id replaces
// the local one; on failure the local element stays and is marked dirty.
func (c *Controller) placeText(at pixe.Point) {
	t := pixe.NewTextElement(c.mb.ID, at)
	t.ZIndex = c.maxZ() + 1

	created, err := c.store.CreateText(c.mb.ID, t)
	if err != nil {
		logging.Warning("Failed to create text element: %v", err)
		c.mb.Texts = append(c.mb.Texts, t)
		c.markDirty(t.ID)
		c.selection = []string{t.ID}
		return
	}

	c.mb.Texts = append(c.mb.Texts, created)
	c.selection = []string{created.ID}
}

// Inline text edit ------------------------------------------------------

// BeginTextEdit enters inline edit mode for a text element.
func (c *Controller) BeginTextEdit(id string) error {
	el, err := c.mb.Element(id)
	if err != nil {
		return err
	}
	if el.Kind() != pixe.TextKind {
		return pixe.NewValidationError("element %q is not a text element", id)
	}
	c.editing = id
	return nil
}

// CommitTextEdit stores the edited content. Empty content falls back to
// the placeholder string.
func (c *Controller) CommitTextEdit(content string) {
	if c.editing == "" {
		return
	}
	id := c.editing
	c.editing = ""

	el, err := c.mb.Element(id)
	if err != nil || el.Kind() != pixe.TextKind {
		return
	}

	if content == "" {
		content = pixe.DefaultTextContent
	}
	el.Text.Content = content

	err = c.store.UpdateText(c.mb.ID, id, pixe.TextUpdate{Content: &content})
	if err != nil {
		logging.Warning("Failed to save text content for %v: %v", id, err)
		c.markDirty(id)
	}
}

// CancelTextEdit leaves edit mode without emitting an update.
func (c *Controller) CancelTextEdit() {
	c.editing = ""
}

// Editing returns the id of the text element in inline edit mode, or "".
func (c *Controller) Editing() string {
	return c.editing
}

// Layering --------------------------------------------------------------

// CanReorder reports whether layering commands are available: exactly one
// element selected and at least two elements on the canvas.
func (c *Controller) CanReorder() bool {
	return len(c.selection) == 1 && len(c.mb.Elements()) >= 2
}

// BringToFront raises the selected element above all others.
func (c *Controller) BringToFront() error {
	el, err := c.reorderTarget()
	if err != nil {
		return err
	}
	c.raiseToTop(el)
	return nil
}

// SendToBack lowers the selected element below all others.
func (c *Controller) SendToBack() error {
	el, err := c.reorderTarget()
	if err != nil {
		return err
	}
	z := c.minZ() - 1
	el.SetZIndex(z)
	c.persistZIndex(el, z)
	return nil
}

// BringForward moves the selected element one step up: one past the next
// higher distinct z-index among all elements.
func (c *Controller) BringForward() error {
	el, err := c.reorderTarget()
	if err != nil {
		return err
	}

	cur := el.ZIndex()
	next, ok := c.nextDistinctZ(cur, true)
	if !ok {
		return nil // already on top
	}
	z := next + 1
	el.SetZIndex(z)
	c.persistZIndex(el, z)
	return nil
}

// SendBackward moves the selected element one step down: one past the
// next lower distinct z-index among all elements.
func (c *Controller) SendBackward() error {
	el, err := c.reorderTarget()
	if err != nil {
		return err
	}

	cur := el.ZIndex()
	next, ok := c.nextDistinctZ(cur, false)
	if !ok {
		return nil // already at the bottom
	}
	z := next - 1
	el.SetZIndex(z)
	c.persistZIndex(el, z)
	return nil
}

func (c *Controller) reorderTarget() (pixe.Element, error) {
	if !c.CanReorder() {
		return pixe.Element{}, pixe.NewValidationError("layering requires a single selected element and at least two elements")
	}
	return c.mb.Element(c.selection[0])
}

func (c *Controller) raiseToTop(el pixe.Element) {
	z := c.maxZ() + 1
	if el.ZIndex() == z-1 && c.countAtZ(z-1) == 1 {
		return // already the unique top element
	}
	el.SetZIndex(z)
	c.persistZIndex(el, z)
}

func (c *Controller) maxZ() int {
	els := c.mb.Elements()
	if len(els) == 0 {
		return 0
	}
	max := els[0].ZIndex()
	for _, e := range els {
		if e.ZIndex() > max {
			max = e.ZIndex()
		}
	}
	return max
}

func (c *Controller) minZ() int {
	els := c.mb.Elements()
	if len(els) == 0 {
		return 0
	}
	min := els[0].ZIndex()
	for _, e := range els {
		if e.ZIndex() < min {
			min = e.ZIndex()
		}
	}
	return min
}

func (c *Controller) countAtZ(z int) int {
	n := 0
	for _, e := range c.mb.Elements() {
		if e.ZIndex() == z {
			n++
		}
	}
	return n
}

// nextDistinctZ finds the nearest z-index strictly above (or below) the
// given one among all elements.
func (c *Controller) nextDistinctZ(z int, above bool) (int, bool) {
	found := false
	best := 0
	for _, e := range c.mb.Elements() {
		v := e.ZIndex()
		if above && v > z {
			if !found || v < best {
				best = v
				found = true
			}
		} else if !above && v < z {
			if !found || v > best {
				best = v
				found = true
			}
		}
	}
	return best, found
}

// Alignment / distribution ----------------------------------------------

// selectedImages returns the selected image elements in selection order.
func (c *Controller) selectedImages() []*pixe.ImageElement {
	rv := make([]*pixe.ImageElement, 0, len(c.selection))
	for _, id := range c.selection {
		el, err := c.mb.Element(id)
		if err != nil || el.Kind() != pixe.ImageKind {
			continue
		}
		rv = append(rv, el.Image)
	}
	return rv
}

// AlignTop sets the y position of all selected images to the minimum y
// among them. Requires at least two selected images.
func (c *Controller) AlignTop() error {
	imgs := c.selectedImages()
	if len(imgs) < 2 {
		return pixe.NewValidationError("alignment requires at least two selected images")
	}

	min := imgs[0].Y
	for _, i := range imgs {
		if i.Y < min {
			min = i.Y
		}
	}
	for _, i := range imgs {
		i.Y = min
		c.persistBounds(pixe.WrapImage(i), pixe.WrapImage(i).Bounds())
	}
	return nil
}

// AlignLeft sets the x position of all selected images to the minimum x
// among them. Requires at least two selected images.
func (c *Controller) AlignLeft() error {
	imgs := c.selectedImages()
	if len(imgs) < 2 {
		return pixe.NewValidationError("alignment requires at least two selected images")
	}

	min := imgs[0].X
	for _, i := range imgs {
		if i.X < min {
			min = i.X
		}
	}
	for _, i := range imgs {
		i.X = min
		c.persistBounds(pixe.WrapImage(i), pixe.WrapImage(i).Bounds())
	}
	return nil
}

// DistributeHorizontally spaces the selected images evenly between the
// leftmost and rightmost x positions. Requires at least three selected
// images.
func (c *Controller) DistributeHorizontally() error {
	imgs := c.selectedImages()
	if len(imgs) < 3 {
		return pixe.NewValidationError("distribution requires at least three selected images")
	}

	// sort by x, stable for ties
	sorted := make([]*pixe.ImageElement, len(imgs))
	copy(sorted, imgs)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j-1].X > sorted[j].X; j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}

	left := sorted[0].X
	right := sorted[len(sorted)-1].X
	step := (right - left) / float64(len(sorted)-1)

	for n, i := range sorted {
		i.X = left + step*float64(n)
		c.persistBounds(pixe.WrapImage(i), pixe.WrapImage(i).Bounds())
	}
	return nil
}

// Image load handling ---------------------------------------------------

// autoResizeThreshold marks stored sizes that are heuristically thumbnails.
const autoResizeThreshold = 250.0

// ImageLoaded recomputes an image element's size from its natural pixel
// dimensions when the stored size looks like a thumbnail, preserving the
// aspect ratio.
func (c *Controller) ImageLoaded(id string, naturalW, naturalH float64) {
	el, err := c.mb.Element(id)
	if err != nil || el.Kind() != pixe.ImageKind || naturalW <= 0 || naturalH <= 0 {
		return
	}

	img := el.Image
	if img.Width > autoResizeThreshold || img.Height > autoResizeThreshold {
		return
	}

	w := pixe.Clamp(naturalW*0.6, 300, 400)
	h := w * naturalH / naturalW

	b := pixe.Rect{X: img.X, Y: img.Y, W: w, H: h}
	el.SetBounds(b)
	c.persistBounds(el, b)
}

// Deletion / keyboard ---------------------------------------------------

// DeleteSelected removes all selected elements, continuing through
// individual failures. It returns the number of deleted elements.
func (c *Controller) DeleteSelected() int {
	ids := c.Selection()
	c.ClearSelection()

	deleted := 0
	for _, id := range ids {
		el, err := c.mb.Element(id)
		if err != nil {
			continue
		}

		switch el.Kind() {
		case pixe.TextKind:
			err = c.store.DeleteText(c.mb.ID, id)
		default:
			err = c.store.DeleteImage(c.mb.ID, id)
		}
		if err != nil {
			logging.Warning("Failed to delete element %v: %v", id, err)
		}

		// local state is authoritative - remove regardless
		c.mb.RemoveElement(id)
		delete(c.dirty, id)
		deleted++
	}
	return deleted
}

// HandleKey handles the canvas keyboard shortcuts:
// Delete removes the selected elements, Escape clears the selection.
func (c *Controller) HandleKey(key string) {
	switch key {
	case "Delete", "Backspace":
		c.DeleteSelected()
	case "Escape":
		c.CancelTextEdit()
		c.ClearSelection()
	}
}

// Persistence -----------------------------------------------------------

func (c *Controller) markDirty(id string) {
	c.dirty[id] = true
}

// Dirty returns the ids of elements whose last save failed.
func (c *Controller) Dirty() []string {
	rv := make([]string, 0, len(c.dirty))
	for id := range c.dirty {
		rv = append(rv, id)
	}
	return rv
}

// Save batch-persists all element state plus the rasterized drawing
// layer. It continues through individual failures and reports a
// partial-success count instead of aborting on the first error.
func (c *Controller) Save() SaveReport {
	var report SaveReport

	for _, img := range c.mb.Images {
		u := pixe.ImageUpdate{
			X: &img.X, Y: &img.Y, Width: &img.Width, Height: &img.Height,
			Rotation: &img.Rotation, Opacity: &img.Opacity, ZIndex: &img.ZIndex,
		}
		err := c.store.UpdateImage(c.mb.ID, img.ID, u)
		c.record(&report, img.ID, err)
	}

	for _, t := range c.mb.Texts {
		u := pixe.TextUpdate{
			Content: &t.Content,
			X:       &t.X, Y: &t.Y, Width: &t.Width, Height: &t.Height,
			Rotation: &t.Rotation, Opacity: &t.Opacity, ZIndex: &t.ZIndex,
			FontFamily: &t.FontFamily, FontSize: &t.FontSize,
			FontWeight: &t.FontWeight, TextAlign: &t.TextAlign,
			LineHeight: &t.LineHeight, LetterSpacing: &t.LetterSpacing,
			Color: &t.Color, BackgroundColor: &t.BackgroundColor,
			BorderColor: &t.BorderColor, BorderWidth: &t.BorderWidth,
		}
		err := c.store.UpdateText(c.mb.ID, t.ID, u)
		c.record(&report, t.ID, err)
	}

	encoded, err := c.engine.Encode()
	if err == nil {
		err = c.store.SaveDrawingLayer(c.mb.ID, encoded)
	}
	if err != nil {
		logging.Warning("Failed to save drawing layer: %v", err)
		report.Failed++
	} else {
		c.mb.DrawingLayer = encoded
		report.Saved++
	}

	return report
}

func (c *Controller) record(r *SaveReport, id string, err error) {
	if err != nil {
		logging.Warning("Failed to save element %v: %v", id, err)
		c.markDirty(id)
		r.Failed++
		return
	}
	delete(c.dirty, id)
	r.Saved++
}
