package board

import (
	"math"

	"github.com/gamedevlabs/pixe"
	"github.com/gamedevlabs/pixe/internal/logging"
)

// Handle identifies one of the eight resize handles of an element.
type Handle int

const (
	HandleNW Handle = iota
	HandleN
	HandleNE
	HandleE
	HandleSE
	HandleS
	HandleSW
	HandleW
)

// Gesture thresholds.
const (
	// rotateEngageDistance is the minimum pointer travel (screen pixels)
	// before a rotation gesture engages. Below this, a click on the
	// rotation handle does not nudge the element.
	rotateEngageDistance = 5.0
	// rotateCommitDegrees is the minimum net rotation change for the
	// gesture to commit on release.
	rotateCommitDegrees = 1.0
	// rotateSnapDegrees is the snapping step while shift is held.
	rotateSnapDegrees = 15.0
)

type gesturePhase int

const (
	phaseIdle gesturePhase = iota
	phaseDragging
	phaseResizing
	phaseRotating
)

// gesture tracks one in-flight drag/resize/rotate interaction.
//
// The phases are mutually exclusive: a new gesture can only begin from
// phaseIdle, which is the in-process equivalent of attaching global
// pointer listeners on begin and removing them on end.
type gesture struct {
	phase       gesturePhase
	id          string
	handle      Handle
	startScreen pixe.Point
	start       pixe.Point
	startBounds pixe.Rect
	startAngle  float64 // pointer angle around the element center at begin
	startRot    float64
	engaged     bool
}

// BeginDrag starts dragging an element. Beginning a drag on an image
// raises it to the top of the z-order immediately.
func (c *Controller) BeginDrag(id string, screen pixe.Point) error {
	if c.g.phase != phaseIdle {
		return pixe.NewValidationError("another gesture is active")
	}
	el, err := c.mb.Element(id)
	if err != nil {
		return err
	}

	c.g = gesture{
		phase:       phaseDragging,
		id:          id,
		startScreen: screen,
		start:       c.toLogicalRaw(screen),
		startBounds: el.Bounds(),
	}

	if el.Kind() == pixe.ImageKind {
		c.raiseToTop(el)
	}

	return nil
}

// UpdateDrag moves the element with the pointer. The position is tracked
// locally only; nothing is persisted until EndDrag.
func (c *Controller) UpdateDrag(screen pixe.Point) {
	if c.g.phase != phaseDragging {
		return
	}
	el, err := c.mb.Element(c.g.id)
	if err != nil {
		return
	}

	p := c.toLogicalRaw(screen)
	b := c.g.startBounds
	b.X += p.X - c.g.start.X
	b.Y += p.Y - c.g.start.Y

	if s := c.Settings(); s.SnapToGrid {
		snapped := pixe.Snap(pixe.Point{X: b.X, Y: b.Y}, s.GridSize)
		b.X, b.Y = snapped.X, snapped.Y
	}

	el.SetBounds(b)
}

// EndDrag commits the final position to storage.
func (c *Controller) EndDrag() {
	if c.g.phase != phaseDragging {
		return
	}
	el, err := c.mb.Element(c.g.id)
	c.g = gesture{}
	if err != nil {
		return
	}

	b := el.Bounds()
	c.persistBounds(el, b)
}

// BeginResize starts resizing an element by the given handle.
func (c *Controller) BeginResize(id string, h Handle, screen pixe.Point) error {
	if c.g.phase != phaseIdle {
		return pixe.NewValidationError("another gesture is active")
	}
	el, err := c.mb.Element(id)
	if err != nil {
		return err
	}

	c.g = gesture{
		phase:       phaseResizing,
		id:          id,
		handle:      h,
		startScreen: screen,
		start:       c.toLogicalRaw(screen),
		startBounds: el.Bounds(),
	}
	return nil
}

// UpdateResize adjusts the element bounds for the pointer position,
// never shrinking below the element kind's minimum size.
func (c *Controller) UpdateResize(screen pixe.Point) {
	if c.g.phase != phaseResizing {
		return
	}
	el, err := c.mb.Element(c.g.id)
	if err != nil {
		return
	}

	p := c.toLogicalRaw(screen)
	dx := p.X - c.g.start.X
	dy := p.Y - c.g.start.Y

	b := resizeBounds(c.g.startBounds, c.g.handle, dx, dy, el.MinSize())

	if s := c.Settings(); s.SnapToGrid {
		b.W = math.Max(pixe.SnapValue(b.W, s.GridSize), el.MinSize().W)
		b.H = math.Max(pixe.SnapValue(b.H, s.GridSize), el.MinSize().H)
	}

	el.SetBounds(b)
}

// EndResize commits the final bounds to storage.
func (c *Controller) EndResize() {
	if c.g.phase != phaseResizing {
		return
	}
	el, err := c.mb.Element(c.g.id)
	c.g = gesture{}
	if err != nil {
		return
	}

	c.persistBounds(el, el.Bounds())
}

// resizeBounds applies a pointer delta to the rectangle edge(s) indicated
// by the handle. Edges clamp against the minimum size so the opposite
// edge never moves.
func resizeBounds(b pixe.Rect, h Handle, dx, dy float64, min pixe.Size) pixe.Rect {
	left := h == HandleNW || h == HandleW || h == HandleSW
	right := h == HandleNE || h == HandleE || h == HandleSE
	top := h == HandleNW || h == HandleN || h == HandleNE
	bottom := h == HandleSW || h == HandleS || h == HandleSE

	if right {
		b.W = math.Max(b.W+dx, min.W)
	}
	if bottom {
		b.H = math.Max(b.H+dy, min.H)
	}
	if left {
		w := math.Max(b.W-dx, min.W)
		b.X += b.W - w
		b.W = w
	}
	if top {
		hh := math.Max(b.H-dy, min.H)
		b.Y += b.H - hh
		b.H = hh
	}

	return b
}

// BeginRotate starts a rotation gesture around the element's center.
func (c *Controller) BeginRotate(id string, screen pixe.Point) error {
	if c.g.phase != phaseIdle {
		return pixe.NewValidationError("another gesture is active")
	}
	el, err := c.mb.Element(id)
	if err != nil {
		return err
	}

	center := el.Bounds().Center()
	p := c.toLogicalRaw(screen)

	c.g = gesture{
		phase:       phaseRotating,
		id:          id,
		startScreen: screen,
		start:       p,
		startAngle:  pixe.Angle(center, p),
		startRot:    el.Rotation(),
	}
	return nil
}

// UpdateRotate rotates the element with the pointer. The gesture only
// engages after a minimum drag distance; with shift held, the angle
// snaps to 15° increments.
func (c *Controller) UpdateRotate(screen pixe.Point, shiftHeld bool) {
	if c.g.phase != phaseRotating {
		return
	}

	if !c.g.engaged {
		if pixe.Distance(c.g.startScreen, screen) < rotateEngageDistance {
			return
		}
		c.g.engaged = true
	}

	el, err := c.mb.Element(c.g.id)
	if err != nil {
		return
	}

	center := el.Bounds().Center()
	p := c.toLogicalRaw(screen)
	delta := pixe.Angle(center, p) - c.g.startAngle

	deg := c.g.startRot + delta*180/math.Pi
	if shiftHeld {
		deg = pixe.SnapDegrees(deg, rotateSnapDegrees)
	}
	el.SetRotation(deg)
}

// EndRotate commits the rotation if the net change exceeds the threshold
// and reverts the element otherwise.
func (c *Controller) EndRotate() {
	if c.g.phase != phaseRotating {
		return
	}
	g := c.g
	c.g = gesture{}

	el, err := c.mb.Element(g.id)
	if err != nil {
		return
	}

	delta := math.Abs(angleDelta(el.Rotation(), g.startRot))
	if delta <= rotateCommitDegrees {
		el.SetRotation(g.startRot)
		return
	}

	rot := el.Rotation()
	c.persistRotation(el, rot)
}

// angleDelta returns the smallest signed difference between two angles in
// degrees.
func angleDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	}
	if d < -180 {
		d += 360
	}
	return d
}

func (c *Controller) persistBounds(el pixe.Element, b pixe.Rect) {
	var err error
	switch el.Kind() {
	case pixe.TextKind:
		err = c.store.UpdateText(c.mb.ID, el.ID(), pixe.TextUpdate{
			X: &b.X, Y: &b.Y, Width: &b.W, Height: &b.H,
		})
	default:
		err = c.store.UpdateImage(c.mb.ID, el.ID(), pixe.BoundsUpdate(b))
	}
	if err != nil {
		logging.Warning("Failed to save bounds for %v: %v", el.ID(), err)
		c.markDirty(el.ID())
	}
}

func (c *Controller) persistRotation(el pixe.Element, deg float64) {
	var err error
	switch el.Kind() {
	case pixe.TextKind:
		err = c.store.UpdateText(c.mb.ID, el.ID(), pixe.TextUpdate{Rotation: &deg})
	default:
		err = c.store.UpdateImage(c.mb.ID, el.ID(), pixe.ImageUpdate{Rotation: &deg})
	}
	if err != nil {
		logging.Warning("Failed to save rotation for %v: %v", el.ID(), err)
		c.markDirty(el.ID())
	}
}

func (c *Controller) persistZIndex(el pixe.Element, z int) {
	var err error
	switch el.Kind() {
	case pixe.TextKind:
		err = c.store.UpdateText(c.mb.ID, el.ID(), pixe.TextUpdate{ZIndex: &z})
	default:
		err = c.store.UpdateImage(c.mb.ID, el.ID(), pixe.ImageUpdate{ZIndex: &z})
	}
	if err != nil {
		logging.Warning("Failed to save z-index for %v: %v", el.ID(), err)
		c.markDirty(el.ID())
	}
}
