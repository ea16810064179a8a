package draw

import (
	"image"

	"github.com/gamedevlabs/pixe/internal/imaging"
)

// DefaultHistoryDepth bounds the number of full-buffer snapshots kept for
// undo. When the limit is reached, the oldest snapshot is evicted.
const DefaultHistoryDepth = 50

// History is a linear undo/redo stack of full raster snapshots with a
// current step pointer.
//
// A position of -1 represents a cleared buffer; the snapshots stay in
// place so a redo can restore the first one.
type History struct {
	snaps []*image.RGBA
	pos   int
	depth int
}

// NewHistory creates an empty history with the given maximum depth.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return &History{
		snaps: make([]*image.RGBA, 0),
		pos:   -1,
		depth: depth,
	}
}

// Push records a copy of the given buffer as the new current snapshot.
// Any redo entries past the current position are discarded.
func (h *History) Push(buf *image.RGBA) {
	h.snaps = h.snaps[:h.pos+1]
	h.snaps = append(h.snaps, imaging.Clone(buf))
	h.pos++

	if len(h.snaps) > h.depth {
		n := len(h.snaps) - h.depth
		h.snaps = h.snaps[n:]
		h.pos -= n
	}
}

func (h *History) CanUndo() bool {
	return h.pos > 0
}

func (h *History) CanRedo() bool {
	return h.pos < len(h.snaps)-1
}

// Undo moves the pointer back and returns the snapshot at the new
// position, or nil if undo is not possible.
func (h *History) Undo() *image.RGBA {
	if !h.CanUndo() {
		return nil
	}
	h.pos--
	return h.snaps[h.pos]
}

// Redo moves the pointer forward and returns the snapshot at the new
// position, or nil if redo is not possible.
func (h *History) Redo() *image.RGBA {
	if !h.CanRedo() {
		return nil
	}
	h.pos++
	return h.snaps[h.pos]
}

// Clear moves the pointer to the "empty buffer" position without
// discarding snapshots.
func (h *History) Clear() {
	h.pos = -1
}

// Current returns the snapshot at the current position,
// or nil for the cleared-buffer position.
func (h *History) Current() *image.RGBA {
	if h.pos < 0 {
		return nil
	}
	return h.snaps[h.pos]
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snaps)
}

// Pos returns the current step pointer (-1 for a cleared buffer).
func (h *History) Pos() int {
	return h.pos
}
