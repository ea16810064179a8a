package pixe

import (
	"math"
)

// Point is a position in 2D space.
// Depending on context it holds screen or logical canvas coordinates.
type Point struct {
	X float64
	Y float64
}

// Size holds a width and height in logical units.
type Size struct {
	W float64
	H float64
}

// Rect is an axis-aligned rectangle in logical canvas coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// ToLogical converts screen coordinates into logical canvas coordinates,
// given the canvas origin offset (in screen space) and the zoom level.
//
// All interactive operations (drag, resize, rotate, drawing input) use this
// same conversion so they stay mutually consistent under zoom.
func ToLogical(screen, origin Point, zoom float64) Point {
	return Point{
		X: (screen.X - origin.X) / zoom,
		Y: (screen.Y - origin.Y) / zoom,
	}
}

// ToScreen is the inverse of ToLogical.
func ToScreen(logical, origin Point, zoom float64) Point {
	return Point{
		X: logical.X*zoom + origin.X,
		Y: logical.Y*zoom + origin.Y,
	}
}

// Snap rounds both coordinates to the nearest multiple of the grid size.
// A grid size <= 0 leaves the point unchanged.
func Snap(p Point, grid float64) Point {
	return Point{
		X: SnapValue(p.X, grid),
		Y: SnapValue(p.Y, grid),
	}
}

// SnapValue rounds v to the nearest multiple of grid.
func SnapValue(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Angle returns the angle of the segment a->b in radians.
func Angle(a, b Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X)
}

// NormalizeDegrees maps an angle in degrees onto the range [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// SnapDegrees rounds an angle to the nearest multiple of step degrees.
func SnapDegrees(deg, step float64) float64 {
	if step <= 0 {
		return deg
	}
	return NormalizeDegrees(math.Round(deg/step) * step)
}

// Clamp limits v to the range lo..hi.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rad converts degrees to radians.
func Rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
