package geo

import "math"

// Point is a position on a page in PDF user-space units, origin at the
// lower-left corner.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle. A zero Rect is empty.
type Rect struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.MaxX <= r.MinX || r.MaxY <= r.MinY }

// Contains returns true if the point (x, y) is within the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Union returns the smallest rectangle covering both r and o. Empty
// operands are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }
