package geometry

import "math"

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// BoundsOf returns the smallest Bounds holding every point. It returns the zero Bounds for no points.
func BoundsOf(points []Vector2D) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range points {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// AroundPoint returns the square of the given side length centred on p.
func AroundPoint(p Vector2D, side float64) Bounds {
	h := side / 2
	return Bounds{MinX: p.X - h, MinY: p.Y - h, MaxX: p.X + h, MaxY: p.Y + h}
}

// Min returns the lower-left corner.
func (b Bounds) Min() Vector2D { return Vector2D{b.MinX, b.MinY} }

// Max returns the upper-right corner.
func (b Bounds) Max() Vector2D { return Vector2D{b.MaxX, b.MaxY} }

// Size returns the width and height of the rectangle.
func (b Bounds) Size() (w, h float64) {
	return b.MaxX - b.MinX, b.MaxY - b.MinY
}

// Center returns the middle of the rectangle.
func (b Bounds) Center() Vector2D {
	return Vector2D{(b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2}
}

// Intersects reports whether the two rectangles share at least one point (edges included).
func (b Bounds) Intersects(other Bounds) bool {
	return b.MinX <= other.MaxX && other.MinX <= b.MaxX &&
		b.MinY <= other.MaxY && other.MinY <= b.MaxY
}

// ContainsPoint reports whether p is inside the rectangle or on its border.
func (b Bounds) ContainsPoint(p Vector2D) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Union returns the smallest rectangle holding both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// Expand grows the rectangle by margin on every side.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{MinX: b.MinX - margin, MinY: b.MinY - margin, MaxX: b.MaxX + margin, MaxY: b.MaxY + margin}
}
