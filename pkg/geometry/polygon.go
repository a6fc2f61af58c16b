package geometry

import (
	"errors"
	"fmt"
)

// ErrTooFewPoints is returned when a polygon is built from fewer than three points.
var ErrTooFewPoints = errors.New("polygon needs at least 3 points")

// Polygon is a closed sequence of points. The insertion order defines the winding.
// Polygons are immutable once built: bounds and centroid are computed up front.
type Polygon struct {
	points   []Vector2D
	bounds   Bounds
	centroid Vector2D
}

// NewPolygon copies points into a new Polygon.
func NewPolygon(points []Vector2D) (*Polygon, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	pts := make([]Vector2D, len(points))
	var sum Vector2D
	for i, p := range points {
		if !p.IsFinite() {
			return nil, fmt.Errorf("%w: point %d is %v", ErrMalformedPoint, i, p)
		}
		pts[i] = p
		sum = sum.Add(p)
	}
	return &Polygon{
		points:   pts,
		bounds:   BoundsOf(pts),
		centroid: sum.Scale(1 / float64(len(pts))),
	}, nil
}

// MustPolygon is like NewPolygon but panics on error. Meant for literals in tests and examples.
func MustPolygon(points ...Vector2D) *Polygon {
	p, err := NewPolygon(points)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Polygon) String() string {
	return fmt.Sprintf("Polygon%v", p.points)
}

// Points returns the vertices. The slice is shared and must not be modified.
func (p *Polygon) Points() []Vector2D {
	return p.points
}

// Len returns the number of vertices.
func (p *Polygon) Len() int {
	return len(p.points)
}

// Edges returns the boundary edges; edge i runs from point i-1 to point i,
// so the first edge closes the loop from the last point back to the first.
func (p *Polygon) Edges() []Edge {
	edges := make([]Edge, len(p.points))
	prev := p.points[len(p.points)-1]
	for i, pt := range p.points {
		edges[i] = Edge{P1: prev, P2: pt}
		prev = pt
	}
	return edges
}

// Bounds returns the axis-aligned bounding box.
func (p *Polygon) Bounds() Bounds {
	return p.bounds
}

// Centroid returns the arithmetic mean of the vertices (not the area centroid).
func (p *Polygon) Centroid() Vector2D {
	return p.centroid
}

// CentroidDistance returns the distance between the centroids of both polygons.
func (p *Polygon) CentroidDistance(other *Polygon) float64 {
	return p.centroid.DistanceTo(other.centroid)
}

// Contains reports whether pt is inside the polygon or on its boundary.
func (p *Polygon) Contains(pt Vector2D) bool {
	if !p.bounds.Expand(Epsilon).ContainsPoint(pt) {
		return false
	}
	if p.rayCast(pt) {
		return true
	}
	_, onEdge := p.OnEdge(pt)
	return onEdge
}

// rayCast is the even-odd crossing test. Points exactly on the boundary are unspecified.
func (p *Polygon) rayCast(pt Vector2D) bool {
	inside := false
	n := len(p.points)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.points[i], p.points[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// OnEdge returns the first boundary edge holding pt.
func (p *Polygon) OnEdge(pt Vector2D) (Edge, bool) {
	for _, e := range p.Edges() {
		if e.OnEdge(pt) {
			return e, true
		}
	}
	return Edge{}, false
}

// Touches returns the first boundary edge that is collinear with other and holds one of its endpoints.
func (p *Polygon) Touches(other Edge) (Edge, bool) {
	for _, e := range p.Edges() {
		if e.Touches(other) {
			return e, true
		}
	}
	return Edge{}, false
}
