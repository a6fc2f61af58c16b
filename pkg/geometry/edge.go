package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOperation is returned when an operation is not defined for its operands,
// e.g. the overlap of two edges that are not collinear.
var ErrInvalidOperation = errors.New("invalid geometric operation")

// Edge is a directed segment from P1 to P2.
type Edge struct {
	P1 Vector2D `json:"p1"`
	P2 Vector2D `json:"p2"`
}

// NewEdge creates a new Edge.
func NewEdge(p1, p2 Vector2D) Edge {
	return Edge{P1: p1, P2: p2}
}

func (e Edge) String() string {
	return fmt.Sprintf("Edge(%v, %v)", e.P1, e.P2)
}

// Length returns the euclidean length of the segment.
func (e Edge) Length() float64 {
	return e.P1.DistanceTo(e.P2)
}

// Direction returns P1 - P2.
func (e Edge) Direction() Vector2D {
	return e.P1.Sub(e.P2)
}

// Midpoint returns the point halfway between P1 and P2.
func (e Edge) Midpoint() Vector2D {
	return e.P1.Lerp(e.P2, 0.5)
}

// Reversed returns the same segment running from P2 to P1.
func (e Edge) Reversed() Edge {
	return Edge{P1: e.P2, P2: e.P1}
}

// OnEdge reports whether p lies on the segment, endpoints included.
func (e Edge) OnEdge(p Vector2D) bool {
	dir := e.Direction()
	lenSqr := dir.LenSqr()
	if lenSqr < Epsilon*Epsilon {
		return e.P1.Eq(p)
	}
	toPoint := e.P1.Sub(p)
	if !IsClose(dir.Cross(toPoint), 0) {
		return false
	}
	t := dir.Dot(toPoint) / lenSqr
	return t >= 0 && t <= 1
}

// LineDistance returns the distance from p to the infinite line through the edge.
// For a degenerate edge it is the distance to P1.
func (e Edge) LineDistance(p Vector2D) float64 {
	d := e.P2.Sub(e.P1)
	length := d.Len()
	if length < Epsilon {
		return p.DistanceTo(e.P1)
	}
	return math.Abs(d.Cross(p.Sub(e.P1))) / length
}

// ClosestPoint projects p on the line through the edge. t is the position of the
// projection, 0 at P1 and 1 at P2; it lies on the segment when t is in [0, 1].
func (e Edge) ClosestPoint(p Vector2D) (Vector2D, float64) {
	d := e.P2.Sub(e.P1)
	lenSqr := d.LenSqr()
	if lenSqr < Epsilon*Epsilon {
		return e.P1, 0
	}
	t := d.Dot(p.Sub(e.P1)) / lenSqr
	return e.P1.Lerp(e.P2, t), t
}

// Parallel reports whether both edges have the same (or opposite) direction.
func (e Edge) Parallel(other Edge) bool {
	return IsClose(e.Direction().Cross(other.Direction()), 0)
}

// Collinear reports whether both edges lie on the same infinite line.
func (e Edge) Collinear(other Edge) bool {
	if !e.Parallel(other) {
		return false
	}
	return IsClose(e.Direction().Cross(e.P1.Sub(other.P1)), 0) &&
		IsClose(e.Direction().Cross(e.P1.Sub(other.P2)), 0)
}

// Touches reports whether other is collinear with e and at least one of its endpoints lies on e.
func (e Edge) Touches(other Edge) bool {
	return e.Collinear(other) && (e.OnEdge(other.P1) || e.OnEdge(other.P2))
}

// Overlap returns the sub-segment shared by two collinear edges.
// The boolean is false when the edges are disjoint. A single shared point yields a zero-length edge.
// Calling Overlap on non-collinear edges returns ErrInvalidOperation.
func (e Edge) Overlap(other Edge) (Edge, bool, error) {
	if !e.Collinear(other) {
		return Edge{}, false, fmt.Errorf("%w: overlap of non-collinear edges %v and %v", ErrInvalidOperation, e, other)
	}

	points := make([]Vector2D, 0, 4)
	add := func(p Vector2D) {
		for _, q := range points {
			if q.Eq(p) {
				return
			}
		}
		points = append(points, p)
	}
	for _, p := range [...]Vector2D{e.P1, e.P2} {
		if other.OnEdge(p) {
			add(p)
		}
	}
	for _, p := range [...]Vector2D{other.P1, other.P2} {
		if e.OnEdge(p) {
			add(p)
		}
	}

	switch len(points) {
	case 0:
		return Edge{}, false, nil
	case 1:
		return Edge{P1: points[0], P2: points[0]}, true, nil
	case 2:
		return Edge{P1: points[0], P2: points[1]}, true, nil
	}

	// near-coincident endpoints that escaped de-duplication: keep the widest pair
	best := Edge{P1: points[0], P2: points[1]}
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if candidate := (Edge{P1: points[i], P2: points[j]}); candidate.Length() > best.Length() {
				best = candidate
			}
		}
	}
	return best, true, nil
}

// Equals compares two edges regardless of direction.
func (e Edge) Equals(other Edge) bool {
	return (e.P1.Eq(other.P1) && e.P2.Eq(other.P2)) ||
		(e.P1.Eq(other.P2) && e.P2.Eq(other.P1))
}
