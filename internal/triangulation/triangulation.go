// Package triangulation adapts github.com/osuushi/triangulate to the flat
// coordinate and index triple form used by the mesh builder.
package triangulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/osuushi/triangulate"
)

// ErrDegenerate is returned when the input cannot describe a polygon.
var ErrDegenerate = errors.New("degenerate polygon")

// areaEpsilon separates real triangles from slivers over collinear vertices.
const areaEpsilon = 1e-12

// Triangulate takes flat coordinates [x0, y0, x1, y1, ...] of a simple polygon
// and returns triangles as index triples into the point list (index i refers to
// coordinates 2i and 2i+1). Triangles are counterclockwise whatever the input winding.
// Zero area triangles over collinear vertices are dropped.
func Triangulate(coords []float64) (triangles [][3]int, err error) {
	if len(coords)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of coordinates (%d)", ErrDegenerate, len(coords))
	}
	n := len(coords) / 2
	if n < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrDegenerate, n)
	}
	area := signedArea(coords)
	if math.Abs(area) <= areaEpsilon {
		return nil, fmt.Errorf("%w: zero area", ErrDegenerate)
	}

	// the library reads counterclockwise rings as solid and clockwise ones as holes
	order := make([]int, n)
	for i := range order {
		order[i] = i
		if area < 0 {
			order[i] = n - 1 - i
		}
	}

	list := triangulate.PolygonList{{}}
	points, index := ring(list[0].Points, coords, order)
	list[0].Points = points

	defer func() {
		if r := recover(); r != nil {
			triangles, err = nil, fmt.Errorf("%w: %v", ErrDegenerate, r)
		}
	}()
	for _, t := range list.Triangulate() {
		a, okA := index[t.A]
		b, okB := index[t.B]
		c, okC := index[t.C]
		if !okA || !okB || !okC {
			return nil, fmt.Errorf("%w: triangle vertex not in the input", ErrDegenerate)
		}
		tri := [3]int{a, b, c}
		switch s := cross(coords, tri); {
		case math.Abs(s) <= areaEpsilon:
			continue
		case s < 0:
			tri[1], tri[2] = tri[2], tri[1]
		}
		triangles = append(triangles, tri)
	}
	if len(triangles) == 0 {
		return nil, fmt.Errorf("%w: no triangle produced", ErrDegenerate)
	}
	return triangles, nil
}

// ring fills the point list of a library polygon in the given order. The
// library keeps point pointers as vertex identities, so the returned map leads
// every allocated point back to its input index.
func ring[E ~struct {
	X float64
	Y float64
}](dst []*E, coords []float64, order []int) ([]*E, map[*E]int) {
	index := make(map[*E]int, len(order))
	for _, i := range order {
		p := &E{X: coords[2*i], Y: coords[2*i+1]}
		dst = append(dst, p)
		index[p] = i
	}
	return dst, index
}

func signedArea(coords []float64) float64 {
	n := len(coords) / 2
	sum := 0.0
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += coords[2*j]*coords[2*i+1] - coords[2*i]*coords[2*j+1]
	}
	return sum / 2
}

// cross is twice the signed area of triangle t.
func cross(coords []float64, t [3]int) float64 {
	ax, ay := coords[2*t[0]], coords[2*t[0]+1]
	bx, by := coords[2*t[1]], coords[2*t[1]+1]
	cx, cy := coords[2*t[2]], coords[2*t[2]+1]
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}
