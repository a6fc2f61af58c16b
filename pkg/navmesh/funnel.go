package navmesh

import "github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"

// funnel pulls the path from start to goal taut through the portals between consecutive cells.
func (m *NavMesh) funnel(start, goal geometry.Vector2D, cells []int) []geometry.Vector2D {
	switch len(cells) {
	case 0:
		return nil
	case 1:
		return []geometry.Vector2D{start, goal}
	}

	f := &funnelState{path: []geometry.Vector2D{start}}
	for i := 0; i+1 < len(cells); i++ {
		portal, ok := m.Portal(cells[i], cells[i+1])
		if !ok {
			// consecutive cells always share a portal, the search only follows links
			return nil
		}
		f.push(portal.P1, portal.P2)
	}
	f.push(goal, goal)
	return f.finish(goal)
}

// funnelState holds the committed path, whose last point is the apex,
// and the left and right chains still open after the apex.
type funnelState struct {
	path  []geometry.Vector2D
	left  []geometry.Vector2D
	right []geometry.Vector2D
}

const (
	leftSide  = 1.0
	rightSide = -1.0
)

func (f *funnelState) apex() geometry.Vector2D {
	return f.path[len(f.path)-1]
}

func (f *funnelState) push(left, right geometry.Vector2D) {
	f.add(&f.left, &f.right, left, leftSide)
	f.add(&f.right, &f.left, right, rightSide)
}

// add narrows one side of the funnel with p. side is leftSide or rightSide.
func (f *funnelState) add(own, opposite *[]geometry.Vector2D, p geometry.Vector2D, side float64) {
	chain := *own
	last := f.apex()
	if len(chain) > 0 {
		last = chain[len(chain)-1]
	}
	if last.Eq(p) {
		return
	}

	// drop the points p no longer has to wrap around
	for len(chain) > 0 {
		prev := f.apex()
		if len(chain) > 1 {
			prev = chain[len(chain)-2]
		}
		if side*turn(prev, chain[len(chain)-1], p) > 0 {
			break
		}
		chain = chain[:len(chain)-1]
	}

	if len(chain) == 0 {
		// Back at the apex: if p crosses over the opposite side the funnel
		// collapsed and the crossed points become part of the path.
		other := *opposite
		for len(other) > 0 && side*turn(f.apex(), other[0], p) < 0 {
			f.path = append(f.path, other[0])
			other = other[1:]
		}
		*opposite = other
	}
	*own = append(chain, p)
}

func (f *funnelState) finish(goal geometry.Vector2D) []geometry.Vector2D {
	rest := f.left
	if len(f.right) > len(rest) {
		rest = f.right
	}
	for _, p := range rest {
		if !p.Eq(f.apex()) {
			f.path = append(f.path, p)
		}
	}
	if !f.apex().Eq(goal) {
		f.path = append(f.path, goal)
	}
	return f.path
}

// turn is positive when c lies to the left of the line from a to b.
func turn(a, b, c geometry.Vector2D) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}
