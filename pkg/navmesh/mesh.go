// Package navmesh builds a navigation mesh out of polygons and answers
// shortest path queries over it.
//
// A NavMesh is immutable once New returns, so FindPath can be called from
// several goroutines at the same time.
package navmesh

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/spatial"
)

// Cell is one convex node of the navigation graph.
type Cell struct {
	*geometry.Polygon
	// ID is the index of the cell in NavMesh.Cells().
	ID int
	// Source is the index of the input polygon the cell was cut from.
	Source int
}

// Link connects a cell to one of its neighbours.
type Link struct {
	To int
	// Portal is the shared boundary, P1 on the left and P2 on the right
	// as seen from the centroid of the cell owning the link.
	Portal geometry.Edge
}

// NavMesh is the navigation graph: cells, their adjacency and a spatial index over them.
type NavMesh struct {
	cells   []*Cell
	links   [][]Link
	index   spatial.Index[int]
	portals int
	// candidatePairs counts the cell pairs tested for adjacency during the build.
	candidatePairs int

	pointQuerySize float64
	cost           CostFunc
	heuristic      HeuristicFunc
	log            *zap.Logger
}

// New builds a NavMesh from polygons given as point lists.
// With triangulation on (the default) each polygon may be concave: it is split
// into triangles first. Otherwise every polygon must already be convex.
func New(polygons [][]geometry.Vector2D, opts ...Option) (*NavMesh, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	cells, err := buildCells(polygons, s)
	if err != nil {
		return nil, err
	}

	m := &NavMesh{
		cells:          cells,
		links:          make([][]Link, len(cells)),
		pointQuerySize: s.pointQuerySize,
		cost:           s.cost,
		heuristic:      s.heuristic,
		log:            s.logger,
	}
	for _, c := range cells {
		m.index.Insert(c.Bounds(), c.ID)
	}
	m.buildPortals()

	m.log.Debug("navmesh built",
		zap.Int("polygons", len(polygons)),
		zap.Int("cells", len(cells)),
		zap.Int("portals", m.portals),
		zap.Int("candidatePairs", m.candidatePairs),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// NewFromAny is New for points in any shape accepted by geometry.ParsePoint.
func NewFromAny(polygons [][]any, opts ...Option) (*NavMesh, error) {
	converted := make([][]geometry.Vector2D, len(polygons))
	for i, poly := range polygons {
		converted[i] = make([]geometry.Vector2D, len(poly))
		for j, raw := range poly {
			p, err := geometry.ParsePoint(raw)
			if err != nil {
				return nil, fmt.Errorf("polygon %d, point %d: %w", i, j, err)
			}
			converted[i][j] = p
		}
	}
	return New(converted, opts...)
}

func buildCells(polygons [][]geometry.Vector2D, s settings) ([]*Cell, error) {
	cells := make([]*Cell, 0, len(polygons))
	addCell := func(src int, pts []geometry.Vector2D) error {
		poly, err := geometry.NewPolygon(pts)
		if err != nil {
			return err
		}
		cells = append(cells, &Cell{Polygon: poly, ID: len(cells), Source: src})
		return nil
	}

	for i, pts := range polygons {
		// validates point count and coordinates before anything else touches them
		if _, err := geometry.NewPolygon(pts); err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		if !s.triangulate {
			if err := addCell(i, pts); err != nil {
				return nil, fmt.Errorf("polygon %d: %w", i, err)
			}
			continue
		}

		coords := make([]float64, 0, 2*len(pts))
		for _, p := range pts {
			coords = append(coords, p.X, p.Y)
		}
		triangles, err := s.triangulator.Triangulate(coords)
		if err != nil {
			return nil, fmt.Errorf("polygon %d: triangulation failed: %w", i, err)
		}
		for _, t := range triangles {
			tri := make([]geometry.Vector2D, 3)
			for k, idx := range t {
				if idx < 0 || idx >= len(pts) {
					return nil, fmt.Errorf("polygon %d: triangulator returned index %d out of range", i, idx)
				}
				tri[k] = pts[idx]
			}
			if err := addCell(i, tri); err != nil {
				return nil, fmt.Errorf("polygon %d: %w", i, err)
			}
		}
	}
	return cells, nil
}

// buildPortals fills the adjacency table. Only pairs with intersecting
// bounding boxes are tested, each pair once.
func (m *NavMesh) buildPortals() {
	for i, a := range m.cells {
		m.index.Search(a.Bounds().Expand(geometry.Epsilon), func(j int) bool {
			if j <= i {
				return true
			}
			m.candidatePairs++
			b := m.cells[j]
			if portal, ok := sharedEdge(a.Polygon, b.Polygon); ok {
				m.links[i] = append(m.links[i], Link{To: j, Portal: orient(portal, a.Centroid())})
				m.links[j] = append(m.links[j], Link{To: i, Portal: orient(portal, b.Centroid())})
				m.portals++
			}
			return true
		})
	}
	for i := range m.links {
		slices.SortFunc(m.links[i], func(x, y Link) int { return x.To - y.To })
	}
}

// sharedEdge returns the positive length boundary segment shared by a and b.
func sharedEdge(a, b *geometry.Polygon) (geometry.Edge, bool) {
	edgesB := b.Edges()
	for _, ea := range a.Edges() {
		for _, eb := range edgesB {
			if !ea.Touches(eb) && !eb.Touches(ea) {
				continue
			}
			overlap, ok, err := ea.Overlap(eb)
			if err != nil || !ok || overlap.Length() <= geometry.Epsilon {
				// a single shared vertex is not a portal
				continue
			}
			return overlap, true
		}
	}
	return geometry.Edge{}, false
}

// orient returns portal with P1 on the left and P2 on the right as seen from viewpoint.
func orient(portal geometry.Edge, viewpoint geometry.Vector2D) geometry.Edge {
	if portal.P1.Sub(viewpoint).Cross(portal.P2.Sub(viewpoint)) > 0 {
		return portal.Reversed()
	}
	return portal
}

// ---------------------------------------------------------------------
// Read accessors
// ---------------------------------------------------------------------

// Cells returns every cell, indexed by ID. The slice must not be modified.
func (m *NavMesh) Cells() []*Cell {
	return m.cells
}

// Cell returns the cell with the given ID.
func (m *NavMesh) Cell(id int) (*Cell, bool) {
	if id < 0 || id >= len(m.cells) {
		return nil, false
	}
	return m.cells[id], true
}

// Neighbors returns the links of a cell sorted by neighbour ID. The slice must not be modified.
func (m *NavMesh) Neighbors(id int) []Link {
	if id < 0 || id >= len(m.links) {
		return nil
	}
	return m.links[id]
}

// Portal returns the portal from cell a to cell b, oriented as seen from a.
func (m *NavMesh) Portal(a, b int) (geometry.Edge, bool) {
	row := m.Neighbors(a)
	i, found := slices.BinarySearchFunc(row, b, func(l Link, target int) int { return l.To - target })
	if !found {
		return geometry.Edge{}, false
	}
	return row[i].Portal, true
}

// Portals returns every portal once, as seen from the cell with the lower ID.
func (m *NavMesh) Portals() []geometry.Edge {
	out := make([]geometry.Edge, 0, m.portals)
	for id, row := range m.links {
		for _, l := range row {
			if l.To > id {
				out = append(out, l.Portal)
			}
		}
	}
	return out
}

// PortalCount returns the number of adjacent cell pairs.
func (m *NavMesh) PortalCount() int {
	return m.portals
}

// Bounds returns the rectangle covering every cell.
func (m *NavMesh) Bounds() geometry.Bounds {
	return m.index.Bounds()
}

// LocateCell returns the cell containing p. When p lies on a boundary shared
// by several cells the one with the lowest ID wins.
func (m *NavMesh) LocateCell(p geometry.Vector2D) (*Cell, bool) {
	best := -1
	m.index.Search(geometry.AroundPoint(p, m.pointQuerySize), func(id int) bool {
		if (best < 0 || id < best) && m.cells[id].Contains(p) {
			best = id
		}
		return true
	})
	if best < 0 {
		return nil, false
	}
	return m.cells[best], true
}
