package navmesh

import (
	"errors"
	"testing"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

func pts(coords ...float64) []geometry.Vector2D {
	out := make([]geometry.Vector2D, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, geometry.Vector2D{X: coords[i], Y: coords[i+1]})
	}
	return out
}

// fourTriangles is a connected trio (0-2 and 1-2 share an edge) plus an isolated triangle.
func fourTriangles() [][]geometry.Vector2D {
	return [][]geometry.Vector2D{
		pts(0, 0, 0, 12, 12, 0),
		pts(12, 8, 12, 4, 16, 6),
		pts(12, 0, 6, 6, 12, 6),
		pts(100, 100, 110, 100, 100, 110),
	}
}

func mustNew(t testing.TB, polygons [][]geometry.Vector2D, opts ...Option) *NavMesh {
	t.Helper()
	m, err := New(polygons, opts...)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	return m
}

func neighborIDs(m *NavMesh, id int) []int {
	var ids []int
	for _, l := range m.Neighbors(id) {
		ids = append(ids, l.To)
	}
	return ids
}

func TestNew_Neighbors(t *testing.T) {
	m := mustNew(t, fourTriangles())

	if got := len(m.Cells()); got != 4 {
		t.Fatalf("len(Cells()) = %d; want 4", got)
	}
	if got := m.PortalCount(); got != 2 {
		t.Errorf("PortalCount() = %d; want 2", got)
	}

	tests := []struct {
		cell int
		want []int
	}{
		{0, []int{2}},
		{1, []int{2}},
		{2, []int{0, 1}},
		{3, nil},
	}
	for _, tt := range tests {
		got := neighborIDs(m, tt.cell)
		if len(got) != len(tt.want) {
			t.Errorf("Neighbors(%d) = %v; want %v", tt.cell, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Neighbors(%d) = %v; want %v", tt.cell, got, tt.want)
			}
		}
	}
}

func TestNew_PortalGeometry(t *testing.T) {
	m := mustNew(t, fourTriangles())

	portal, ok := m.Portal(0, 2)
	if !ok {
		t.Fatal("Portal(0, 2) not found")
	}
	if !portal.Equals(geometry.NewEdge(geometry.Vector2D{X: 12, Y: 0}, geometry.Vector2D{X: 6, Y: 6})) {
		t.Errorf("Portal(0, 2) = %v; want (12,0)-(6,6)", portal)
	}
	if portal.Length() <= 0 {
		t.Errorf("Portal(0, 2) has length %v; want > 0", portal.Length())
	}
	if _, ok := m.Portal(0, 1); ok {
		t.Error("Portal(0, 1) found; cells 0 and 1 do not touch")
	}
	if got := len(m.Portals()); got != 2 {
		t.Errorf("len(Portals()) = %d; want 2", got)
	}
}

func TestNew_PortalOrientation(t *testing.T) {
	m := mustNew(t, fourTriangles())

	// seen from each side the left endpoint is counterclockwise of the right one
	for _, c := range m.Cells() {
		for _, l := range m.Neighbors(c.ID) {
			centroid := c.Centroid()
			right := l.Portal.P2.Sub(centroid)
			left := l.Portal.P1.Sub(centroid)
			if right.Cross(left) <= 0 {
				t.Errorf("portal %d->%d = %v is not left-to-right from %v", c.ID, l.To, l.Portal, centroid)
			}
			back, ok := m.Portal(l.To, c.ID)
			if !ok || !back.Equals(l.Portal) || back.P1 != l.Portal.P2 {
				t.Errorf("portal %d->%d = %v; reverse portal = %v, want the same edge reversed", c.ID, l.To, l.Portal, back)
			}
		}
	}
	// from the big triangle, looking north-east, (6,6) is on the left
	portal, _ := m.Portal(0, 2)
	if !portal.P1.Eq(geometry.Vector2D{X: 6, Y: 6}) {
		t.Errorf("Portal(0, 2).P1 = %v; want (6, 6)", portal.P1)
	}
}

func TestNew_DisjointTriangles(t *testing.T) {
	var polygons [][]geometry.Vector2D
	for i := 0; i < 10; i++ {
		x := float64(i) * 20
		polygons = append(polygons, pts(x, 0, x+10, 0, x, 10))
	}
	m := mustNew(t, polygons)
	if got := m.PortalCount(); got != 0 {
		t.Errorf("PortalCount() = %d; want 0", got)
	}
	for _, c := range m.Cells() {
		if n := m.Neighbors(c.ID); len(n) != 0 {
			t.Errorf("Neighbors(%d) = %v; want none", c.ID, n)
		}
	}
}

func TestNew_SharedVertexIsNotAPortal(t *testing.T) {
	m := mustNew(t, [][]geometry.Vector2D{
		pts(0, 0, 10, 0, 0, 10),
		pts(10, 0, 20, 0, 20, 10),
	})
	if got := m.PortalCount(); got != 0 {
		t.Errorf("PortalCount() = %d; want 0 for triangles sharing only (10, 0)", got)
	}
}

func TestNew_TouchOnlyOnePoint(t *testing.T) {
	polygons := [][]geometry.Vector2D{
		pts(0, 0, 0, 200, 200, 0),
		pts(0, 200, 0, 490, 80, 490),
		pts(0, 200, 170, 170, 200, 0),
		pts(60, 210, 180, 190, 200, 210),
		pts(0, 200, 80, 490, 51.0634328358209, 190.98880597014926),
		pts(54.77707006369427, 229.36305732484075, 200, 210, 52.903225806451616, 210),
	}
	if _, err := New(polygons); err != nil {
		t.Errorf("New() unexpected error: %v", err)
	}
}

func TestNew_PartialSharedEdge(t *testing.T) {
	// the small square's top edge is strictly inside the big square's bottom edge
	m := mustNew(t, [][]geometry.Vector2D{
		pts(0, 10, 30, 10, 30, 20, 0, 20),
		pts(10, 0, 20, 0, 20, 10, 10, 10),
	}, WithTriangulation(false))
	portal, ok := m.Portal(1, 0)
	if !ok {
		t.Fatal("Portal(1, 0) not found")
	}
	if !portal.Equals(geometry.NewEdge(geometry.Vector2D{X: 10, Y: 10}, geometry.Vector2D{X: 20, Y: 10})) {
		t.Errorf("Portal(1, 0) = %v; want (10,10)-(20,10)", portal)
	}
}

func TestNew_Triangulation(t *testing.T) {
	square := [][]geometry.Vector2D{pts(0, 0, 10, 0, 10, 10, 0, 10)}

	m := mustNew(t, square)
	if got := len(m.Cells()); got != 2 {
		t.Errorf("triangulated square has %d cells; want 2", got)
	}
	if got := m.PortalCount(); got != 1 {
		t.Errorf("triangulated square has %d portals; want 1", got)
	}
	for _, c := range m.Cells() {
		if c.Source != 0 {
			t.Errorf("cell %d Source = %d; want 0", c.ID, c.Source)
		}
	}

	m = mustNew(t, square, WithTriangulation(false))
	if got := len(m.Cells()); got != 1 {
		t.Errorf("untriangulated square has %d cells; want 1", got)
	}
}

func TestNew_CustomTriangulator(t *testing.T) {
	calls := 0
	fan := TriangulatorFunc(func(coords []float64) ([][3]int, error) {
		calls++
		n := len(coords) / 2
		var out [][3]int
		for i := 1; i+1 < n; i++ {
			out = append(out, [3]int{0, i, i + 1})
		}
		return out, nil
	})
	m := mustNew(t, [][]geometry.Vector2D{pts(0, 0, 10, 0, 10, 10, 0, 10)}, WithTriangulator(fan))
	if calls != 1 || len(m.Cells()) != 2 {
		t.Errorf("custom triangulator: %d calls, %d cells; want 1 call, 2 cells", calls, len(m.Cells()))
	}

	bad := TriangulatorFunc(func([]float64) ([][3]int, error) { return [][3]int{{0, 1, 7}}, nil })
	if _, err := New([][]geometry.Vector2D{pts(0, 0, 10, 0, 0, 10)}, WithTriangulator(bad)); err == nil {
		t.Error("New() with out of range triangle index succeeded; want an error")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		polygons [][]geometry.Vector2D
		opts     []Option
		want     error
	}{
		{"too few points", [][]geometry.Vector2D{pts(0, 0, 1, 1)}, nil, geometry.ErrTooFewPoints},
		{"zero query size", fourTriangles(), []Option{WithPointQuerySize(0)}, ErrInvalidOption},
		{"nil cost", fourTriangles(), []Option{WithCostFunc(nil)}, ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.polygons, tt.opts...); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestNewFromAny(t *testing.T) {
	m, err := NewFromAny([][]any{
		{[]float64{0, 0}, map[string]any{"x": 0.0, "y": 12.0}, [2]float64{12, 0}},
	})
	if err != nil {
		t.Fatalf("NewFromAny() unexpected error: %v", err)
	}
	if got := len(m.Cells()); got != 1 {
		t.Errorf("len(Cells()) = %d; want 1", got)
	}
	if _, err := NewFromAny([][]any{{"a", "b", "c"}}); !errors.Is(err, geometry.ErrMalformedPoint) {
		t.Errorf("NewFromAny(strings) error = %v; want ErrMalformedPoint", err)
	}
}

func TestLocateCell(t *testing.T) {
	m := mustNew(t, fourTriangles())
	tests := []struct {
		p    geometry.Vector2D
		want int
	}{
		{geometry.Vector2D{X: 1, Y: 1}, 0},
		{geometry.Vector2D{X: 14, Y: 6}, 1},
		{geometry.Vector2D{X: 10, Y: 4}, 2},
		{geometry.Vector2D{X: 105, Y: 101}, 3},
		// on the portal between 0 and 2: lowest ID wins
		{geometry.Vector2D{X: 9, Y: 3}, 0},
		{geometry.Vector2D{X: -1, Y: 1}, -1},
	}
	for _, tt := range tests {
		c, ok := m.LocateCell(tt.p)
		got := -1
		if ok {
			got = c.ID
		}
		if got != tt.want {
			t.Errorf("LocateCell(%v) = %d; want %d", tt.p, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	m := mustNew(t, fourTriangles())
	want := geometry.Bounds{MinX: 0, MinY: 0, MaxX: 110, MaxY: 110}
	if got := m.Bounds(); got != want {
		t.Errorf("Bounds() = %+v; want %+v", got, want)
	}
}

func grid(n int, size float64) [][]geometry.Vector2D {
	polygons := make([][]geometry.Vector2D, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x, y := float64(i)*size, float64(j)*size
			polygons = append(polygons, pts(x, y, x+size, y, x+size, y+size, x, y+size))
		}
	}
	return polygons
}

func TestNew_ScalesLinearly(t *testing.T) {
	small := mustNew(t, grid(10, 10), WithTriangulation(false))
	large := mustNew(t, grid(30, 10), WithTriangulation(false))

	if len(small.Cells()) != 100 || len(large.Cells()) != 900 {
		t.Fatalf("grid sizes = %d and %d cells; want 100 and 900", len(small.Cells()), len(large.Cells()))
	}
	// each square only meets its 8 surrounding squares
	for _, m := range []*NavMesh{small, large} {
		if perCell := float64(m.candidatePairs) / float64(len(m.Cells())); perCell > 4 {
			t.Errorf("%d cells tested %d candidate pairs (%.1f per cell); want at most 4 per cell",
				len(m.Cells()), m.candidatePairs, perCell)
		}
	}
	// interior squares have four edge neighbours: 2*n*(n-1) portals
	if got, want := large.PortalCount(), 2*30*29; got != want {
		t.Errorf("PortalCount() = %d; want %d", got, want)
	}
}

func BenchmarkNew_Grid30(b *testing.B) {
	polygons := grid(30, 10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := New(polygons); err != nil {
			b.Fatal(err)
		}
	}
}
