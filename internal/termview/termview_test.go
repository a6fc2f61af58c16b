package termview

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

func v(x, y float64) geometry.Vector2D { return geometry.Vector2D{X: x, Y: y} }

// twoSquares is a 20x10 rectangle split in two cells with one portal at x = 10.
func twoSquares(t *testing.T) *navmesh.NavMesh {
	t.Helper()
	m, err := navmesh.New([][]geometry.Vector2D{
		{v(0, 0), v(10, 0), v(10, 10), v(0, 10)},
		{v(10, 0), v(20, 0), v(20, 10), v(10, 10)},
	}, navmesh.WithTriangulation(false))
	if err != nil {
		t.Fatalf("navmesh.New() unexpected error: %v", err)
	}
	return m
}

func screen(t *testing.T, cols, rows int) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("")
	if err := s.Init(); err != nil {
		t.Fatalf("Init() unexpected error: %v", err)
	}
	s.SetSize(cols, rows)
	t.Cleanup(s.Fini)
	return s
}

func runeAt(s tcell.SimulationScreen, col, row int) rune {
	r, _, _, _ := s.GetContent(col, row)
	return r
}

func TestViewerDraw(t *testing.T) {
	s := screen(t, 22, 12)
	view := NewViewer(twoSquares(t))
	// 22 columns for 20 units plus a 1 column margin: one column per unit,
	// world (x, y) lands on column x+1, row (y+6)/2
	view.Fit(22, 12)
	view.From, view.To = v(2, 3), v(18, 3)
	view.Update()
	view.Draw(s)

	tests := []struct {
		name     string
		col, row int
		want     rune
	}{
		{"outside the mesh", 0, 0, ' '},
		{"walkable cell", 1, 3, RuneCell},
		{"walkable cell, bottom row", 20, 7, RuneCell},
		{"below the mesh", 5, 8, ' '},
		{"portal midpoint", 11, 5, RunePortal},
		{"start", 3, 4, RuneStart},
		{"path", 10, 4, RunePath},
		{"goal", 19, 4, RuneGoal},
		{"status line", 0, 11, 'p'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runeAt(s, tt.col, tt.row); got != tt.want {
				t.Errorf("screen(%d, %d) = %q; want %q", tt.col, tt.row, got, tt.want)
			}
		})
	}
}

func TestViewerNoPath(t *testing.T) {
	s := screen(t, 22, 12)
	view := NewViewer(twoSquares(t))
	view.Fit(22, 12)
	view.To = v(50, 50)
	view.Update()
	if view.Path != nil {
		t.Fatalf("Path = %v; want nil for a goal outside the mesh", view.Path)
	}
	view.Draw(s)
	if got := runeAt(s, 0, 11); got != 'n' {
		t.Errorf("status line starts with %q; want the no path message", got)
	}
}

func TestMoveGoal(t *testing.T) {
	view := NewViewer(twoSquares(t))
	view.Fit(22, 12)
	if view.Path == nil {
		t.Fatal("NewViewer() did not find a path between the first and last cells")
	}
	start := view.To

	view.MoveGoal(1, 0)
	if got, want := view.To, start.Add(v(1, 0)); !got.Eq(want) {
		t.Errorf("after MoveGoal(1, 0) goal = %v; want %v", got, want)
	}
	view.MoveGoal(0, 1)
	if got, want := view.To, start.Add(v(1, 2)); !got.Eq(want) {
		t.Errorf("after MoveGoal(0, 1) goal = %v; want %v", got, want)
	}
	if view.Path == nil || !view.Path[len(view.Path)-1].Eq(view.To) {
		t.Errorf("Path = %v; want it to end at the moved goal %v", view.Path, view.To)
	}
}
