// Package termview draws a navigation mesh and a path on a terminal screen.
package termview

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/camera"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

const (
	RuneCell   = '.'
	RunePortal = '+'
	RunePath   = '*'
	RuneStart  = 'S'
	RuneGoal   = 'G'

	// cellAspect is the height of a terminal cell in units of its width.
	cellAspect = 2.0
)

var (
	styleCell   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	stylePortal = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePath   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleEnd    = tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// Viewer holds a mesh, the two path ends and the camera for one terminal.
type Viewer struct {
	Mesh     *navmesh.NavMesh
	From, To geometry.Vector2D
	Path     []geometry.Vector2D
	cam      *camera.Camera
}

// NewViewer places the start and the goal on the first and last cell centroids.
func NewViewer(mesh *navmesh.NavMesh) *Viewer {
	v := &Viewer{Mesh: mesh, cam: camera.New()}
	if cells := mesh.Cells(); len(cells) > 0 {
		v.From = cells[0].Centroid()
		v.To = cells[len(cells)-1].Centroid()
	}
	v.Update()
	return v
}

// Fit frames the whole mesh on a cols x rows screen, keeping the last row for the status line.
func (v *Viewer) Fit(cols, rows int) {
	v.cam.Fit(v.Mesh.Bounds(), float64(cols), float64(rows-1)*cellAspect, 1)
}

// Update recomputes the path between From and To.
func (v *Viewer) Update() {
	v.Path = v.Mesh.FindPath(v.From, v.To)
}

// MoveGoal moves the goal by whole terminal cells and recomputes the path.
func (v *Viewer) MoveGoal(dcol, drow int) {
	s := v.cam.ToScreen(v.To)
	s.X += float64(dcol)
	s.Y += float64(drow) * cellAspect
	v.To = v.cam.ToWorld(s)
	v.Update()
}

// HandleKey applies one key press. It reports false when the viewer should quit.
func (v *Viewer) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		v.MoveGoal(-1, 0)
	case tcell.KeyRight:
		v.MoveGoal(1, 0)
	case tcell.KeyUp:
		v.MoveGoal(0, -1)
	case tcell.KeyDown:
		v.MoveGoal(0, 1)
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return false
		}
	}
	return true
}

// Draw renders the mesh, the path and a status line.
func (v *Viewer) Draw(s tcell.Screen) {
	s.Clear()
	cols, rows := s.Size()
	Render(s, v.Mesh, v.cam, v.From, v.To, v.Path, cols, rows-1)

	status := "no path"
	if v.Path != nil {
		status = fmt.Sprintf("path: %d points", len(v.Path))
	}
	status += "  arrows: move goal  q: quit"
	for i, r := range status {
		if i >= cols {
			break
		}
		s.SetContent(i, rows-1, r, nil, styleStatus)
	}
	s.Show()
}

// Render rasterises mesh and path into the cols x rows top-left area of s.
// A nil path draws only the mesh and both ends.
func Render(s tcell.Screen, mesh *navmesh.NavMesh, cam *camera.Camera,
	from, to geometry.Vector2D, path []geometry.Vector2D, cols, rows int) {
	put := func(p geometry.Vector2D, r rune, style tcell.Style) {
		sp := cam.ToScreen(p)
		col, row := int(math.Floor(sp.X)), int(math.Floor(sp.Y/cellAspect))
		if col >= 0 && col < cols && row >= 0 && row < rows {
			s.SetContent(col, row, r, nil, style)
		}
	}

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			center := cam.ToWorld(geometry.Vector2D{X: float64(col) + 0.5, Y: (float64(row) + 0.5) * cellAspect})
			if _, ok := mesh.LocateCell(center); ok {
				s.SetContent(col, row, RuneCell, nil, styleCell)
			}
		}
	}
	for _, portal := range mesh.Portals() {
		put(portal.Midpoint(), RunePortal, stylePortal)
	}
	for i := 1; i < len(path); i++ {
		a, b := cam.ToScreen(path[i-1]), cam.ToScreen(path[i])
		steps := int(math.Ceil(a.DistanceTo(b)*2)) + 1
		for k := 0; k <= steps; k++ {
			put(path[i-1].Lerp(path[i], float64(k)/float64(steps)), RunePath, stylePath)
		}
	}
	put(from, RuneStart, styleEnd)
	put(to, RuneGoal, styleEnd)
}
