// Package viewer is the ebiten front end of the mesh editor: it draws the
// cells, portals and current path, and turns mouse and keyboard input into
// editor operations.
package viewer

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/camera"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/editor"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/meshfile"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/ui"
)

const (
	panelWidth = 240.0
	zoomStep   = 1.1
)

var (
	whiteImage = ebiten.NewImage(3, 3)

	cellColors = []color.RGBA{
		{R: 60, G: 110, B: 80, A: 255},
		{R: 70, G: 125, B: 95, A: 255},
		{R: 55, G: 100, B: 110, A: 255},
	}
	outlineColor = color.RGBA{R: 160, G: 200, B: 170, A: 255}
	portalColor  = color.RGBA{R: 240, G: 200, B: 60, A: 255}
	pathColor    = color.RGBA{R: 255, G: 70, B: 70, A: 255}
	draftColor   = color.RGBA{R: 120, G: 180, B: 255, A: 255}
	centroidClr  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	agentColor   = color.RGBA{R: 120, G: 230, B: 255, A: 255}
)

func init() {
	whiteImage.Fill(color.White)
}

type Game struct {
	cfg      *config.Config
	log      *zap.Logger
	editor   *editor.Editor
	cam      *camera.Camera
	meshPath string

	panel           *ui.UIPanel
	widgetPortals   *ui.Checkbox
	widgetCentroids *ui.Checkbox
	widgetQuerySize *ui.Slider
	widgetSpeed     *ui.Slider
	appliedQuery    float64

	// agent walks the last path found
	agent *behavior.Agent
	steer behavior.Settings

	// path query in progress: the start waits for a second shift click
	start    *geometry.Vector2D
	dragging []editor.VertexRef
	panning  bool
	lastX    int
	lastY    int
	status   string

	lastUpdateDuration time.Duration
	lastDrawDuration   time.Duration
	updateAvg          float64 // rolling average in ms
	drawAvg            float64
}

// NewGame shows ed in a cfg.Viewer sized window. Ctrl+S writes the polygons to meshPath.
func NewGame(cfg *config.Config, ed *editor.Editor, meshPath string, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	w, h := float64(cfg.Viewer.Width), float64(cfg.Viewer.Height)
	g := &Game{
		cfg:      cfg,
		log:      log,
		editor:   ed,
		cam:      camera.New(),
		meshPath: meshPath,
		status:   "click: add point  enter: close polygon  shift+click: path",
		steer:    behavior.DefaultSettings(),
	}

	panel := ui.NewUIPanel("Navmesh", 10, 10, panelWidth, h-20)
	panel.AddSection("Display")
	g.widgetPortals = panel.AddCheckbox("Show portals", cfg.Viewer.ShowPortals)
	g.widgetCentroids = panel.AddCheckbox("Show centroids", cfg.Viewer.ShowCentroids)
	panel.EndSection()

	panel.AddSection("Mesh")
	g.widgetQuerySize = panel.AddSlider("Point query size", 0.001, 1, cfg.Mesh.PointQuerySize)
	g.appliedQuery = g.widgetQuerySize.Value
	panel.AddButton("Fit view", func() { g.fit() })
	panel.EndSection()

	panel.AddSection("Path")
	g.widgetSpeed = panel.AddSlider("Agent speed", 0.5, 10, g.steer.MaxSpeed)
	panel.AddButton("Walk again", func() {
		if path := g.editor.Path(); path != nil {
			g.agent = behavior.NewAgent(path)
		}
	})
	panel.AddButton("Clear path", func() {
		g.start = nil
		g.agent = nil
		g.editor.ClearPath()
	})
	panel.EndSection()
	g.panel = panel

	g.cam.Fit(ed.Mesh().Bounds(), w, h, 40)
	return g
}

func (g *Game) fit() {
	g.cam.Fit(g.editor.Mesh().Bounds(), float64(g.cfg.Viewer.Width), float64(g.cfg.Viewer.Height), 40)
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.lastUpdateDuration = time.Since(start)
		g.updateAvg = g.updateAvg*0.95 + float64(g.lastUpdateDuration.Microseconds())/1000.0*0.05
	}()

	g.panel.Update()
	if g.widgetQuerySize.Value != g.appliedQuery && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.applyQuerySize(g.widgetQuerySize.Value)
	}

	g.handleKeys()
	g.handleMouse()

	if g.agent != nil {
		g.steer.MaxSpeed = g.widgetSpeed.Value
		g.agent.Update(g.steer)
	}
	return nil
}

func (g *Game) applyQuerySize(size float64) {
	g.appliedQuery = size
	g.cfg.Mesh.PointQuerySize = size
	opts, err := g.cfg.MeshOptions(g.log)
	if err == nil {
		err = g.editor.Rebuild(opts...)
	}
	if err != nil {
		g.fail("rebuild", err)
		return
	}
	g.log.Info("mesh rebuilt", zap.Float64("pointQuerySize", size), zap.Int("cells", len(g.editor.Mesh().Cells())))
}

func (g *Game) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		if err := g.editor.ClosePolygon(); err != nil {
			g.fail("close polygon", err)
		}
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyZ):
		if _, err := g.editor.Undo(); err != nil {
			g.fail("undo", err)
		}
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyY):
		if _, err := g.editor.Redo(); err != nil {
			g.fail("redo", err)
		}
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		g.fit()
	}
}

func (g *Game) save() {
	if g.meshPath == "" {
		g.status = "no mesh file given, nothing saved"
		return
	}
	if err := meshfile.Save(g.meshPath, g.editor.Polygons()); err != nil {
		g.fail("save", err)
		return
	}
	g.status = "saved " + g.meshPath
	g.log.Info("mesh saved", zap.String("file", g.meshPath), zap.Int("polygons", len(g.editor.Polygons())))
}

func (g *Game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	cursor := geometry.Vector2D{X: float64(mx), Y: float64(my)}
	world := g.cam.ToWorld(cursor)
	overPanel := g.panel.Contains(mx, my)

	// right drag pans, the wheel zooms around the cursor
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && !overPanel {
		g.panning = true
	}
	if g.panning {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
			g.panning = false
		} else {
			g.cam.Pan(float64(mx-g.lastX), float64(my-g.lastY))
		}
	}
	g.lastX, g.lastY = mx, my
	if _, dy := ebiten.Wheel(); dy != 0 && !overPanel {
		factor := zoomStep
		if dy < 0 {
			factor = 1 / zoomStep
		}
		g.cam.ZoomAt(cursor, factor)
	}

	if g.dragging != nil {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			g.dragging = nil
			return
		}
		// alt releases the snap from the segment to the whole line
		clamp := !ebiten.IsKeyPressed(ebiten.KeyAlt)
		if _, _, err := g.editor.MovePoints(g.dragging, world, clamp); err != nil {
			g.fail("move", err)
		}
		return
	}

	if overPanel || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyShift):
		g.pickPathEnd(world)
	default:
		if refs := g.editor.BeginMove(world); len(refs) > 0 {
			g.dragging = refs
			return
		}
		g.editor.AddPoint(world)
	}
}

func (g *Game) pickPathEnd(p geometry.Vector2D) {
	if g.start == nil {
		g.start = &p
		g.status = "start set, shift+click the goal"
		return
	}
	from := *g.start
	g.start = nil

	t0 := time.Now()
	path := g.editor.SetPath(from, p)
	elapsed := time.Since(t0)
	if path == nil {
		g.status = fmt.Sprintf("no path from %v to %v", from, p)
	} else {
		g.status = fmt.Sprintf("path of %d points in %v", len(path), elapsed)
		g.agent = behavior.NewAgent(path)
	}
	g.log.Debug("path query",
		zap.Stringer("from", from),
		zap.Stringer("to", p),
		zap.Int("points", len(path)),
		zap.Duration("elapsed", elapsed))
}

func (g *Game) fail(op string, err error) {
	g.status = op + ": " + err.Error()
	g.log.Warn("editor operation failed", zap.String("op", op), zap.Error(err))
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.lastDrawDuration = time.Since(start)
		g.drawAvg = g.drawAvg*0.95 + float64(g.lastDrawDuration.Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.RGBA{R: 20, G: 22, B: 28, A: 255})
	g.drawCells(screen)
	if g.widgetPortals.Value {
		for _, portal := range g.editor.Mesh().Portals() {
			g.line(screen, portal.P1, portal.P2, 2, portalColor)
		}
	}
	g.drawDraft(screen)
	g.drawPath(screen)

	g.panel.Draw(screen)

	w, h := g.cfg.Viewer.Width, g.cfg.Viewer.Height
	ebitenutil.DebugPrintAt(screen, g.status, int(panelWidth)+20, h-20)
	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\n\nCells:   %d\nPortals: %d",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		len(g.editor.Mesh().Cells()),
		g.editor.Mesh().PortalCount())
	ebitenutil.DebugPrintAt(screen, msg, w-150, 10)
}

// drawCells fills every cell as a triangle fan, then strokes its outline.
func (g *Game) drawCells(screen *ebiten.Image) {
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	for _, cell := range g.editor.Mesh().Cells() {
		pts := cell.Points()
		clr := cellColors[cell.ID%len(cellColors)]
		r, gr, b := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255

		vertices := make([]ebiten.Vertex, len(pts))
		for i, p := range pts {
			s := g.cam.ToScreen(p)
			vertices[i] = ebiten.Vertex{
				DstX: float32(s.X), DstY: float32(s.Y),
				SrcX: 1, SrcY: 1,
				ColorR: r, ColorG: gr, ColorB: b, ColorA: 1,
			}
		}
		indices := make([]uint16, 0, 3*(len(pts)-2))
		for i := 1; i+1 < len(pts); i++ {
			indices = append(indices, 0, uint16(i), uint16(i+1))
		}
		screen.DrawTriangles(vertices, indices, whiteImage, op)

		for _, e := range cell.Edges() {
			g.line(screen, e.P1, e.P2, 1, outlineColor)
		}
		if g.widgetCentroids.Value {
			c := g.cam.ToScreen(cell.Centroid())
			vector.FillCircle(screen, float32(c.X), float32(c.Y), 2, centroidClr, true)
		}
	}
}

func (g *Game) drawDraft(screen *ebiten.Image) {
	draft := g.editor.NewPoly()
	for i := 1; i < len(draft); i++ {
		g.line(screen, draft[i-1], draft[i], 1, draftColor)
	}
	for _, p := range draft {
		s := g.cam.ToScreen(p)
		vector.StrokeRect(screen, float32(s.X-3), float32(s.Y-3), 6, 6, 1, draftColor, true)
	}
}

func (g *Game) drawPath(screen *ebiten.Image) {
	path := g.editor.Path()
	for i := 1; i < len(path); i++ {
		g.line(screen, path[i-1], path[i], 2, pathColor)
	}
	for _, p := range path {
		s := g.cam.ToScreen(p)
		vector.FillCircle(screen, float32(s.X), float32(s.Y), 3, pathColor, true)
	}
	if g.start != nil {
		s := g.cam.ToScreen(*g.start)
		vector.StrokeCircle(screen, float32(s.X), float32(s.Y), 6, 2, pathColor, true)
	}
	if g.agent != nil {
		s := g.cam.ToScreen(g.agent.Position)
		vector.FillCircle(screen, float32(s.X), float32(s.Y), 5, agentColor, true)
	}
}

func (g *Game) line(screen *ebiten.Image, a, b geometry.Vector2D, width float32, clr color.Color) {
	sa, sb := g.cam.ToScreen(a), g.cam.ToScreen(b)
	vector.StrokeLine(screen, float32(sa.X), float32(sa.Y), float32(sb.X), float32(sb.Y), width, clr, true)
}

func (g *Game) Layout(w, h int) (int, int) { return g.cfg.Viewer.Width, g.cfg.Viewer.Height }
