// Package editor is the authoring model behind the mesh viewer: polygons being
// drawn and moved, the last computed path, and an undo history of snapshots.
// Every change that touches geometry rebuilds the NavMesh from scratch.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

const (
	// SnapRadius is how close a moved vertex must come to another polygon's edge to snap on it.
	SnapRadius = 10.0
	// PickRadius is the half side of the box used to grab vertices.
	PickRadius = 4.0
)

var ErrIncompletePolygon = errors.New("a polygon needs at least 3 points")

// State is everything undo and redo restore.
type State struct {
	Polygons [][]geometry.Vector2D `json:"polygons"`
	NewPoly  []geometry.Vector2D   `json:"newPoly"`
	Path     []geometry.Vector2D   `json:"path"`
}

// VertexRef designates the Index-th point of polygon Polygon.
type VertexRef struct {
	Polygon int
	Index   int
}

type Editor struct {
	state   State
	history [][]byte
	future  [][]byte

	mesh *navmesh.NavMesh
	opts []navmesh.Option
}

// New starts an editor on polygons. The mesh options are reused by every rebuild.
func New(polygons [][]geometry.Vector2D, opts ...navmesh.Option) (*Editor, error) {
	e := &Editor{
		state: State{Polygons: clonePolygons(polygons)},
		opts:  opts,
	}
	if err := e.rebuild(); err != nil {
		return nil, err
	}
	return e, nil
}

// State returns a copy of the current state.
func (e *Editor) State() State {
	return State{
		Polygons: clonePolygons(e.state.Polygons),
		NewPoly:  clonePoints(e.state.NewPoly),
		Path:     clonePoints(e.state.Path),
	}
}

func (e *Editor) Polygons() [][]geometry.Vector2D { return clonePolygons(e.state.Polygons) }
func (e *Editor) NewPoly() []geometry.Vector2D    { return clonePoints(e.state.NewPoly) }
func (e *Editor) Path() []geometry.Vector2D       { return clonePoints(e.state.Path) }

// Mesh returns the mesh built from the current polygons.
func (e *Editor) Mesh() *navmesh.NavMesh { return e.mesh }

func (e *Editor) CanUndo() bool { return len(e.history) > 0 }
func (e *Editor) CanRedo() bool { return len(e.future) > 0 }

// Rebuild replaces the mesh options and rebuilds the mesh.
func (e *Editor) Rebuild(opts ...navmesh.Option) error {
	previous := e.opts
	e.opts = opts
	if err := e.rebuild(); err != nil {
		e.opts = previous
		return err
	}
	return nil
}

// Load replaces every polygon and clears the drawing and the path. It can be undone.
func (e *Editor) Load(polygons [][]geometry.Vector2D) error {
	e.checkpoint()
	e.state = State{Polygons: clonePolygons(polygons)}
	return e.rebuildOrRollback()
}

// AddPoint appends a point to the polygon being drawn.
func (e *Editor) AddPoint(p geometry.Vector2D) {
	e.checkpoint()
	e.state.NewPoly = append(e.state.NewPoly, p)
}

// ClosePolygon turns the polygon being drawn into a mesh polygon.
func (e *Editor) ClosePolygon() error {
	if len(e.state.NewPoly) < 3 {
		return ErrIncompletePolygon
	}
	e.checkpoint()
	e.state.Polygons = append(e.state.Polygons, e.state.NewPoly)
	e.state.NewPoly = nil
	return e.rebuildOrRollback()
}

// FindOverlapping returns every vertex within radius of p along both axes.
func (e *Editor) FindOverlapping(p geometry.Vector2D, radius float64) []VertexRef {
	var refs []VertexRef
	for i, poly := range e.state.Polygons {
		for j, pt := range poly {
			if math.Abs(pt.X-p.X) < radius && math.Abs(pt.Y-p.Y) < radius {
				refs = append(refs, VertexRef{Polygon: i, Index: j})
			}
		}
	}
	return refs
}

// BeginMove grabs the vertices under p and records one undo step for the whole drag.
func (e *Editor) BeginMove(p geometry.Vector2D) []VertexRef {
	refs := e.FindOverlapping(p, PickRadius)
	if len(refs) > 0 {
		e.checkpoint()
	}
	return refs
}

// MovePoints moves the vertices in refs to p, without adding undo steps.
// Near the edge of a polygon that is not being moved the point snaps onto it:
// onto the segment, or onto its whole line when clampToSegment is false.
// It returns where the vertices landed and the edge snapped to, if any.
// When the moved polygons no longer build a mesh the vertices are put back and the error is returned.
func (e *Editor) MovePoints(refs []VertexRef, p geometry.Vector2D, clampToSegment bool) (geometry.Vector2D, *geometry.Edge, error) {
	moving := make(map[int]bool, len(refs))
	for _, r := range refs {
		if r.Polygon < 0 || r.Polygon >= len(e.state.Polygons) ||
			r.Index < 0 || r.Index >= len(e.state.Polygons[r.Polygon]) {
			return p, nil, fmt.Errorf("vertex %d of polygon %d does not exist", r.Index, r.Polygon)
		}
		moving[r.Polygon] = true
	}

	target, snapped := e.snap(p, moving, clampToSegment)
	previous := make([]geometry.Vector2D, len(refs))
	for i, r := range refs {
		previous[i] = e.state.Polygons[r.Polygon][r.Index]
		e.state.Polygons[r.Polygon][r.Index] = target
	}
	if err := e.rebuild(); err != nil {
		// the vertices stay where the last valid mesh had them
		for i := len(refs) - 1; i >= 0; i-- {
			e.state.Polygons[refs[i].Polygon][refs[i].Index] = previous[i]
		}
		if len(previous) == 0 {
			return p, nil, err
		}
		return previous[0], nil, err
	}
	return target, snapped, nil
}

func (e *Editor) snap(p geometry.Vector2D, skip map[int]bool, clampToSegment bool) (geometry.Vector2D, *geometry.Edge) {
	for i, poly := range e.state.Polygons {
		if skip[i] {
			continue
		}
		for j := range poly {
			edge := geometry.NewEdge(poly[j], poly[(j+1)%len(poly)])
			if edge.LineDistance(p) >= SnapRadius {
				continue
			}
			closest, t := edge.ClosestPoint(p)
			if clampToSegment && (t < 0 || t > 1) {
				continue
			}
			return closest, &edge
		}
	}
	return p, nil
}

// SetPath computes the path between two points on the current mesh and records it.
// A nil result means no path.
func (e *Editor) SetPath(from, to geometry.Vector2D) []geometry.Vector2D {
	e.checkpoint()
	e.state.Path = e.mesh.FindPath(from, to)
	return clonePoints(e.state.Path)
}

func (e *Editor) ClearPath() {
	e.checkpoint()
	e.state.Path = nil
}

// Undo restores the state before the last change. It reports false when there is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	if len(e.history) == 0 {
		return false, nil
	}
	prev := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.future = append([][]byte{e.snapshot()}, e.future...)
	return true, e.restore(prev)
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() (bool, error) {
	if len(e.future) == 0 {
		return false, nil
	}
	next := e.future[0]
	e.future = e.future[1:]
	e.history = append(e.history, e.snapshot())
	return true, e.restore(next)
}

// checkpoint records the current state before a change. A new change drops the redo stack.
func (e *Editor) checkpoint() {
	e.future = nil
	e.history = append(e.history, e.snapshot())
}

func (e *Editor) snapshot() []byte {
	b, err := json.Marshal(e.state)
	if err != nil {
		// State only holds finite floats
		panic(fmt.Sprintf("editor: snapshot failed: %v", err))
	}
	return b
}

func (e *Editor) restore(b []byte) error {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("editor: corrupt snapshot: %w", err)
	}
	e.state = s
	return e.rebuild()
}

// rebuildOrRollback rebuilds the mesh and drops the change just checkpointed when that fails.
func (e *Editor) rebuildOrRollback() error {
	if err := e.rebuild(); err != nil {
		last := e.history[len(e.history)-1]
		e.history = e.history[:len(e.history)-1]
		if rerr := e.restore(last); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}

func (e *Editor) rebuild() error {
	m, err := navmesh.New(e.state.Polygons, e.opts...)
	if err != nil {
		return err
	}
	e.mesh = m
	return nil
}

func clonePoints(pts []geometry.Vector2D) []geometry.Vector2D {
	if pts == nil {
		return nil
	}
	return append([]geometry.Vector2D(nil), pts...)
}

func clonePolygons(polygons [][]geometry.Vector2D) [][]geometry.Vector2D {
	out := make([][]geometry.Vector2D, len(polygons))
	for i, p := range polygons {
		out[i] = clonePoints(p)
	}
	return out
}
