package navmesh

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/triangulation"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

// ErrInvalidOption is returned by New when an option carries an unusable value.
var ErrInvalidOption = errors.New("invalid navmesh option")

// DefaultPointQuerySize is the side of the square used to locate a point.
const DefaultPointQuerySize = 0.01

// CostFunc returns the non-negative cost of moving from one cell to a neighbour.
// The portal is oriented as seen from the from cell: P1 on the left, P2 on the right.
type CostFunc func(from, to *Cell, portal geometry.Edge) float64

// HeuristicFunc estimates the remaining cost from cell to goal. It must never
// overestimate the true cost for FindPath to return the shortest route.
// It is never called with cell == goal.
type HeuristicFunc func(cell, goal *Cell) float64

// Triangulator splits a simple polygon given as flat coordinates into index triples.
type Triangulator interface {
	Triangulate(coords []float64) ([][3]int, error)
}

// TriangulatorFunc adapts a plain function to the Triangulator interface.
type TriangulatorFunc func(coords []float64) ([][3]int, error)

// Triangulate calls f(coords).
func (f TriangulatorFunc) Triangulate(coords []float64) ([][3]int, error) {
	return f(coords)
}

// CentroidDistanceCost is the default step cost: the distance between both cell centroids.
func CentroidDistanceCost(from, to *Cell, _ geometry.Edge) float64 {
	return from.CentroidDistance(to.Polygon)
}

// UniformCost counts cells: every step costs 1.
func UniformCost(_, _ *Cell, _ geometry.Edge) float64 {
	return 1
}

// CentroidDistanceHeuristic is the default heuristic: straight distance between centroids.
func CentroidDistanceHeuristic(cell, goal *Cell) float64 {
	return cell.CentroidDistance(goal.Polygon)
}

// ZeroHeuristic turns the search into Dijkstra's algorithm.
func ZeroHeuristic(_, _ *Cell) float64 {
	return 0
}

type settings struct {
	triangulate    bool
	triangulator   Triangulator
	pointQuerySize float64
	cost           CostFunc
	heuristic      HeuristicFunc
	logger         *zap.Logger
}

func defaultSettings() settings {
	return settings{
		triangulate:    true,
		triangulator:   TriangulatorFunc(triangulation.Triangulate),
		pointQuerySize: DefaultPointQuerySize,
		cost:           CentroidDistanceCost,
		heuristic:      CentroidDistanceHeuristic,
		logger:         zap.NewNop(),
	}
}

func (s settings) validate() error {
	if !(s.pointQuerySize > 0) {
		return fmt.Errorf("%w: point query size must be positive, got %v", ErrInvalidOption, s.pointQuerySize)
	}
	if s.triangulate && s.triangulator == nil {
		return fmt.Errorf("%w: triangulation enabled without a triangulator", ErrInvalidOption)
	}
	if s.cost == nil || s.heuristic == nil {
		return fmt.Errorf("%w: nil cost or heuristic function", ErrInvalidOption)
	}
	return nil
}

// Option configures New.
type Option func(*settings)

// WithTriangulation turns the decomposition of input polygons into triangles on or off.
// When off, every input polygon becomes a cell and must already be convex.
func WithTriangulation(enabled bool) Option {
	return func(s *settings) { s.triangulate = enabled }
}

// WithTriangulator replaces the default triangulator, an adapter over github.com/osuushi/triangulate.
func WithTriangulator(t Triangulator) Option {
	return func(s *settings) { s.triangulator = t }
}

// WithPointQuerySize sets the side of the box used to locate query points.
// Keep it well below the typical cell size.
func WithPointQuerySize(size float64) Option {
	return func(s *settings) { s.pointQuerySize = size }
}

// WithCostFunc sets the step cost used by the search.
func WithCostFunc(f CostFunc) Option {
	return func(s *settings) { s.cost = f }
}

// WithHeuristicFunc sets the A* heuristic.
func WithHeuristicFunc(f HeuristicFunc) Option {
	return func(s *settings) { s.heuristic = f }
}

// WithLogger sets the logger used while building the mesh.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
