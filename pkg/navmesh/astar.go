package navmesh

import (
	"container/heap"
	"math"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

// FindPath returns the shortest path from one point to another, both ends included.
// It returns nil when either point lies outside the mesh or when no cell
// sequence connects them.
func (m *NavMesh) FindPath(from, to geometry.Vector2D) []geometry.Vector2D {
	start, ok := m.LocateCell(from)
	if !ok {
		return nil
	}
	goal, ok := m.LocateCell(to)
	if !ok {
		return nil
	}
	cells := m.CellPath(start, goal)
	if cells == nil {
		return nil
	}
	return m.funnel(from, to, cells)
}

// FindPathAny is FindPath for points in any shape accepted by geometry.ParsePoint.
// The error is only set for malformed points; a missing path is a nil slice.
func (m *NavMesh) FindPathAny(from, to any) ([]geometry.Vector2D, error) {
	a, err := geometry.ParsePoint(from)
	if err != nil {
		return nil, err
	}
	b, err := geometry.ParsePoint(to)
	if err != nil {
		return nil, err
	}
	return m.FindPath(a, b), nil
}

// CellPath runs A* over the cell graph and returns the IDs of the cells crossed,
// start and goal included, or nil when goal cannot be reached.
// Both cells must belong to m; nil cells and cells of another mesh yield nil.
func (m *NavMesh) CellPath(start, goal *Cell) []int {
	if !m.owns(start) || !m.owns(goal) {
		return nil
	}
	if start.ID == goal.ID {
		return []int{start.ID}
	}

	best := make([]float64, len(m.cells))
	cameFrom := make([]int, len(m.cells))
	for i := range best {
		best[i] = math.Inf(1)
		cameFrom[i] = -1
	}
	best[start.ID] = 0

	open := &frontier{}
	seq := 0
	heap.Push(open, frontierItem{cell: start.ID, priority: 0, cost: 0, seq: seq})

	for open.Len() > 0 {
		current := heap.Pop(open).(frontierItem)
		if current.cell == goal.ID {
			return reconstruct(cameFrom, start.ID, goal.ID)
		}
		if current.cost > best[current.cell] {
			continue // superseded by a cheaper entry
		}

		from := m.cells[current.cell]
		for _, link := range m.links[current.cell] {
			to := m.cells[link.To]
			cost := current.cost + m.cost(from, to, link.Portal)
			if cost >= best[link.To] {
				continue
			}
			best[link.To] = cost
			cameFrom[link.To] = current.cell

			estimate := 0.0
			if link.To != goal.ID {
				estimate = m.heuristic(to, goal)
			}
			seq++
			heap.Push(open, frontierItem{cell: link.To, priority: cost + estimate, cost: cost, seq: seq})
		}
	}
	return nil
}

func reconstruct(cameFrom []int, start, goal int) []int {
	path := []int{goal}
	for cur := goal; cur != start; {
		cur = cameFrom[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// ---------------------------------------------------------------------
// Priority queue
// ---------------------------------------------------------------------

type frontierItem struct {
	cell     int
	priority float64
	cost     float64
	seq      int // insertion order, breaks priority ties
}

type frontier []frontierItem

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].priority != f[j].priority {
		return f[i].priority < f[j].priority
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) {
	*f = append(*f, x.(frontierItem))
}

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

func (m *NavMesh) owns(c *Cell) bool {
	return c != nil && c.ID >= 0 && c.ID < len(m.cells) && m.cells[c.ID] == c
}
