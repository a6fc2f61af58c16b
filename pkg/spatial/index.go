// Package spatial indexes axis-aligned rectangles for range queries.
package spatial

import (
	"github.com/tidwall/rtree"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

// Index maps rectangles to payloads. The zero value is an empty index ready to use.
// An Index is not safe for concurrent writes; concurrent Search calls on an index
// that is no longer modified are fine.
type Index[T any] struct {
	tree rtree.RTreeGN[float64, T]
}

// Insert stores item under the rectangle b.
func (ix *Index[T]) Insert(b geometry.Bounds, item T) {
	lo, hi := corners(b)
	ix.tree.Insert(lo, hi, item)
}

// Len returns the number of stored entries.
func (ix *Index[T]) Len() int {
	return ix.tree.Len()
}

// Search calls fn for every entry whose rectangle intersects b, until fn returns false.
// Rectangles that merely share a border intersect.
func (ix *Index[T]) Search(b geometry.Bounds, fn func(item T) bool) {
	lo, hi := corners(b)
	ix.tree.Search(lo, hi, func(_, _ [2]float64, item T) bool {
		return fn(item)
	})
}

// Query returns every entry whose rectangle intersects b.
func (ix *Index[T]) Query(b geometry.Bounds) []T {
	var items []T
	ix.Search(b, func(item T) bool {
		items = append(items, item)
		return true
	})
	return items
}

// Bounds returns the rectangle covering every entry, or the zero Bounds when empty.
func (ix *Index[T]) Bounds() geometry.Bounds {
	if ix.tree.Len() == 0 {
		return geometry.Bounds{}
	}
	lo, hi := ix.tree.Bounds()
	return geometry.Bounds{MinX: lo[0], MinY: lo[1], MaxX: hi[0], MaxY: hi[1]}
}

func corners(b geometry.Bounds) (lo, hi [2]float64) {
	return [2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY}
}
