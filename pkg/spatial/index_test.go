package spatial

import (
	"slices"
	"testing"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

func box(minX, minY, maxX, maxY float64) geometry.Bounds {
	return geometry.Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func TestIndex_Query(t *testing.T) {
	var ix Index[int]
	ix.Insert(box(0, 0, 100, 100), 0)     // big square
	ix.Insert(box(150, 50, 250, 150), 1)  // to the right
	ix.Insert(box(50, 150, 150, 250), 2)  // below
	ix.Insert(box(350, 350, 450, 450), 3) // far away

	if got := ix.Len(); got != 4 {
		t.Fatalf("Len() = %d; want 4", got)
	}

	tests := []struct {
		name  string
		query geometry.Bounds
		want  []int
	}{
		{"inside first", box(10, 10, 20, 20), []int{0}},
		{"spanning first and second", box(90, 60, 160, 70), []int{0, 1}},
		{"shared border only", box(100, 100, 100, 100), []int{0}},
		{"everything", box(-1000, -1000, 1000, 1000), []int{0, 1, 2, 3}},
		{"empty area", box(300, 0, 340, 40), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.Query(tt.query)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Query(%+v) = %v; want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIndex_SearchStopsEarly(t *testing.T) {
	var ix Index[string]
	for _, name := range []string{"a", "b", "c"} {
		ix.Insert(box(0, 0, 1, 1), name)
	}
	calls := 0
	ix.Search(box(0, 0, 1, 1), func(string) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("Search visited %d items after returning false; want 1", calls)
	}
}

func TestIndex_Deterministic(t *testing.T) {
	build := func() *Index[int] {
		ix := &Index[int]{}
		for i := 0; i < 200; i++ {
			x := float64(i%20) * 10
			y := float64(i/20) * 10
			ix.Insert(box(x, y, x+10, y+10), i)
		}
		return ix
	}
	a, b := build(), build()
	q := box(35, 35, 75, 75)
	if got, want := a.Query(q), b.Query(q); !slices.Equal(got, want) {
		t.Errorf("Query order differs between identical indexes: %v vs %v", got, want)
	}
}

func TestIndex_Bounds(t *testing.T) {
	var ix Index[int]
	if got := ix.Bounds(); got != (geometry.Bounds{}) {
		t.Errorf("empty Bounds() = %+v; want zero", got)
	}
	ix.Insert(box(-5, 0, 1, 1), 0)
	ix.Insert(box(3, -2, 8, 4), 1)
	if got, want := ix.Bounds(), box(-5, -2, 8, 4); got != want {
		t.Errorf("Bounds() = %+v; want %+v", got, want)
	}
}

func BenchmarkIndex_Query(b *testing.B) {
	var ix Index[int]
	for i := 0; i < 900; i++ {
		x := float64(i%30) * 10
		y := float64(i/30) * 10
		ix.Insert(box(x, y, x+10, y+10), i)
	}
	q := box(149.995, 149.995, 150.005, 150.005)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Query(q)
	}
}
