package pathservice

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

func v(x, y float64) geometry.Vector2D { return geometry.Vector2D{X: x, Y: y} }

func testMesh(t *testing.T) *navmesh.NavMesh {
	t.Helper()
	m, err := navmesh.New([][]geometry.Vector2D{
		{v(0, 0), v(0, 12), v(12, 0)},
		{v(12, 8), v(12, 4), v(16, 6)},
		{v(12, 0), v(6, 6), v(12, 6)},
		{v(100, 100), v(110, 100), v(100, 110)},
	})
	if err != nil {
		t.Fatalf("navmesh.New() unexpected error: %v", err)
	}
	return m
}

func TestQueryRoundTrip(t *testing.T) {
	q := Query{ID: "q-1", From: v(1, 2), To: v(3.5, -4)}
	got, err := QueryFromProto(q.ToProto())
	if err != nil {
		t.Fatalf("QueryFromProto() unexpected error: %v", err)
	}
	if got != q {
		t.Errorf("QueryFromProto(ToProto(%v)) = %v", q, got)
	}
}

func TestQueryFromProto_FlexiblePoints(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"id":   "flex",
		"from": map[string]any{"x": 1.0, "y": 1.0},
		"to":   []any{14.0, 6.0},
	})
	if err != nil {
		t.Fatal(err)
	}
	q, err := QueryFromProto(s)
	if err != nil {
		t.Fatalf("QueryFromProto() unexpected error: %v", err)
	}
	if q.From != v(1, 1) || q.To != v(14, 6) || q.ID != "flex" {
		t.Errorf("QueryFromProto() = %+v; want flex (1,1) -> (14,6)", q)
	}
}

func TestQueryFromProto_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
	}{
		{"missing to", map[string]any{"id": "a", "from": []any{1.0, 1.0}}},
		{"string point", map[string]any{"from": "1,1", "to": []any{1.0, 1.0}}},
		{"three coordinates", map[string]any{"from": []any{1.0, 1.0, 1.0}, "to": []any{1.0, 1.0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := structpb.NewStruct(tt.fields)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := QueryFromProto(s); !errors.Is(err, ErrBadQuery) {
				t.Errorf("QueryFromProto(%v) error = %v; want ErrBadQuery", tt.fields, err)
			}
		})
	}
	if _, err := QueryFromProto(nil); !errors.Is(err, ErrBadQuery) {
		t.Errorf("QueryFromProto(nil) error = %v; want ErrBadQuery", err)
	}
}

func TestReplyRoundTrip(t *testing.T) {
	tests := []Reply{
		{ID: "found", Found: true, Path: []geometry.Vector2D{v(1, 1), v(10, 10), v(11, 19)}},
		{ID: "none", Found: false},
		{ID: "bad", Error: "bad path query: from: malformed point"},
	}
	for _, want := range tests {
		got, err := ReplyFromProto(want.ToProto())
		if err != nil {
			t.Fatalf("ReplyFromProto() unexpected error: %v", err)
		}
		if got.ID != want.ID || got.Found != want.Found || got.Error != want.Error || len(got.Path) != len(want.Path) {
			t.Errorf("ReplyFromProto(ToProto(%+v)) = %+v", want, got)
			continue
		}
		for i := range want.Path {
			if got.Path[i] != want.Path[i] {
				t.Errorf("ReplyFromProto(ToProto(%+v)).Path[%d] = %v", want, i, got.Path[i])
			}
		}
	}
}

func TestPathActor_Answer(t *testing.T) {
	a := NewPathActor(testMesh(t), nil)

	r := a.answer(Query{ID: "ok", From: v(1, 1), To: v(14, 6)}.ToProto())
	if !r.Found || len(r.Path) != 2 || r.ID != "ok" {
		t.Errorf("answer(ok) = %+v; want a two point path", r)
	}
	r = a.answer(Query{ID: "island", From: v(1, 1), To: v(105, 105)}.ToProto())
	if r.Found || r.Path != nil || r.Error != "" {
		t.Errorf("answer(island) = %+v; want not found without error", r)
	}
	r = a.answer(&structpb.Struct{})
	if r.Error == "" {
		t.Errorf("answer(empty) = %+v; want an error reply", r)
	}
	if a.servedCount != 1 || a.notFoundCount != 1 || a.badCount != 1 {
		t.Errorf("counters = %d served, %d not found, %d bad; want 1 each", a.servedCount, a.notFoundCount, a.badCount)
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	svc, err := Start(ctx, testMesh(t), Options{Name: "NavMeshTest"})
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}
	defer func() {
		if err := svc.Stop(ctx); err != nil {
			t.Errorf("Stop() unexpected error: %v", err)
		}
	}()

	path, err := svc.FindPath(ctx, []float64{1, 1}, map[string]any{"x": 14.0, "y": 6.0})
	if err != nil {
		t.Fatalf("FindPath() unexpected error: %v", err)
	}
	if len(path) != 2 || !path[0].Eq(v(1, 1)) || !path[1].Eq(v(14, 6)) {
		t.Errorf("FindPath() = %v; want [(1,1) (14,6)]", path)
	}

	path, err = svc.FindPath(ctx, v(1, 1), v(105, 105))
	if err != nil || path != nil {
		t.Errorf("FindPath() to a disconnected cell = %v, %v; want nil, nil", path, err)
	}

	if _, err := svc.FindPath(ctx, "nowhere", v(1, 1)); !errors.Is(err, ErrBadQuery) {
		t.Errorf("FindPath() with a string point error = %v; want ErrBadQuery", err)
	}

	r, err := svc.Query(ctx, "", v(1, 1), v(3, 3))
	if err != nil {
		t.Fatalf("Query() unexpected error: %v", err)
	}
	if r.ID == "" || !r.Found {
		t.Errorf("Query() = %+v; want a generated id and a path", r)
	}

	raw, _ := structpb.NewStruct(map[string]any{"id": "raw", "from": []any{1.0}})
	if r, err := svc.Ask(ctx, raw); !errors.Is(err, ErrBadQuery) || r.ID != "raw" {
		t.Errorf("Ask(malformed) = %+v, %v; want reply raw with ErrBadQuery", r, err)
	}
}

func TestStart_NilMesh(t *testing.T) {
	if _, err := Start(context.Background(), nil, Options{}); err == nil {
		t.Error("Start() with a nil mesh succeeded; want an error")
	}
}
