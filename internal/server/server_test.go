package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/pathservice"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

func v(x, y float64) geometry.Vector2D { return geometry.Vector2D{X: x, Y: y} }

// meshFinder answers queries straight from a mesh, without the actor system.
type meshFinder struct {
	mesh *navmesh.NavMesh
}

func (f meshFinder) Query(_ context.Context, id string, from, to any) (pathservice.Reply, error) {
	path, err := f.mesh.FindPathAny(from, to)
	if err != nil {
		return pathservice.Reply{}, err
	}
	return pathservice.Reply{ID: id, Found: path != nil, Path: path}, nil
}

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

func startServer(t *testing.T, cfg config.ServerConfig) (*Server, *httptest.Server) {
	t.Helper()
	m := testMesh(t)
	s := New(meshFinder{mesh: m}, m, cfg, nil)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("websocket.Dial() unexpected error: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, req any) Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, conn, req); err != nil {
		t.Fatalf("wsjson.Write() unexpected error: %v", err)
	}
	var resp Response
	if err := wsjson.Read(ctx, conn, &resp); err != nil {
		t.Fatalf("wsjson.Read() unexpected error: %v", err)
	}
	return resp
}

func TestWebsocketQueries(t *testing.T) {
	_, ts := startServer(t, config.DefaultConfig().Server)
	conn := dial(t, ts)

	tests := []struct {
		name     string
		req      any
		wantPath []geometry.Vector2D
		wantErr  bool
	}{
		{"pairs", Request{ID: "1", From: []float64{1, 1}, To: []float64{14, 6}}, []geometry.Vector2D{v(1, 1), v(14, 6)}, false},
		{"records", map[string]any{"id": "2", "from": map[string]float64{"x": 2, "y": 1}, "to": map[string]float64{"x": 8, "y": 5}},
			[]geometry.Vector2D{v(2, 1), v(8, 5)}, false},
		{"no path", Request{ID: "3", From: []float64{1, 1}, To: []float64{105, 105}}, nil, false},
		{"bad point", Request{ID: "4", From: "here", To: []float64{1, 1}}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := roundTrip(t, conn, tt.req)
			if (resp.Error != "") != tt.wantErr {
				t.Fatalf("response error = %q; wantErr %v", resp.Error, tt.wantErr)
			}
			if len(resp.Path) != len(tt.wantPath) {
				t.Fatalf("response path = %v; want %v", resp.Path, tt.wantPath)
			}
			for i := range tt.wantPath {
				if !resp.Path[i].Eq(tt.wantPath[i]) {
					t.Errorf("response path = %v; want %v", resp.Path, tt.wantPath)
				}
			}
		})
	}
}

func TestWebsocketInvalidJSON(t *testing.T) {
	_, ts := startServer(t, config.DefaultConfig().Server)
	conn := dial(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"id": `)); err != nil {
		t.Fatal(err)
	}
	var resp Response
	if err := wsjson.Read(ctx, conn, &resp); err != nil {
		t.Fatalf("wsjson.Read() unexpected error: %v", err)
	}
	if resp.Error == "" {
		t.Errorf("response to invalid JSON = %+v; want an error", resp)
	}
	// the connection stays usable
	if resp := roundTrip(t, conn, Request{ID: "after", From: []float64{1, 1}, To: []float64{3, 3}}); resp.Error != "" || len(resp.Path) != 2 {
		t.Errorf("query after invalid JSON = %+v; want a path", resp)
	}
}

func TestWebsocketRateLimit(t *testing.T) {
	cfg := config.DefaultConfig().Server
	cfg.RateLimit = 0.001
	cfg.Burst = 2
	_, ts := startServer(t, cfg)
	conn := dial(t, ts)

	req := Request{ID: "r", From: []float64{1, 1}, To: []float64{3, 3}}
	for i := 0; i < cfg.Burst; i++ {
		if resp := roundTrip(t, conn, req); resp.Error != "" {
			t.Fatalf("query %d within the burst got error %q", i, resp.Error)
		}
	}
	resp := roundTrip(t, conn, req)
	if resp.Error != errRateLimited.Error() || resp.ID != "r" {
		t.Errorf("query past the burst = %+v; want %q", resp, errRateLimited)
	}
}

func TestHealthz(t *testing.T) {
	_, ts := startServer(t, config.DefaultConfig().Server)

	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["cells"] != 4.0 {
		t.Errorf("GET /healthz = %v; want status ok and 4 cells", body)
	}
}

func TestMesh(t *testing.T) {
	_, ts := startServer(t, config.DefaultConfig().Server)

	res, err := http.Get(ts.URL + "/mesh")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}
	var view MeshView
	if err := json.NewDecoder(res.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	if len(view.Cells) != 4 || len(view.Portals) != 2 {
		t.Errorf("GET /mesh = %d cells, %d portals; want 4 and 2", len(view.Cells), len(view.Portals))
	}
	if view.Bounds.MaxX != 110 {
		t.Errorf("GET /mesh bounds = %+v; want MaxX 110", view.Bounds)
	}

	res, err = http.Post(ts.URL+"/mesh", "application/json", strings.NewReader("[]"))
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /mesh status = %d; want %d", res.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestClientsTracked(t *testing.T) {
	s, ts := startServer(t, config.DefaultConfig().Server)
	conn := dial(t, ts)
	roundTrip(t, conn, Request{ID: "x", From: []float64{1, 1}, To: []float64{3, 3}})
	if got := s.Clients(); got != 1 {
		t.Errorf("Clients() = %d; want 1", got)
	}
}
