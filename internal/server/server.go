// Package server exposes path queries over websocket and the mesh geometry over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/lao-tseu-is-alive/go-navmesh/internal/config"
	"github.com/lao-tseu-is-alive/go-navmesh/internal/pathservice"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

const writeTimeout = time.Second

var errRateLimited = errors.New("rate limit exceeded")

// PathFinder answers one path query. *pathservice.Service implements it.
type PathFinder interface {
	Query(ctx context.Context, id string, from, to any) (pathservice.Reply, error)
}

// Request is one websocket query. Points are [x, y] pairs or {"x", "y"} records.
type Request struct {
	ID   string `json:"id"`
	From any    `json:"from"`
	To   any    `json:"to"`
}

// Response answers a Request. Path is null when no path exists or the request failed.
type Response struct {
	ID    string              `json:"id"`
	Path  []geometry.Vector2D `json:"path"`
	Error string              `json:"error,omitempty"`
}

// MeshView is the /mesh document.
type MeshView struct {
	Bounds  geometry.Bounds       `json:"bounds"`
	Cells   [][]geometry.Vector2D `json:"cells"`
	Portals []geometry.Edge       `json:"portals"`
}

type Server struct {
	finder PathFinder
	mesh   *navmesh.NavMesh
	cfg    config.ServerConfig
	log    *zap.Logger

	serveMux http.ServeMux

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func New(finder PathFinder, mesh *navmesh.NavMesh, cfg config.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		finder:  finder,
		mesh:    mesh,
		cfg:     cfg,
		log:     log,
		clients: make(map[string]*websocket.Conn),
	}
	s.serveMux.HandleFunc("/ws", s.connectHandler)
	s.serveMux.HandleFunc("/healthz", s.healthHandler)
	s.serveMux.HandleFunc("/mesh", s.meshHandler)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.serveMux.ServeHTTP(w, r)
}

// Clients returns the number of open websocket connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"cells":   len(s.mesh.Cells()),
		"clients": s.Clients(),
	})
}

func (s *Server) meshHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	view := MeshView{
		Bounds:  s.mesh.Bounds(),
		Cells:   make([][]geometry.Vector2D, 0, len(s.mesh.Cells())),
		Portals: s.mesh.Portals(),
	}
	for _, c := range s.mesh.Cells() {
		view.Cells = append(view.Cells, c.Points())
	}
	writeJSON(w, view)
}

// connectHandler accepts a websocket connection and serves its queries until it closes.
func (s *Server) connectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.log.Warn("websocket accept failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	log := s.log.With(zap.String("conn", id))
	s.mu.Lock()
	s.clients[id] = conn
	s.mu.Unlock()
	log.Info("client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		log.Info("client disconnected")
	}()

	err = s.serve(r.Context(), conn, log)
	if errors.Is(err, context.Canceled) ||
		websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		log.Warn("connection closed with error", zap.Error(err))
	}
}

// serve loops over the queries of one connection. Bad or over-limit requests
// get an error response; only transport errors end the loop.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, log *zap.Logger) error {
	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			if err := s.reply(ctx, conn, Response{Error: "invalid request: " + err.Error()}); err != nil {
				return err
			}
			continue
		}
		if !limiter.Allow() {
			log.Debug("query rejected", zap.String("id", req.ID), zap.Error(errRateLimited))
			if err := s.reply(ctx, conn, Response{ID: req.ID, Error: errRateLimited.Error()}); err != nil {
				return err
			}
			continue
		}

		if err := s.reply(ctx, conn, s.query(ctx, req, log)); err != nil {
			return err
		}
	}
}

func (s *Server) query(ctx context.Context, req Request, log *zap.Logger) Response {
	if s.cfg.QueryTimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout())
		defer cancel()
	}
	start := time.Now()
	r, err := s.finder.Query(ctx, req.ID, req.From, req.To)
	if err != nil {
		log.Debug("query failed", zap.String("id", req.ID), zap.Error(err))
		return Response{ID: req.ID, Error: err.Error()}
	}
	log.Debug("query served",
		zap.String("id", r.ID),
		zap.Bool("found", r.Found),
		zap.Int("points", len(r.Path)),
		zap.Duration("elapsed", time.Since(start)))
	return Response{ID: r.ID, Path: r.Path}
}

func (s *Server) reply(ctx context.Context, conn *websocket.Conn, resp Response) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
