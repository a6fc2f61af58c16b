// Package pathservice serves path queries over a NavMesh from a goakt actor,
// so transports share one mesh owner and queries are answered one at a time.
package pathservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

const DefaultTimeout = 2 * time.Second

type Options struct {
	// Name of the actor system, "NavMesh" when empty.
	Name string
	// Timeout bounds each query, DefaultTimeout when zero.
	Timeout time.Duration
	Logger  *zap.Logger
	// ActorLogs routes the actor system's own log lines to stdout instead of discarding them.
	ActorLogs bool
}

type Service struct {
	system  actor.ActorSystem
	pid     *actor.PID
	timeout time.Duration
	log     *zap.Logger
}

// Start boots an actor system and spawns the PathActor owning mesh.
func Start(ctx context.Context, mesh *navmesh.NavMesh, opts Options) (*Service, error) {
	if mesh == nil {
		return nil, errors.New("pathservice: nil mesh")
	}
	if opts.Name == "" {
		opts.Name = "NavMesh"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	var systemLogger golog.Logger = golog.DiscardLogger
	if opts.ActorLogs {
		systemLogger = golog.DefaultLogger
	}

	system, err := actor.NewActorSystem(opts.Name,
		actor.WithLogger(systemLogger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}
	pid, err := system.Spawn(ctx, "paths", NewPathActor(mesh, opts.Logger))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn path actor: %w", err)
	}

	opts.Logger.Info("path service started", zap.String("system", opts.Name), zap.Duration("timeout", opts.Timeout))
	return &Service{system: system, pid: pid, timeout: opts.Timeout, log: opts.Logger}, nil
}

// FindPath asks the actor for the path between two points given in any shape
// accepted by geometry.ParsePoint. A nil path with a nil error means no path.
func (s *Service) FindPath(ctx context.Context, from, to any) ([]geometry.Vector2D, error) {
	r, err := s.Query(ctx, "", from, to)
	if err != nil {
		return nil, err
	}
	return r.Path, nil
}

// Query is FindPath keeping the whole reply. An empty id gets a generated one.
func (s *Service) Query(ctx context.Context, id string, from, to any) (Reply, error) {
	a, err := geometry.ParsePoint(from)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: from: %v", ErrBadQuery, err)
	}
	b, err := geometry.ParsePoint(to)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: to: %v", ErrBadQuery, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	return s.Ask(ctx, Query{ID: id, From: a, To: b}.ToProto())
}

// Ask forwards a raw query envelope and decodes the reply. Error replies become ErrBadQuery.
func (s *Service) Ask(ctx context.Context, msg *structpb.Struct) (Reply, error) {
	resp, err := actor.Ask(ctx, s.pid, msg, s.timeout)
	if err != nil {
		return Reply{}, fmt.Errorf("path query failed: %w", err)
	}
	st, ok := resp.(*structpb.Struct)
	if !ok {
		return Reply{}, fmt.Errorf("path query failed: unexpected reply %T", resp)
	}
	r, err := ReplyFromProto(st)
	if err != nil {
		return r, err
	}
	if r.Error != "" {
		return r, fmt.Errorf("%w: %s", ErrBadQuery, r.Error)
	}
	return r, nil
}

func (s *Service) Stop(ctx context.Context) error {
	s.log.Info("stopping path service")
	return s.system.Stop(ctx)
}
