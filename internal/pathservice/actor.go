package pathservice

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/navmesh"
)

// PathActor owns a NavMesh and answers path queries sent with actor.Ask.
type PathActor struct {
	mesh *navmesh.NavMesh
	log  *zap.Logger

	// --- Benchmark Stats ---
	servedCount   int
	notFoundCount int
	badCount      int
	lastLogTime   time.Time
}

func NewPathActor(mesh *navmesh.NavMesh, log *zap.Logger) *PathActor {
	if log == nil {
		log = zap.NewNop()
	}
	return &PathActor{
		mesh:        mesh,
		log:         log,
		lastLogTime: time.Now(),
	}
}

func (a *PathActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("Path actor starting...")
	return nil
}

func (a *PathActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("Path actor ready: %d cells, %d portals",
			len(a.mesh.Cells()), a.mesh.PortalCount())
	case *structpb.Struct:
		ctx.Response(a.answer(msg).ToProto())
		a.logBenchmarks()
	default:
		ctx.Unhandled()
	}
}

func (a *PathActor) PostStop(ctx *actor.Context) error {
	a.log.Info("path actor stopped",
		zap.Int("served", a.servedCount),
		zap.Int("notFound", a.notFoundCount),
		zap.Int("bad", a.badCount))
	return nil
}

// answer runs one query. It never fails: unreadable queries get an error reply.
func (a *PathActor) answer(msg *structpb.Struct) Reply {
	q, err := QueryFromProto(msg)
	if err != nil {
		a.badCount++
		return Reply{ID: q.ID, Error: err.Error()}
	}
	path := a.mesh.FindPath(q.From, q.To)
	if path == nil {
		a.notFoundCount++
	} else {
		a.servedCount++
	}
	return Reply{ID: q.ID, Found: path != nil, Path: path}
}

func (a *PathActor) logBenchmarks() {
	if time.Since(a.lastLogTime) >= time.Second {
		a.log.Info("path query rate",
			zap.Int("served", a.servedCount),
			zap.Int("notFound", a.notFoundCount),
			zap.Int("bad", a.badCount),
			zap.Duration("window", time.Since(a.lastLogTime)))
		a.servedCount = 0
		a.notFoundCount = 0
		a.badCount = 0
		a.lastLogTime = time.Now()
	}
}
