package pathservice

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

// ErrBadQuery is returned for query messages that are not {id, from, to} with two readable points.
var ErrBadQuery = errors.New("bad path query")

// Query is a path request as it travels to the PathActor.
type Query struct {
	ID   string
	From geometry.Vector2D
	To   geometry.Vector2D
}

// Reply is the PathActor answer. Error is set when the query could not be read;
// Found is false when both points were read but no path joins them.
type Reply struct {
	ID    string
	Found bool
	Path  []geometry.Vector2D
	Error string
}

// ToProto converts the query into the structpb envelope sent to the actor.
func (q Query) ToProto() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":   structpb.NewStringValue(q.ID),
		"from": pointValue(q.From),
		"to":   pointValue(q.To),
	}}
}

// QueryFromProto reads a query envelope. Points may be [x, y] lists or {x, y} records.
func QueryFromProto(s *structpb.Struct) (Query, error) {
	if s == nil {
		return Query{}, fmt.Errorf("%w: empty message", ErrBadQuery)
	}
	m := s.AsMap()
	var q Query
	if id, ok := m["id"].(string); ok {
		q.ID = id
	}
	var err error
	if q.From, err = geometry.ParsePoint(m["from"]); err != nil {
		return q, fmt.Errorf("%w: from: %v", ErrBadQuery, err)
	}
	if q.To, err = geometry.ParsePoint(m["to"]); err != nil {
		return q, fmt.Errorf("%w: to: %v", ErrBadQuery, err)
	}
	return q, nil
}

// ToProto converts the reply into its structpb envelope.
func (r Reply) ToProto() *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id": structpb.NewStringValue(r.ID),
	}
	if r.Error != "" {
		fields["error"] = structpb.NewStringValue(r.Error)
		return &structpb.Struct{Fields: fields}
	}
	fields["found"] = structpb.NewBoolValue(r.Found)
	points := make([]*structpb.Value, len(r.Path))
	for i, p := range r.Path {
		points[i] = pointValue(p)
	}
	fields["path"] = structpb.NewListValue(&structpb.ListValue{Values: points})
	return &structpb.Struct{Fields: fields}
}

// ReplyFromProto reads a reply envelope.
func ReplyFromProto(s *structpb.Struct) (Reply, error) {
	if s == nil {
		return Reply{}, errors.New("empty reply")
	}
	var r Reply
	r.ID = s.GetFields()["id"].GetStringValue()
	r.Error = s.GetFields()["error"].GetStringValue()
	r.Found = s.GetFields()["found"].GetBoolValue()
	for i, v := range s.GetFields()["path"].GetListValue().GetValues() {
		p, err := geometry.ParsePoint(v.AsInterface())
		if err != nil {
			return r, fmt.Errorf("path point %d: %w", i, err)
		}
		r.Path = append(r.Path, p)
	}
	return r, nil
}

func pointValue(p geometry.Vector2D) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
		structpb.NewNumberValue(p.X),
		structpb.NewNumberValue(p.Y),
	}})
}
