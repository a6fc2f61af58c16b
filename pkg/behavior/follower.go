// Package behavior moves agents along navmesh paths with seek and arrive steering.
package behavior

import (
	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

// Settings controls the steering constants.
// Passing this into Update allows you to change rules dynamically at runtime.
type Settings struct {
	MaxSpeed float64 // distance per tick
	MaxForce float64 // largest velocity change per tick

	// WaypointRadius is how close the agent must come to a waypoint before aiming at the next one.
	WaypointRadius float64
	// ArriveRadius is the distance to the goal at which the agent starts braking.
	ArriveRadius float64
}

func DefaultSettings() Settings {
	return Settings{
		MaxSpeed:       2,
		MaxForce:       0.3,
		WaypointRadius: 4,
		ArriveRadius:   25,
	}
}

// Agent follows a path waypoint after waypoint.
// Fields are exported so the renderer can read them.
type Agent struct {
	Position geometry.Vector2D
	Velocity geometry.Vector2D

	path []geometry.Vector2D
	next int
}

// NewAgent places an agent at rest on the first point of path.
func NewAgent(path []geometry.Vector2D) *Agent {
	a := &Agent{}
	a.Follow(path)
	return a
}

// Follow restarts the agent on path. An empty path leaves it where it is, at rest.
func (a *Agent) Follow(path []geometry.Vector2D) {
	a.path = append(a.path[:0], path...)
	a.Velocity = geometry.Vector2D{}
	a.next = 0
	if len(path) > 0 {
		a.Position = path[0]
		a.next = 1
	}
}

// Arrived reports whether the agent stopped on the last waypoint.
func (a *Agent) Arrived() bool {
	return a.next >= len(a.path)
}

// Target is the waypoint the agent is heading to.
func (a *Agent) Target() (geometry.Vector2D, bool) {
	if a.Arrived() {
		return geometry.Vector2D{}, false
	}
	return a.path[a.next], true
}

// Update advances the agent by one tick.
func (a *Agent) Update(s Settings) {
	target, ok := a.Target()
	if !ok {
		return
	}
	last := a.next == len(a.path)-1

	// Skip waypoints already reached; the goal itself must be reached exactly.
	toTarget := target.Sub(a.Position)
	dist := toTarget.Len()
	if !last && dist <= s.WaypointRadius {
		a.next++
		a.Update(s)
		return
	}

	// Seek, braking linearly inside the arrive radius of the goal down to a crawl of MaxForce
	speed := s.MaxSpeed
	if last && dist < s.ArriveRadius {
		speed = max(s.MaxSpeed*dist/s.ArriveRadius, min(s.MaxForce, s.MaxSpeed))
	}
	desired := toTarget.Normalize().Scale(speed)
	steer := limit(desired.Sub(a.Velocity), s.MaxForce)
	a.Velocity = limit(a.Velocity.Add(steer), s.MaxSpeed)

	// Never overshoot the goal
	if last && a.Velocity.Len() >= dist {
		a.Position = target
		a.Velocity = geometry.Vector2D{}
		a.next++
		return
	}
	a.Position = a.Position.Add(a.Velocity)
}

func limit(v geometry.Vector2D, max float64) geometry.Vector2D {
	if l := v.Len(); l > max && l > 0 {
		return v.Scale(max / l)
	}
	return v
}
