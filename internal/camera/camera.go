// Package camera maps world coordinates to screen pixels for the mesh viewers.
// Both spaces have Y growing downward.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lao-tseu-is-alive/go-navmesh/pkg/geometry"
)

const (
	MinScale = 1e-4
	MaxScale = 1e4
)

// Camera shows the world from Origin (the world point at the top-left pixel) at Scale pixels per unit.
type Camera struct {
	Scale  float64
	Origin geometry.Vector2D
}

func New() *Camera {
	return &Camera{Scale: 1}
}

// Matrix is the world to screen transform.
func (c *Camera) Matrix() mgl64.Mat3 {
	return mgl64.Scale2D(c.Scale, c.Scale).Mul3(mgl64.Translate2D(-c.Origin.X, -c.Origin.Y))
}

func (c *Camera) ToScreen(p geometry.Vector2D) geometry.Vector2D {
	return apply(c.Matrix(), p)
}

func (c *Camera) ToWorld(p geometry.Vector2D) geometry.Vector2D {
	return apply(c.Matrix().Inv(), p)
}

// Fit frames b inside a width x height viewport, keeping margin pixels free on every side.
func (c *Camera) Fit(b geometry.Bounds, width, height, margin float64) {
	w, h := b.Size()
	availW := math.Max(width-2*margin, 1)
	availH := math.Max(height-2*margin, 1)

	scale := 1.0
	switch {
	case w > 0 && h > 0:
		scale = math.Min(availW/w, availH/h)
	case w > 0:
		scale = availW / w
	case h > 0:
		scale = availH / h
	}
	c.Scale = clampScale(scale)

	center := b.Center()
	c.Origin = geometry.Vector2D{
		X: center.X - width/2/c.Scale,
		Y: center.Y - height/2/c.Scale,
	}
}

// Pan moves the view by a screen space offset, as when dragging the world with the mouse.
func (c *Camera) Pan(dx, dy float64) {
	c.Origin = c.Origin.Sub(geometry.Vector2D{X: dx / c.Scale, Y: dy / c.Scale})
}

// ZoomAt multiplies the scale by factor, keeping the world point under screen point s in place.
func (c *Camera) ZoomAt(s geometry.Vector2D, factor float64) {
	if factor <= 0 {
		return
	}
	anchor := c.ToWorld(s)
	c.Scale = clampScale(c.Scale * factor)
	c.Origin = anchor.Sub(geometry.Vector2D{X: s.X / c.Scale, Y: s.Y / c.Scale})
}

func clampScale(s float64) float64 {
	return math.Min(math.Max(s, MinScale), MaxScale)
}

func apply(m mgl64.Mat3, p geometry.Vector2D) geometry.Vector2D {
	r := m.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return geometry.Vector2D{X: r.X(), Y: r.Y()}
}
