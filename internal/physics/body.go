// Package physics implements the simulation world: swept broadphase,
// iterative separation, and raycasts over rectangles and circles.
package physics

import "domination/internal/geom"

// Shape selects the collision footprint of a body. Circles use W as
// their diameter.
type Shape uint8

const (
	ShapeRect Shape = iota
	ShapeCircle
)

// Body is one object in the world. Pos is the committed position of
// the top-left corner of the bounding box; Sim is the working position
// advanced during substeps and folded back into Pos on Commit. Owner
// points back at the game object so collision callbacks can dispatch.
type Body struct {
	Pos     geom.Vec
	Sim     geom.Vec
	W, H    float64
	Shape   Shape
	Solid   bool
	Movable bool
	Owner   any

	id    uint32
	delta geom.Vec
	moved bool
}

// ID is assigned by World.Add and orders callback dispatch.
func (b *Body) ID() uint32 { return b.id }

// Center of the bounding box at the working position.
func (b *Body) Center() geom.Vec {
	return geom.Vec{X: b.Sim.X + b.W/2, Y: b.Sim.Y + b.H/2}
}

// Bounds of the body at the working position.
func (b *Body) Bounds() geom.Rect {
	return geom.Rect{X: b.Sim.X, Y: b.Sim.Y, W: b.W, H: b.H}
}

// Radius of a circular body.
func (b *Body) Radius() float64 { return b.W / 2 }

// Teleport moves the body instantly, cancelling any pending motion.
func (b *Body) Teleport(p geom.Vec) {
	b.Pos = p
	b.Sim = p
	b.delta = geom.Vec{}
}
