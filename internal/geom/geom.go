// Package geom holds the small geometric kernel shared by the field
// generator, the physics solver and the navigation mesh: vectors,
// axis-aligned rectangles, segment intersection tests and the supercover
// grid traversal.
package geom

import "math"

// Vec is a 2D point or displacement in world units.
type Vec struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func (v Vec) Add(o Vec) Vec      { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec      { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }

func (v Vec) Dot(o Vec) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between two points.
func (v Vec) Dist(o Vec) float64 { return math.Hypot(v.X-o.X, v.Y-o.Y) }

func (v Vec) DistSq(o Vec) float64 {
	dx, dy := v.X-o.X, v.Y-o.Y
	return dx*dx + dy*dy
}

// Rect is an axis-aligned rectangle identified by its top-left corner.
type Rect struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
	W float64 `msgpack:"w"`
	H float64 `msgpack:"h"`
}

func (r Rect) Min() Vec { return Vec{r.X, r.Y} }
func (r Rect) Max() Vec { return Vec{r.X + r.W, r.Y + r.H} }

// Contains reports whether p lies inside r, boundary included.
func (r Rect) Contains(p Vec) bool {
	return r.X <= p.X && p.X <= r.X+r.W && r.Y <= p.Y && p.Y <= r.Y+r.H
}

// Offset grows (or shrinks, for negative d) the rectangle by d on every side.
func (r Rect) Offset(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.W + 2*d, r.H + 2*d}
}

// Corners returns the four corner points in clockwise order starting
// at the top-left.
func (r Rect) Corners() [4]Vec {
	return [4]Vec{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
}

// Bound returns the smallest rectangle covering all given rectangles.
// The zero Rect is returned for an empty slice.
func Bound(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	b := rects[0]
	for _, r := range rects[1:] {
		minX := math.Min(b.X, r.X)
		minY := math.Min(b.Y, r.Y)
		maxX := math.Max(b.X+b.W, r.X+r.W)
		maxY := math.Max(b.Y+b.H, r.Y+r.H)
		b = Rect{minX, minY, maxX - minX, maxY - minY}
	}
	return b
}

// AngleNorm wraps an angle to the interval [-pi, pi).
func AngleNorm(theta float64) float64 {
	a := math.Mod(theta+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
