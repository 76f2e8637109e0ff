package physics

import (
	"math"
	"sort"

	"domination/internal/geom"
)

// RayHit is one body crossed by a ray, at parametric time T along
// p0 + T*(p1-p0).
type RayHit struct {
	T    float64
	P    geom.Vec
	Body *Body
}

// Raycast shoots a segment through the world and returns every solid
// body it crosses, nearest first. exclude is skipped (the shooter).
// A zero-length segment hits nothing.
func (w *World) Raycast(p0, p1 geom.Vec, exclude *Body) []RayHit {
	if p0 == p1 {
		return nil
	}
	box := geom.Rect{
		X: math.Min(p0.X, p1.X),
		Y: math.Min(p0.Y, p1.Y),
		W: math.Abs(p1.X - p0.X),
		H: math.Abs(p1.Y - p0.Y),
	}

	var hits []RayHit
	for _, b := range w.InBounds(box, true) {
		if b == exclude {
			continue
		}
		switch b.Shape {
		case ShapeRect:
			if enter, _, ok := geom.SegmentRect(p0, p1, b.Bounds()); ok {
				hits = append(hits, RayHit{T: enter.T, P: enter.P, Body: b})
			}
		case ShapeCircle:
			if hs := geom.SegmentCircle(p0, p1, b.Center(), b.Radius()); len(hs) > 0 {
				hits = append(hits, RayHit{T: hs[0].T, P: hs[0].P, Body: b})
			}
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].T != hits[j].T {
			return hits[i].T < hits[j].T
		}
		return hits[i].Body.id < hits[j].Body.id
	})
	return hits
}
