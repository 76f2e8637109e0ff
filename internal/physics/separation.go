package physics

import (
	"math"

	"domination/internal/geom"
)

// separation is a resolved penetration: moving a by push (and b by
// -push) separates the pair.
type separation struct {
	a, b *Body
	p    float64
	push geom.Vec
}

// computeSeparation reports whether two bodies overlap and how to part
// them. Circle pairs separate along the center axis; rect pairs along
// the axis of least penetration; a rect against a circle uses the
// nearest rect corner as a zero-radius circle proxy when the circle
// center is past a corner, and falls back to the box axes otherwise.
func computeSeparation(a, b *Body) (separation, bool) {
	switch {
	case a.Shape == ShapeCircle && b.Shape == ShapeCircle:
		return circleCircle(a, b)
	case a.Shape == ShapeRect && b.Shape == ShapeRect:
		return rectRect(a, b)
	default:
		rect, circ, switched := a, b, false
		if a.Shape == ShapeCircle {
			rect, circ, switched = b, a, true
		}
		if sep, resolved, ok := rectCircle(rect, circ); resolved {
			if !ok {
				return separation{}, false
			}
			if switched {
				sep.a, sep.b = circ, rect
				sep.push = sep.push.Scale(-1)
			}
			return sep, true
		}
		// Circle center is beside an edge; the boxes separate fine.
		return rectRect(a, b)
	}
}

func circleCircle(a, b *Body) (separation, bool) {
	md := a.Radius() + b.Radius()
	d := a.Center().Sub(b.Center())
	ds := d.Dot(d)
	if ds >= md*md {
		return separation{}, false
	}
	if ds == 0 {
		// Coincident centers: overlap registered, nothing to push.
		return separation{a: a, b: b}, true
	}
	dist := math.Sqrt(ds)
	p := md - dist
	return separation{a: a, b: b, p: p, push: d.Scale(p / dist)}, true
}

func rectRect(a, b *Body) (separation, bool) {
	al, at := a.Sim.X, a.Sim.Y
	ar, ab := al+a.W, at+a.H
	bl, bt := b.Sim.X, b.Sim.Y
	br, bb := bl+b.W, bt+b.H

	p, push := math.Inf(1), geom.Vec{}

	pt := ar - bl
	if pt <= 0 {
		return separation{}, false
	}
	p, push = pt, geom.Vec{X: -pt}

	pt = ab - bt
	if pt <= 0 {
		return separation{}, false
	}
	if pt < p {
		p, push = pt, geom.Vec{Y: -pt}
	}

	pt = br - al
	if pt <= 0 {
		return separation{}, false
	}
	if pt < p {
		p, push = pt, geom.Vec{X: pt}
	}

	pt = bb - at
	if pt <= 0 {
		return separation{}, false
	}
	if pt < p {
		p, push = pt, geom.Vec{Y: pt}
	}

	return separation{a: a, b: b, p: p, push: push}, true
}

// rectCircle handles the corner case of a rect/circle pair. resolved
// is false when the circle center lies beside an edge, in which case
// the caller treats the pair as boxes.
func rectCircle(rect, circ *Body) (sep separation, resolved, overlapping bool) {
	c := circ.Center()
	r := circ.Radius()
	l, t := rect.Sim.X, rect.Sim.Y
	rgt, bot := l+rect.W, t+rect.H

	var corner geom.Vec
	switch {
	case c.X < l && c.Y < t:
		corner = geom.Vec{X: l, Y: t}
	case c.X < l && c.Y > bot:
		corner = geom.Vec{X: l, Y: bot}
	case c.X > rgt && c.Y < t:
		corner = geom.Vec{X: rgt, Y: t}
	case c.X > rgt && c.Y > bot:
		corner = geom.Vec{X: rgt, Y: bot}
	default:
		return separation{}, false, false
	}

	d := corner.Sub(c)
	ds := d.Dot(d)
	if ds >= r*r {
		return separation{}, true, false
	}
	if ds == 0 {
		return separation{a: rect, b: circ}, true, true
	}
	dist := math.Sqrt(ds)
	p := r - dist
	return separation{a: rect, b: circ, p: p, push: d.Scale(p / dist)}, true, true
}
