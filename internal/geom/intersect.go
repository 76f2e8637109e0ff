package geom

import "math"

// Hit is an intersection along a parametric segment p0 + t*(p1-p0),
// with t in [0, 1].
type Hit struct {
	T float64
	P Vec
}

// SegmentRect clips the segment p0->p1 against rectangle r using the
// Liang-Barsky algorithm. It returns the entry and exit hits and true
// when any part of the segment lies inside the rectangle. Degenerate
// segments outside the rectangle report no hit rather than an error.
func SegmentRect(p0, p1 Vec, r Rect) (enter, exit Hit, ok bool) {
	l, t := r.X, r.Y
	rt, b := r.X+r.W, r.Y+r.H
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	t0, t1 := 0.0, 1.0

	for edge := 0; edge < 4; edge++ {
		var p, q float64
		switch edge {
		case 0:
			p, q = -dx, -(l - p0.X)
		case 1:
			p, q = dx, rt-p0.X
		case 2:
			p, q = -dy, -(t - p0.Y)
		case 3:
			p, q = dy, b-p0.Y
		}
		if p == 0 {
			// Segment parallel to this edge.
			if q < 0 {
				return Hit{}, Hit{}, false
			}
			continue
		}
		ti := q / p
		if p < 0 {
			if ti > t1 {
				return Hit{}, Hit{}, false
			}
			if ti > t0 {
				t0 = ti
			}
		} else {
			if ti < t0 {
				return Hit{}, Hit{}, false
			}
			if ti < t1 {
				t1 = ti
			}
		}
	}
	enter = Hit{t0, Vec{p0.X + t0*dx, p0.Y + t0*dy}}
	exit = Hit{t1, Vec{p0.X + t1*dx, p0.Y + t1*dy}}
	return enter, exit, true
}

// SegmentCircle returns the intersections of segment p0->p1 with the
// circle centered at c with radius r, ordered by t. At most two hits
// are returned; a degenerate segment yields none.
func SegmentCircle(p0, p1, c Vec, r float64) []Hit {
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	fx, fy := p0.X-c.X, p0.Y-c.Y

	a := dx*dx + dy*dy
	if a == 0 {
		return nil
	}
	b := 2 * (dx*fx + dy*fy)
	cc := fx*fx + fy*fy - r*r

	disc := b*b - 4*a*cc
	if disc < 0 {
		return nil
	}
	disc = math.Sqrt(disc)

	var hits []Hit
	for _, t := range [2]float64{(-b - disc) / (2 * a), (-b + disc) / (2 * a)} {
		if t >= 0 && t <= 1 {
			hits = append(hits, Hit{t, Vec{p0.X + t*dx, p0.Y + t*dy}})
		}
	}
	if disc == 0 && len(hits) == 2 {
		// Tangential contact surfaces as a single hit.
		hits = hits[:1]
	}
	return hits
}
