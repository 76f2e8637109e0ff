package physics

import (
	"sort"

	"domination/internal/geom"
)

// World holds all bodies split into a movable and a static set, each
// kept sorted on x so overlap sweeps can break out early.
type World struct {
	// MaxIter caps separation passes per substep; residual overlap
	// after the last pass is accepted.
	MaxIter int

	moving []*Body
	static []*Body
	nextID uint32
}

// NewWorld returns an empty world with the given separation cap.
func NewWorld(maxIter int) *World {
	return &World{MaxIter: maxIter}
}

// Add inserts a body and assigns its id. Insertion order fixes the
// callback order, so adding in a fixed order keeps games reproducible.
func (w *World) Add(b *Body) {
	w.nextID++
	b.id = w.nextID
	b.Sim = b.Pos
	if b.Movable {
		w.moving = append(w.moving, b)
		sortByX(w.moving)
	} else {
		w.static = append(w.static, b)
		sortByX(w.static)
	}
}

// Remove takes a body out of the world.
func (w *World) Remove(b *Body) {
	if b.Movable {
		w.moving = removeBody(w.moving, b)
	} else {
		w.static = removeBody(w.static, b)
	}
}

func removeBody(s []*Body, b *Body) []*Body {
	for i, o := range s {
		if o == b {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func sortByX(s []*Body) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Sim.X < s[j].Sim.X })
}

// BeginStep turns each movable body's committed target position into a
// per-substep displacement from its current working position.
func (w *World) BeginStep(substeps int) {
	for _, b := range w.moving {
		b.delta = geom.Vec{
			X: (b.Pos.X - b.Sim.X) / float64(substeps),
			Y: (b.Pos.Y - b.Sim.Y) / float64(substeps),
		}
	}
}

// Commit folds the working positions back into the committed ones at
// the end of a step.
func (w *World) Commit() {
	for _, b := range w.moving {
		b.Pos = b.Sim
	}
}

// pair is an unordered colliding pair, stored with the lower id first.
type pair struct {
	a, b *Body
}

// Substep advances every movable body by its displacement and then
// separates solid overlaps: up to MaxIter passes sweep the x-sorted
// sets, collect penetrations, and resolve them deepest first. A pair
// already nudged in a pass keeps its residual until the next one, and
// penetrations under one unit are tolerated. Every overlapping pair,
// solid or not, produces exactly one collide callback, ordered by id.
// Returns how many resolution passes the substep took.
func (w *World) Substep(collide func(a, b *Body)) int {
	for _, b := range w.moving {
		b.Sim.X += b.delta.X
		b.Sim.Y += b.delta.Y
		b.moved = true
	}

	passes := 0
	pairs := map[pair]bool{}
	for iter := w.MaxIter; iter > 0; iter-- {
		passes++
		sortByX(w.moving)
		var collisions []separation

		k := 0
		for i, a := range w.moving {
			for _, b := range w.moving[i+1:] {
				if !a.moved && !b.moved {
					continue
				}
				if b.Sim.X >= a.Sim.X+a.W {
					break
				}
				if b.Sim.Y < a.Sim.Y+a.H && a.Sim.Y < b.Sim.Y+b.H {
					if sep, ok := computeSeparation(a, b); ok {
						if a.Solid && b.Solid {
							collisions = append(collisions, sep)
						}
						pairs[makePair(a, b)] = true
					}
				}
			}
			if a.moved {
				skipping := true
				for _, b := range w.static[k:] {
					// Advance the marker past statics that end before
					// any later mover can start overlapping.
					if b.Sim.X+b.W <= a.Sim.X {
						if skipping {
							k++
						}
						continue
					}
					skipping = false
					if b.Sim.X >= a.Sim.X+a.W {
						break
					}
					if b.Sim.Y < a.Sim.Y+a.H && a.Sim.Y < b.Sim.Y+b.H {
						if sep, ok := computeSeparation(a, b); ok {
							if a.Solid && b.Solid {
								collisions = append(collisions, sep)
							}
							pairs[makePair(a, b)] = true
						}
					}
				}
				a.moved = false
			}
		}

		if len(collisions) == 0 {
			break
		}
		sort.Slice(collisions, func(i, j int) bool {
			if collisions[i].p != collisions[j].p {
				return collisions[i].p > collisions[j].p
			}
			pi, pj := makePair(collisions[i].a, collisions[i].b), makePair(collisions[j].a, collisions[j].b)
			if pi.a.id != pj.a.id {
				return pi.a.id < pj.a.id
			}
			return pi.b.id < pj.b.id
		})
		for _, s := range collisions {
			if s.p < 1 {
				break
			}
			if s.a.moved || s.b.moved {
				continue
			}
			switch {
			case s.a.Movable && s.b.Movable:
				s.a.Sim.X += s.push.X / 2
				s.a.Sim.Y += s.push.Y / 2
				s.b.Sim.X -= s.push.X / 2
				s.b.Sim.Y -= s.push.Y / 2
				s.a.moved = true
				s.b.moved = true
			case s.a.Movable:
				s.a.Sim.X += s.push.X
				s.a.Sim.Y += s.push.Y
				s.a.moved = true
			default:
				s.b.Sim.X -= s.push.X
				s.b.Sim.Y -= s.push.Y
				s.b.moved = true
			}
		}
	}

	ordered := make([]pair, 0, len(pairs))
	for p := range pairs {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].a.id != ordered[j].a.id {
			return ordered[i].a.id < ordered[j].a.id
		}
		return ordered[i].b.id < ordered[j].b.id
	})
	for _, p := range ordered {
		collide(p.a, p.b)
	}
	return passes
}

func makePair(a, b *Body) pair {
	if a.id < b.id {
		return pair{a, b}
	}
	return pair{b, a}
}

// InBounds returns the bodies whose bounding boxes intersect the given
// rectangle, movable ones first.
func (w *World) InBounds(r geom.Rect, solidOnly bool) []*Body {
	var out []*Body
	scan := func(bodies []*Body, sorted bool) {
		for _, b := range bodies {
			if sorted && b.Sim.X > r.X+r.W {
				break
			}
			if solidOnly && !b.Solid {
				continue
			}
			if b.Sim.X+b.W > r.X && b.Sim.X < r.X+r.W &&
				b.Sim.Y+b.H > r.Y && b.Sim.Y < r.Y+r.H {
				out = append(out, b)
			}
		}
	}
	scan(w.moving, false)
	scan(w.static, true)
	return out
}
