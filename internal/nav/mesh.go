// Package nav builds visibility graphs over walled fields and finds
// shortest paths through them.
package nav

import (
	"domination/internal/geom"
)

// Mesh is a weighted visibility graph. Nodes are points, edges connect
// mutually visible nodes with their Euclidean distance as weight.
type Mesh map[geom.Vec]map[geom.Vec]float64

// Options control mesh construction.
type Options struct {
	// Offset is how far outside a wall corner its node is placed.
	Offset float64
	// Simplify removes an edge when a detour through other nodes is at
	// most (1+Simplify) times as long. Zero keeps every edge.
	Simplify float64
}

// DefaultOptions places nodes 7 units off wall corners and prunes
// edges with less than 30% detour cost.
func DefaultOptions() Options {
	return Options{Offset: 7, Simplify: 0.3}
}

// shrink applied to walls during visibility tests so that edges may
// run exactly along a wall boundary.
const wallShrink = 0.001

// BuildMesh constructs a visibility mesh around the given walls,
// restricted to bounds. Extra points are added as nodes, typically
// spots of interest like control points.
func BuildMesh(walls []geom.Rect, bounds geom.Rect, extra []geom.Vec, opt Options) Mesh {
	var points []geom.Vec
	for _, w := range walls {
		for _, c := range w.Offset(opt.Offset).Corners() {
			points = append(points, c)
		}
	}
	points = append(points, extra...)

	mesh := Mesh{}
	for _, p := range points {
		if !bounds.Contains(p) {
			continue
		}
		if insideAny(p, walls) {
			continue
		}
		if _, dup := mesh[p]; dup {
			continue
		}
		mesh[p] = map[geom.Vec]float64{}
	}

	nodes := mesh.nodes()
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if LineClear(a, b, walls) {
				d := a.Dist(b)
				mesh[a][b] = d
				mesh[b][a] = d
			}
		}
	}

	if opt.Simplify > 0 {
		mesh.simplify(opt.Simplify)
	}
	return mesh
}

// LineClear reports whether the segment a-b crosses none of the walls.
// Walls are shrunk by a hair so a segment may graze a wall boundary.
func LineClear(a, b geom.Vec, walls []geom.Rect) bool {
	for _, w := range walls {
		s := geom.Rect{
			X: w.X + wallShrink,
			Y: w.Y + wallShrink,
			W: w.W - 2*wallShrink,
			H: w.H - 2*wallShrink,
		}
		if _, _, hit := geom.SegmentRect(a, b, s); hit {
			return false
		}
	}
	return true
}

func insideAny(p geom.Vec, walls []geom.Rect) bool {
	for _, w := range walls {
		if w.Contains(p) {
			return true
		}
	}
	return false
}

type edge struct {
	a, b geom.Vec
	w    float64
}

// simplify drops edges, longest first, whose endpoints remain connected
// by a path of at most (1+tolerance) times the edge length.
func (m Mesh) simplify(tolerance float64) {
	var edges []edge
	for a, nbs := range m {
		for b, w := range nbs {
			if less(a, b) {
				edges = append(edges, edge{a, b, w})
			}
		}
	}
	sortEdges(edges)

	for _, e := range edges {
		delete(m[e.a], e.b)
		delete(m[e.b], e.a)
		d, ok := m.search(e.a, e.b)
		if !ok || d > e.w*(1+tolerance) {
			m[e.a][e.b] = e.w
			m[e.b][e.a] = e.w
		}
	}
}

// nodes returns the mesh nodes in a stable order.
func (m Mesh) nodes() []geom.Vec {
	out := make([]geom.Vec, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortVecs(out)
	return out
}
