package nav

import (
	"container/heap"
	"sort"

	"domination/internal/geom"
)

type node struct {
	p    geom.Vec
	g, f float64
	idx  int
}

type openList []*node

func (o openList) Len() int { return len(o) }

func (o openList) Less(i, j int) bool {
	if o[i].f != o[j].f {
		return o[i].f < o[j].f
	}
	if o[i].g != o[j].g {
		return o[i].g > o[j].g
	}
	return less(o[i].p, o[j].p)
}

func (o openList) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].idx = i
	o[j].idx = j
}

func (o *openList) Push(x any) {
	n := x.(*node)
	n.idx = len(*o)
	*o = append(*o, n)
}

func (o *openList) Pop() any {
	old := *o
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*o = old[:len(old)-1]
	return n
}

// neighbors is the adjacency lookup used during a search. A nil map
// entry falls through to the mesh itself, letting callers splice in
// temporary nodes without mutating the shared mesh.
type neighbors func(geom.Vec) map[geom.Vec]float64

// astar finds the cheapest path from start to goal. It returns the
// path as a sequence of points ending at goal (start excluded), the
// total cost, and whether goal was reached.
func astar(start, goal geom.Vec, nbs neighbors) ([]geom.Vec, float64, bool) {
	open := openList{}
	heap.Init(&open)

	byPoint := map[geom.Vec]*node{}
	cameFrom := map[geom.Vec]geom.Vec{}
	closed := map[geom.Vec]bool{}

	push := func(p geom.Vec, g float64, from geom.Vec) {
		if prev, seen := byPoint[p]; seen {
			if g >= prev.g || closed[p] {
				return
			}
			prev.g = g
			prev.f = g + p.Dist(goal)
			cameFrom[p] = from
			heap.Fix(&open, prev.idx)
			return
		}
		n := &node{p: p, g: g, f: g + p.Dist(goal)}
		byPoint[p] = n
		cameFrom[p] = from
		heap.Push(&open, n)
	}

	startNode := &node{p: start, f: start.Dist(goal)}
	byPoint[start] = startNode
	heap.Push(&open, startNode)

	for open.Len() > 0 {
		cur := heap.Pop(&open).(*node)
		if cur.p == goal {
			return unwind(cameFrom, start, goal), cur.g, true
		}
		closed[cur.p] = true

		adj := nbs(cur.p)
		for _, next := range sortedKeys(adj) {
			if closed[next] {
				continue
			}
			push(next, cur.g+adj[next], cur.p)
		}
	}
	return nil, 0, false
}

func unwind(cameFrom map[geom.Vec]geom.Vec, start, goal geom.Vec) []geom.Vec {
	var rev []geom.Vec
	for p := goal; p != start; p = cameFrom[p] {
		rev = append(rev, p)
	}
	out := make([]geom.Vec, len(rev))
	for i, p := range rev {
		out[len(rev)-1-i] = p
	}
	return out
}

// search returns the cheapest path cost between two mesh nodes.
func (m Mesh) search(from, to geom.Vec) (float64, bool) {
	_, d, ok := astar(from, to, func(p geom.Vec) map[geom.Vec]float64 {
		return m[p]
	})
	return d, ok
}

func less(a, b geom.Vec) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func sortVecs(vs []geom.Vec) {
	sort.Slice(vs, func(i, j int) bool { return less(vs[i], vs[j]) })
}

func sortedKeys(m map[geom.Vec]float64) []geom.Vec {
	out := make([]geom.Vec, 0, len(m))
	for p := range m {
		out = append(out, p)
	}
	sortVecs(out)
	return out
}

func sortEdges(es []edge) {
	sort.Slice(es, func(i, j int) bool {
		if es[i].w != es[j].w {
			return es[i].w > es[j].w
		}
		if es[i].a != es[j].a {
			return less(es[i].a, es[j].a)
		}
		return less(es[i].b, es[j].b)
	})
}
