package nav

import (
	"container/heap"

	"domination/internal/geom"
)

// Grid is a passability mask, indexed [y][x]. True means passable.
type Grid [][]bool

func (g Grid) inside(c geom.Cell) bool {
	return c.Y >= 0 && c.Y < len(g) && c.X >= 0 && c.X < len(g[c.Y])
}

// Passable reports whether the cell is inside the grid and open.
func (g Grid) Passable(c geom.Cell) bool {
	return g.inside(c) && g[c.Y][c.X]
}

// GridClear reports whether the straight segment between two points
// crosses only passable cells, using the supercover traversal, so a
// segment that merely grazes a cell corner does not count as crossing
// it. Cells outside the grid are blocked.
func GridClear(a, b geom.Vec, grid Grid, tile float64) bool {
	return !geom.SegmentBlocked(a, b, tile, func(c geom.Cell) bool {
		return !grid.Passable(c)
	})
}

var cardinal = [4]geom.Cell{{X: 0, Y: -1}, {X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// Reachable flood-fills from the given cell and returns the set of
// passable cells connected to it through cardinal moves.
func (g Grid) Reachable(from geom.Cell) map[geom.Cell]bool {
	seen := map[geom.Cell]bool{}
	if !g.Passable(from) {
		return seen
	}
	stack := []geom.Cell{from}
	seen[from] = true
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range cardinal {
			n := geom.Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if g.Passable(n) && !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return seen
}

type cellNode struct {
	c    geom.Cell
	g, f int
	idx  int
}

type cellQueue []*cellNode

func (q cellQueue) Len() int { return len(q) }

func (q cellQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	if q[i].c.Y != q[j].c.Y {
		return q[i].c.Y < q[j].c.Y
	}
	return q[i].c.X < q[j].c.X
}

func (q cellQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].idx = i
	q[j].idx = j
}

func (q *cellQueue) Push(x any) {
	n := x.(*cellNode)
	n.idx = len(*q)
	*q = append(*q, n)
}

func (q *cellQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

func manhattan(a, b geom.Cell) int {
	dx, dy := a.X-b.X, a.Y-b.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// PathLen returns the number of cardinal steps on a shortest path
// between two cells, or false when no path exists.
func (g Grid) PathLen(from, to geom.Cell) (int, bool) {
	if !g.Passable(from) || !g.Passable(to) {
		return 0, false
	}

	open := cellQueue{}
	heap.Init(&open)
	best := map[geom.Cell]int{from: 0}
	closed := map[geom.Cell]bool{}
	heap.Push(&open, &cellNode{c: from, f: manhattan(from, to)})

	for open.Len() > 0 {
		cur := heap.Pop(&open).(*cellNode)
		if cur.c == to {
			return cur.g, true
		}
		if closed[cur.c] {
			continue
		}
		closed[cur.c] = true

		for _, d := range cardinal {
			n := geom.Cell{X: cur.c.X + d.X, Y: cur.c.Y + d.Y}
			if !g.Passable(n) || closed[n] {
				continue
			}
			ng := cur.g + 1
			if prev, seen := best[n]; seen && ng >= prev {
				continue
			}
			best[n] = ng
			heap.Push(&open, &cellNode{c: n, g: ng, f: ng + manhattan(n, to)})
		}
	}
	return 0, false
}
