package nav

import (
	"domination/internal/geom"
)

// FindPath returns waypoints from start to goal, ending at goal and
// excluding start. Lines of sight are tested on the tile grid with the
// supercover traversal, so boundary behavior matches the wall windows
// agents see; when the straight line is already clear the path is just
// the goal. Start and goal are spliced in as temporary nodes; the mesh
// itself is never modified, so one mesh can serve concurrent searches.
// The second return is the path length, the third reports whether the
// goal is reachable at all.
func FindPath(start, goal geom.Vec, m Mesh, grid Grid, tile float64) ([]geom.Vec, float64, bool) {
	if GridClear(start, goal, grid, tile) {
		return []geom.Vec{goal}, start.Dist(goal), true
	}

	goalAdj := map[geom.Vec]float64{}
	startAdj := map[geom.Vec]float64{}
	for p := range m {
		if GridClear(start, p, grid, tile) {
			startAdj[p] = start.Dist(p)
		}
		if GridClear(p, goal, grid, tile) {
			goalAdj[p] = p.Dist(goal)
		}
	}

	nbs := func(p geom.Vec) map[geom.Vec]float64 {
		if p == start {
			return startAdj
		}
		base := m[p]
		if _, ok := goalAdj[p]; !ok {
			return base
		}
		overlay := make(map[geom.Vec]float64, len(base)+1)
		for q, w := range base {
			overlay[q] = w
		}
		overlay[goal] = goalAdj[p]
		return overlay
	}

	return astar(start, goal, nbs)
}
