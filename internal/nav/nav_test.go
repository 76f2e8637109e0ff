package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination/internal/geom"
)

func TestBuildMeshOpenField(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	extra := []geom.Vec{{X: 10, Y: 10}, {X: 90, Y: 90}}

	m := BuildMesh(nil, bounds, extra, DefaultOptions())

	require.Len(t, m, 2)
	assert.Contains(t, m, geom.Vec{X: 10, Y: 10})
	assert.InDelta(t, extra[0].Dist(extra[1]), m[extra[0]][extra[1]], 1e-9)
}

func TestBuildMeshAroundWall(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	wall := geom.Rect{X: 40, Y: 20, W: 20, H: 60}

	m := BuildMesh([]geom.Rect{wall}, bounds, nil, Options{Offset: 7})

	require.Len(t, m, 4)
	assert.Contains(t, m, geom.Vec{X: 33, Y: 13})
	assert.Contains(t, m, geom.Vec{X: 67, Y: 13})
	assert.Contains(t, m, geom.Vec{X: 33, Y: 87})
	assert.Contains(t, m, geom.Vec{X: 67, Y: 87})

	// Corners on the same side see each other; the ones across the
	// wall body do not connect directly.
	left, right := geom.Vec{X: 33, Y: 13}, geom.Vec{X: 67, Y: 13}
	assert.Contains(t, m[left], right)
	assert.NotContains(t, m[geom.Vec{X: 33, Y: 13}], geom.Vec{X: 67, Y: 87})
}

func TestBuildMeshDropsNodesOutsideBounds(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	wall := geom.Rect{X: 0, Y: 0, W: 20, H: 20}

	m := BuildMesh([]geom.Rect{wall}, bounds, nil, Options{Offset: 7})

	// Only the corner pushed into the interior survives.
	require.Len(t, m, 1)
	assert.Contains(t, m, geom.Vec{X: 27, Y: 27})
}

func TestSimplifyPrunesRedundantEdges(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 10}
	extra := []geom.Vec{{X: 10, Y: 5}, {X: 50, Y: 5}, {X: 90, Y: 5}}

	m := BuildMesh(nil, bounds, extra, Options{Simplify: 0.3})

	// The long direct edge costs the same as the two-hop route, so it
	// is pruned.
	assert.NotContains(t, m[extra[0]], extra[2])
	assert.Contains(t, m[extra[0]], extra[1])
	assert.Contains(t, m[extra[1]], extra[2])
}

// tallWallGrid is the 10x10 cell view (10-unit tiles) of a wall
// covering x 40..60, y 0..height.
func tallWallGrid(height int) Grid {
	g := make(Grid, 10)
	for y := range g {
		g[y] = make([]bool, 10)
		for x := range g[y] {
			g[y][x] = !(x >= 4 && x <= 5 && y < height)
		}
	}
	return g
}

func TestFindPathStraightLine(t *testing.T) {
	grid := tallWallGrid(0)
	path, d, ok := FindPath(geom.Vec{X: 0, Y: 0}, geom.Vec{X: 30, Y: 40}, Mesh{}, grid, 10)

	require.True(t, ok)
	assert.Equal(t, []geom.Vec{{X: 30, Y: 40}}, path)
	assert.InDelta(t, 50, d, 1e-9)
}

func TestFindPathAroundWall(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	walls := []geom.Rect{{X: 40, Y: 0, W: 20, H: 80}}
	m := BuildMesh(walls, bounds, nil, Options{Offset: 7})
	grid := tallWallGrid(8)

	start := geom.Vec{X: 10, Y: 10}
	goal := geom.Vec{X: 90, Y: 10}
	path, d, ok := FindPath(start, goal, m, grid, 10)

	require.True(t, ok)
	require.NotEmpty(t, path)
	assert.Equal(t, goal, path[len(path)-1])
	assert.Greater(t, d, start.Dist(goal))

	// Every leg of the returned path is unobstructed.
	prev := start
	for _, p := range path {
		assert.True(t, GridClear(prev, p, grid, 10), "leg %v -> %v blocked", prev, p)
		prev = p
	}
}

func TestFindPathDoesNotMutateMesh(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	walls := []geom.Rect{{X: 40, Y: 0, W: 20, H: 80}}
	m := BuildMesh(walls, bounds, nil, Options{Offset: 7})

	degrees := map[geom.Vec]int{}
	for p, nbs := range m {
		degrees[p] = len(nbs)
	}

	_, _, ok := FindPath(geom.Vec{X: 10, Y: 10}, geom.Vec{X: 90, Y: 10}, m, tallWallGrid(8), 10)
	require.True(t, ok)

	require.Len(t, m, len(degrees))
	for p, nbs := range m {
		assert.Equal(t, degrees[p], len(nbs), "node %v changed degree", p)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	bounds := geom.Rect{X: 0, Y: 0, W: 100, H: 100}
	walls := []geom.Rect{{X: 40, Y: 0, W: 20, H: 100}}
	m := BuildMesh(walls, bounds, nil, Options{Offset: 7})

	_, _, ok := FindPath(geom.Vec{X: 10, Y: 50}, geom.Vec{X: 90, Y: 50}, m, tallWallGrid(10), 10)
	assert.False(t, ok)
}

func TestGridClearIgnoresGrazedCorner(t *testing.T) {
	grazed := gridFrom([]string{
		"..",
		"#.",
	})
	a, b := geom.Vec{X: 5, Y: 5}, geom.Vec{X: 15, Y: 15}
	assert.True(t, GridClear(a, b, grazed, 10),
		"corner-only touch of a wall cell does not block")

	crossed := gridFrom([]string{
		".#",
		"..",
	})
	assert.False(t, GridClear(a, b, crossed, 10),
		"the corner tie steps through the upper-right cell")

	assert.False(t, GridClear(a, geom.Vec{X: 5, Y: -5}, grazed, 10),
		"outside the grid is blocked")
}

func TestFindPathHonorsCornerRule(t *testing.T) {
	start, goal := geom.Vec{X: 5, Y: 5}, geom.Vec{X: 15, Y: 15}

	grazed := gridFrom([]string{
		"..",
		"#.",
	})
	path, _, ok := FindPath(start, goal, Mesh{}, grazed, 10)
	require.True(t, ok)
	assert.Equal(t, []geom.Vec{goal}, path)

	crossed := gridFrom([]string{
		".#",
		"#.",
	})
	_, _, ok = FindPath(start, goal, Mesh{}, crossed, 10)
	assert.False(t, ok)
}

func gridFrom(rows []string) Grid {
	g := make(Grid, len(rows))
	for y, row := range rows {
		g[y] = make([]bool, len(row))
		for x, ch := range row {
			g[y][x] = ch == '.'
		}
	}
	return g
}

func TestGridReachable(t *testing.T) {
	g := gridFrom([]string{
		"..#..",
		"..#..",
		"..#..",
	})
	seen := g.Reachable(geom.Cell{X: 0, Y: 0})

	assert.Len(t, seen, 6)
	assert.True(t, seen[geom.Cell{X: 1, Y: 2}])
	assert.False(t, seen[geom.Cell{X: 3, Y: 0}])
}

func TestGridPathLen(t *testing.T) {
	g := gridFrom([]string{
		".....",
		".###.",
		".....",
	})

	n, ok := g.PathLen(geom.Cell{X: 0, Y: 1}, geom.Cell{X: 4, Y: 1})
	require.True(t, ok)
	assert.Equal(t, 6, n)

	_, ok = g.PathLen(geom.Cell{X: 0, Y: 0}, geom.Cell{X: 2, Y: 1})
	assert.False(t, ok)
}
