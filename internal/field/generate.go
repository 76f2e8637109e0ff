package field

import (
	"fmt"
	"math"
	"math/rand"

	"domination/internal/geom"
	"domination/internal/nav"
)

// Config are the generator parameters.
type Config struct {
	Width    int     // tiles, odd when Mirror is set
	Height   int     // tiles
	TileSize float64 // game units per tile
	Mirror   bool    // left/right symmetric map

	Spawns int // spawn tiles per team
	Points int // control points
	Ammo   int // ammo sources
	Crumbs int // crumb sources

	WallFill      float64 // target fraction of tiles covered by walls
	WallLenMin    int     // wall run length range, inclusive
	WallLenMax    int
	WallThickness int
	Horizontal    float64 // probability of a horizontal run
	Coarse        int     // snap grid for run placement
	Budget        int     // stamp attempts before accepting partial fill
}

// DefaultConfig mirrors the stock competition map parameters.
func DefaultConfig() Config {
	return Config{
		Width:         47,
		Height:        32,
		TileSize:      DefaultTileSize,
		Mirror:        true,
		Spawns:        5,
		Points:        3,
		Ammo:          6,
		WallFill:      0.3,
		WallLenMin:    6,
		WallLenMax:    7,
		WallThickness: 1,
		Horizontal:    0.5,
		Coarse:        3,
		Budget:        1000,
	}
}

// SpawnAngleRed and SpawnAngleBlue are the facing of freshly spawned
// tanks per team.
const (
	SpawnAngleRed  = 0.0
	SpawnAngleBlue = -math.Pi
)

// Generate builds a random field. Walls are stamped only while every
// spawn keeps a route to every objective; if the fill target cannot be
// met within the budget the sparser map is returned rather than an
// error. The caller owns rng; a fixed seed reproduces the exact map.
func Generate(cfg Config, rng *rand.Rand) (*Field, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	g := &generator{cfg: cfg, rng: rng, occupied: map[geom.Cell]bool{}}
	g.placeObjects()
	g.stampWalls()
	g.clearUnderObjects()
	g.fillPockets()
	return g.build(), nil
}

func (cfg Config) validate() error {
	if cfg.Width < 15 || cfg.Height < 10 {
		return fmt.Errorf("field: map %dx%d too small", cfg.Width, cfg.Height)
	}
	if cfg.Mirror && cfg.Width%2 == 0 {
		return fmt.Errorf("field: mirrored map needs odd width, got %d", cfg.Width)
	}
	if cfg.TileSize <= 0 {
		return fmt.Errorf("field: tile size %v must be positive", cfg.TileSize)
	}
	if cfg.Spawns < 1 || cfg.Points < 1 {
		return fmt.Errorf("field: need at least one spawn and control point")
	}
	if cfg.WallLenMin < 1 || cfg.WallLenMax < cfg.WallLenMin {
		return fmt.Errorf("field: bad wall length range [%d,%d]", cfg.WallLenMin, cfg.WallLenMax)
	}
	if cfg.Coarse < 1 || cfg.WallThickness < 1 {
		return fmt.Errorf("field: coarse grid and wall thickness must be positive")
	}
	return nil
}

type generator struct {
	cfg Config
	rng *rand.Rand

	walls    [][]bool // full map, built from the stamped half
	occupied map[geom.Cell]bool

	spawnsRed  []geom.Cell
	spawnsBlue []geom.Cell
	points     []geom.Cell
	ammo       []geom.Cell
	crumbs     []geom.Cell

	// routes that must stay connected while stamping, in half-map
	// coordinates (left half plus centerline).
	routes [][2]geom.Cell
}

// halfWidth is the width of the stamped map: the left half including
// the centerline when mirroring, the full width otherwise.
func (g *generator) halfWidth() int {
	if g.cfg.Mirror {
		return g.cfg.Width/2 + 1
	}
	return g.cfg.Width
}

func (g *generator) randBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *generator) placeObjects() {
	w, h := g.cfg.Width, g.cfg.Height

	// Spawn strips grow down from a fixed anchor, two tiles wide.
	anchor := geom.Cell{X: 2, Y: 1}
	x, y := anchor.X, anchor.Y
	for len(g.spawnsRed) < g.cfg.Spawns {
		g.spawnsRed = append(g.spawnsRed, geom.Cell{X: x, Y: y})
		g.spawnsBlue = append(g.spawnsBlue, geom.Cell{X: w - 1 - x, Y: y})
		g.occupied[geom.Cell{X: x, Y: y}] = true
		g.occupied[geom.Cell{X: w - 1 - x, Y: y}] = true
		x++
		if x >= anchor.X+2 {
			x = anchor.X
			y++
		}
	}

	// First control point sits near the bottom quarter line; further
	// pairs and the pickups are sampled uniformly. On mirrored maps an
	// odd count puts one object on the centerline.
	left := geom.Cell{X: (w - 1) / 4, Y: h - 4}
	if g.cfg.Mirror {
		g.placePair(left, &g.points)
		for i := 1; i < g.cfg.Points/2; i++ {
			g.placePair(g.scatterSpot(), &g.points)
		}
		if g.cfg.Points%2 == 1 {
			g.place(geom.Cell{X: w / 2, Y: g.randBetween(3, h/2+1)}, &g.points)
		}
		for i := 0; i < g.cfg.Ammo/2; i++ {
			g.placePair(g.scatterSpot(), &g.ammo)
		}
		if g.cfg.Ammo%2 == 1 {
			g.place(geom.Cell{X: w / 2, Y: g.randBetween(3, h-3)}, &g.ammo)
		}
		for i := 0; i < g.cfg.Crumbs/2; i++ {
			g.placePair(g.scatterSpot(), &g.crumbs)
		}
		if g.cfg.Crumbs%2 == 1 {
			g.place(geom.Cell{X: w / 2, Y: g.randBetween(3, h-3)}, &g.crumbs)
		}
	} else {
		g.place(left, &g.points)
		for i := 1; i < g.cfg.Points; i++ {
			g.place(g.scatterSpot(), &g.points)
		}
		for i := 0; i < g.cfg.Ammo; i++ {
			g.place(g.scatterSpot(), &g.ammo)
		}
		for i := 0; i < g.cfg.Crumbs; i++ {
			g.place(g.scatterSpot(), &g.crumbs)
		}
	}

	// Every objective on the stamped half must stay connected to the
	// spawn anchor.
	for _, c := range append(append(append([]geom.Cell{}, g.points...), g.ammo...), g.crumbs...) {
		if c.X < g.halfWidth() {
			g.routes = append(g.routes, [2]geom.Cell{anchor, c})
		}
	}
	if g.cfg.Mirror {
		// A clear centerline crossing ties the two halves into one
		// component even when no objective lands there.
		g.routes = append(g.routes, [2]geom.Cell{anchor, {X: w / 2, Y: h / 2}})
	} else {
		g.routes = append(g.routes, [2]geom.Cell{anchor, {X: w - 1 - anchor.X, Y: anchor.Y}})
	}
}

// scatterSpot picks an unoccupied interior cell on the sampled half.
func (g *generator) scatterSpot() geom.Cell {
	w, h := g.cfg.Width, g.cfg.Height
	hi := w - 4
	if g.cfg.Mirror {
		hi = w/2 - 1
	}
	for tries := 0; tries < 100; tries++ {
		c := geom.Cell{X: g.randBetween(5, hi), Y: g.randBetween(5, h-2)}
		if !g.occupied[c] {
			return c
		}
	}
	// Dense maps fall back to a sweep for any free interior cell.
	for cy := 1; cy < h-1; cy++ {
		for cx := 5; cx <= hi; cx++ {
			if c := (geom.Cell{X: cx, Y: cy}); !g.occupied[c] {
				return c
			}
		}
	}
	return geom.Cell{X: hi, Y: h - 2}
}

func (g *generator) placePair(c geom.Cell, dst *[]geom.Cell) {
	mirror := geom.Cell{X: g.cfg.Width - 1 - c.X, Y: c.Y}
	*dst = append(*dst, c)
	g.occupied[c] = true
	if g.cfg.Mirror || mirror != c {
		*dst = append(*dst, mirror)
		g.occupied[mirror] = true
	}
}

func (g *generator) place(c geom.Cell, dst *[]geom.Cell) {
	if g.occupied[c] {
		c = g.scatterSpot()
	}
	*dst = append(*dst, c)
	g.occupied[c] = true
}

// stampWalls builds the stamped half with bounding walls, then drops
// random wall runs onto it while the required routes survive, and
// finally reflects it onto the full map.
func (g *generator) stampWalls() {
	cfg := g.cfg
	hw, h := g.halfWidth(), cfg.Height

	half := make([][]bool, h)
	for y := range half {
		half[y] = make([]bool, hw)
		half[y][0] = true
		if y == 0 || y == h-1 {
			for x := range half[y] {
				half[y][x] = true
			}
		}
		if !cfg.Mirror {
			half[y][hw-1] = true
		}
	}

	target := cfg.WallFill * float64(h) * float64(cfg.Width)
	if cfg.Mirror {
		target /= 2
	}

	filled := countWalls(half)
	for budget := cfg.Budget; float64(filled) < target && budget > 0; budget-- {
		sw, sh := cfg.WallThickness, g.randBetween(cfg.WallLenMin, cfg.WallLenMax)
		if g.rng.Float64() < cfg.Horizontal {
			sw, sh = sh, sw
		}
		if sw >= hw-1 || sh >= h-1 {
			continue
		}
		x := g.randBetween(1, hw-sw-1) / cfg.Coarse * cfg.Coarse
		y := g.randBetween(1, h-sh-1) / cfg.Coarse * cfg.Coarse

		candidate := copyGrid(half)
		for cy := y; cy < y+sh; cy++ {
			for cx := x; cx < x+sw; cx++ {
				candidate[cy][cx] = true
			}
		}
		if g.routesConnected(candidate) {
			half = candidate
			filled = countWalls(half)
		}
	}

	g.walls = make([][]bool, h)
	for y := 0; y < h; y++ {
		g.walls[y] = make([]bool, cfg.Width)
		for x := 0; x < cfg.Width; x++ {
			src := x
			if cfg.Mirror && x >= hw {
				src = cfg.Width - 1 - x
			}
			g.walls[y][x] = half[y][src]
		}
	}
}

func (g *generator) routesConnected(walls [][]bool) bool {
	grid := passability(walls)
	for _, r := range g.routes {
		if _, ok := grid.PathLen(r[0], r[1]); !ok {
			return false
		}
	}
	return true
}

// clearUnderObjects opens the tiles occupied by placed objects: each
// spawn plus the tile it faces, a 3x3 patch around control points, and
// single tiles under pickups.
func (g *generator) clearUnderObjects() {
	clear := func(c geom.Cell) {
		if c.Y > 0 && c.Y < g.cfg.Height-1 && c.X > 0 && c.X < g.cfg.Width-1 {
			g.walls[c.Y][c.X] = false
		}
	}
	for _, c := range g.spawnsRed {
		clear(c)
		clear(geom.Cell{X: c.X + 1, Y: c.Y})
	}
	for _, c := range g.spawnsBlue {
		clear(c)
		clear(geom.Cell{X: c.X - 1, Y: c.Y})
	}
	for _, c := range g.points {
		for cy := c.Y - 1; cy <= c.Y+1; cy++ {
			for cx := c.X - 1; cx <= c.X+1; cx++ {
				clear(geom.Cell{X: cx, Y: cy})
			}
		}
	}
	for _, c := range append(append([]geom.Cell{}, g.ammo...), g.crumbs...) {
		clear(c)
	}
}

// fillPockets walls off clear cells that ended up unreachable from the
// spawns, so the reachability invariant holds for the whole map. The
// pocket set is symmetric on mirrored maps, so symmetry is preserved.
func (g *generator) fillPockets() {
	grid := passability(g.walls)
	seen := grid.Reachable(g.spawnsRed[0])
	for y, row := range g.walls {
		for x, wall := range row {
			if !wall && !seen[geom.Cell{X: x, Y: y}] {
				g.walls[y][x] = true
			}
		}
	}
}

func (g *generator) build() *Field {
	f := &Field{
		Width:    g.cfg.Width,
		Height:   g.cfg.Height,
		TileSize: g.cfg.TileSize,
		Tiles:    make([][]Tile, g.cfg.Height),
	}
	for y := range f.Tiles {
		f.Tiles[y] = make([]Tile, g.cfg.Width)
		for x := range f.Tiles[y] {
			if g.walls[y][x] {
				f.Tiles[y][x] = Wall
			}
		}
	}
	set := func(cells []geom.Cell, t Tile) {
		for _, c := range cells {
			f.Tiles[c.Y][c.X] = t
		}
	}
	set(g.points, ControlPoint)
	set(g.ammo, AmmoSource)
	set(g.crumbs, CrumbSource)
	set(g.spawnsRed, RedSpawn)
	set(g.spawnsBlue, BlueSpawn)
	return f
}

func passability(walls [][]bool) nav.Grid {
	grid := make(nav.Grid, len(walls))
	for y, row := range walls {
		grid[y] = make([]bool, len(row))
		for x, wall := range row {
			grid[y][x] = !wall
		}
	}
	return grid
}

func countWalls(walls [][]bool) int {
	n := 0
	for _, row := range walls {
		for _, w := range row {
			if w {
				n++
			}
		}
	}
	return n
}

func copyGrid(src [][]bool) [][]bool {
	dst := make([][]bool, len(src))
	for i, row := range src {
		dst[i] = append([]bool(nil), row...)
	}
	return dst
}
