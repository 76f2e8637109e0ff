// Package field holds the tile map a game is played on, its text
// format, and the procedural generator that produces connected maps.
package field

import (
	"fmt"
	"strings"
	"sync"

	"domination/internal/geom"
	"domination/internal/nav"
)

// Tile is the content of one map cell.
type Tile uint8

const (
	Clear Tile = iota
	Wall
	AmmoSource
	ControlPoint
	RedSpawn
	BlueSpawn
	CrumbSource
)

// DefaultTileSize is the edge length of one tile in game units.
const DefaultTileSize = 16.0

var tileMarks = map[Tile]byte{
	Clear:        '_',
	Wall:         'w',
	AmmoSource:   'A',
	ControlPoint: 'C',
	RedSpawn:     'R',
	BlueSpawn:    'B',
	CrumbSource:  'F',
}

// Field is a tile map. It is immutable once built; derived geometry
// is computed lazily and cached, so a single Field can back many
// concurrent games.
type Field struct {
	Width    int
	Height   int
	TileSize float64
	Tiles    [][]Tile

	unpackOnce sync.Once
	wallRects  []geom.Rect
	wallGrid   nav.Grid
	mesh       nav.Mesh
}

// Parse reads the whitespace-separated text form produced by String.
// Markers are case-insensitive.
func Parse(s string) (*Field, error) {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	f := &Field{
		Height:   len(lines),
		TileSize: DefaultTileSize,
	}
	for y, line := range lines {
		marks := strings.Fields(line)
		if y == 0 {
			f.Width = len(marks)
		} else if len(marks) != f.Width {
			return nil, fmt.Errorf("field: row %d has %d tiles, want %d", y, len(marks), f.Width)
		}
		row := make([]Tile, len(marks))
		for x, m := range marks {
			t, err := parseMark(m)
			if err != nil {
				return nil, fmt.Errorf("field: row %d col %d: %w", y, x, err)
			}
			row[x] = t
		}
		f.Tiles = append(f.Tiles, row)
	}
	if f.Width == 0 {
		return nil, fmt.Errorf("field: empty map")
	}
	return f, nil
}

func parseMark(m string) (Tile, error) {
	if len(m) != 1 {
		return 0, fmt.Errorf("bad tile marker %q", m)
	}
	c := strings.ToUpper(m)[0]
	for t, mark := range tileMarks {
		up := mark
		if up >= 'a' && up <= 'z' {
			up -= 'a' - 'A'
		}
		if c == up {
			return t, nil
		}
	}
	return 0, fmt.Errorf("bad tile marker %q", m)
}

// String renders the map in its text form, one row per line with
// single-character markers separated by spaces.
func (f *Field) String() string {
	var b strings.Builder
	for y, row := range f.Tiles {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x, t := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(tileMarks[t])
		}
	}
	return b.String()
}

// Bounds is the playable area in game units.
func (f *Field) Bounds() geom.Rect {
	return geom.Rect{W: float64(f.Width) * f.TileSize, H: float64(f.Height) * f.TileSize}
}

// TileCenter is the center of the given cell in game units.
func (f *Field) TileCenter(c geom.Cell) geom.Vec {
	return geom.Vec{
		X: (float64(c.X) + 0.5) * f.TileSize,
		Y: (float64(c.Y) + 0.5) * f.TileSize,
	}
}

// Find lists the cells holding the given tile, in row-major order.
func (f *Field) Find(t Tile) []geom.Cell {
	var out []geom.Cell
	for y, row := range f.Tiles {
		for x, tile := range row {
			if tile == t {
				out = append(out, geom.Cell{X: x, Y: y})
			}
		}
	}
	return out
}

// WallRects is the wall tiles merged into as few rectangles as
// possible, in game units.
func (f *Field) WallRects() []geom.Rect {
	f.unpack()
	return f.wallRects
}

// WallGrid is the passability mask at tile resolution.
func (f *Field) WallGrid() nav.Grid {
	f.unpack()
	return f.wallGrid
}

// Mesh is the navigation mesh built around the walls, with nodes at
// ammo sources and control points. Shared; callers must not modify.
func (f *Field) Mesh() nav.Mesh {
	f.unpack()
	return f.mesh
}

func (f *Field) unpack() {
	f.unpackOnce.Do(func() {
		ts := f.TileSize
		var tiles []geom.Rect
		f.wallGrid = make(nav.Grid, f.Height)
		for y, row := range f.Tiles {
			f.wallGrid[y] = make([]bool, f.Width)
			for x, t := range row {
				if t == Wall {
					tiles = append(tiles, geom.Rect{
						X: float64(x) * ts, Y: float64(y) * ts, W: ts, H: ts,
					})
				} else {
					f.wallGrid[y][x] = true
				}
			}
		}
		f.wallRects = geom.MergeRects(tiles)

		var extra []geom.Vec
		for _, c := range f.Find(AmmoSource) {
			extra = append(extra, f.TileCenter(c))
		}
		for _, c := range f.Find(ControlPoint) {
			extra = append(extra, f.TileCenter(c))
		}
		f.mesh = nav.BuildMesh(f.wallRects, f.Bounds(), extra, nav.DefaultOptions())
	})
}
