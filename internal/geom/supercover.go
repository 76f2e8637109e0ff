package geom

import "math"

// Cell is a grid cell index.
type Cell struct {
	X, Y int
}

// Supercover lists every grid cell of size tile that the segment
// p0->p1 passes through, in traversal order. Unlike plain Bresenham
// it includes the cells a diagonal step cuts through: when crossing a
// vertical and a horizontal gridline at different times the nearer
// crossing is stepped first, and on an exact corner tie the x step is
// taken first, so a segment grazing a corner never visits the cell
// that only touches at that corner.
func Supercover(p0, p1 Vec, tile float64) []Cell {
	x0, y0 := p0.X/tile, p0.Y/tile
	x1, y1 := p1.X/tile, p1.Y/tile

	cx, cy := int(math.Floor(x0)), int(math.Floor(y0))
	ex, ey := int(math.Floor(x1)), int(math.Floor(y1))

	cells := []Cell{{cx, cy}}
	if cx == ex && cy == ey {
		return cells
	}

	dx, dy := x1-x0, y1-y0

	stepX, stepY := 1, 1
	var tMaxX, tMaxY, tDeltaX, tDeltaY float64

	if dx == 0 {
		tMaxX = math.Inf(1)
	} else {
		if dx < 0 {
			stepX = -1
			tMaxX = (float64(cx) - x0) / dx
		} else {
			tMaxX = (float64(cx+1) - x0) / dx
		}
		tDeltaX = math.Abs(1 / dx)
	}
	if dy == 0 {
		tMaxY = math.Inf(1)
	} else {
		if dy < 0 {
			stepY = -1
			tMaxY = (float64(cy) - y0) / dy
		} else {
			tMaxY = (float64(cy+1) - y0) / dy
		}
		tDeltaY = math.Abs(1 / dy)
	}

	for cx != ex || cy != ey {
		if tMaxX <= tMaxY {
			tMaxX += tDeltaX
			cx += stepX
		} else {
			tMaxY += tDeltaY
			cy += stepY
		}
		cells = append(cells, Cell{cx, cy})
	}
	return cells
}

// SegmentBlocked reports whether the segment p0->p1 crosses a cell for
// which blocked returns true. Cells outside the grid are left to the
// callback.
func SegmentBlocked(p0, p1 Vec, tile float64, blocked func(Cell) bool) bool {
	for _, c := range Supercover(p0, p1, tile) {
		if blocked(c) {
			return true
		}
	}
	return false
}
