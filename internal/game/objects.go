package game

import (
	"domination/internal/geom"
	"domination/internal/physics"
)

// Sizes of the standard objects in game units.
const (
	TankSize         = 12.0
	ControlPointSize = 24.0
	AmmoSize         = 16.0
	CrumbSize        = 8.0
	SpawnSize        = 16.0
)

// Object is anything that takes part in the step loop. Objects with a
// physical footprint return their body; purely logical objects (the
// fountains) return nil and are skipped by the solver.
type Object interface {
	Body() *physics.Body
	Update(g *Game)
	Collide(g *Game, other Object)
}

// Wall is a static solid rectangle.
type Wall struct {
	body physics.Body
}

func NewWall(r geom.Rect) *Wall {
	w := &Wall{}
	w.body = physics.Body{
		Pos: geom.Vec{X: r.X, Y: r.Y}, W: r.W, H: r.H,
		Shape: physics.ShapeRect, Solid: true, Owner: w,
	}
	return w
}

func (w *Wall) Body() *physics.Body   { return &w.body }
func (w *Wall) Update(*Game)          {}
func (w *Wall) Collide(*Game, Object) {}

// TankSpawn marks where a tank of one team (re)enters the field.
type TankSpawn struct {
	Team  Team
	Angle float64
	body  physics.Body
}

func NewTankSpawn(pos geom.Vec, team Team, angle float64) *TankSpawn {
	s := &TankSpawn{Team: team, Angle: angle}
	s.body = physics.Body{
		Pos: pos, W: SpawnSize, H: SpawnSize,
		Shape: physics.ShapeRect, Owner: s,
	}
	return s
}

func (s *TankSpawn) Body() *physics.Body   { return &s.body }
func (s *TankSpawn) Update(*Game)          {}
func (s *TankSpawn) Collide(*Game, Object) {}

// ControlPoint is a capturable objective. While held it shifts one
// score point per step toward its team.
type ControlPoint struct {
	Team Team

	body physics.Body
	// touches per team this step, indexed by Team.
	touches [3]int
}

func NewControlPoint(pos geom.Vec) *ControlPoint {
	cp := &ControlPoint{Team: TeamNeutral}
	cp.body = physics.Body{
		Pos: pos, W: ControlPointSize, H: ControlPointSize,
		Shape: physics.ShapeCircle, Owner: cp,
	}
	return cp
}

func (cp *ControlPoint) Body() *physics.Body { return &cp.body }

func (cp *ControlPoint) Center() geom.Vec { return cp.body.Center() }

func (cp *ControlPoint) Update(g *Game) {
	cp.touches = [3]int{}
	switch cp.Team {
	case TeamRed:
		if g.scoreRed < g.settings.MaxScore {
			g.scoreRed++
			g.scoreBlue--
		}
	case TeamBlue:
		if g.scoreBlue < g.settings.MaxScore {
			g.scoreBlue++
			g.scoreRed--
		}
	}
}

func (cp *ControlPoint) Collide(g *Game, other Object) {
	tank, ok := other.(*Tank)
	if !ok {
		return
	}
	switch g.settings.Capture {
	case CaptureNeutral:
		if cp.touches[cp.Team] > 0 && cp.Team != tank.Team {
			cp.Team = TeamNeutral
		} else {
			cp.Team = tank.Team
			cp.touches[cp.Team]++
		}
	case CaptureFirst:
		if cp.touches[cp.Team] == 0 {
			cp.Team = tank.Team
			cp.touches[cp.Team]++
		}
	case CaptureMajority:
		cp.touches[tank.Team]++
		if cp.Team != tank.Team && cp.touches[tank.Team] == cp.touches[cp.Team] {
			cp.Team = TeamNeutral
		} else if cp.touches[tank.Team] > cp.touches[cp.Team] {
			cp.Team = tank.Team
		}
	}
}

// AmmoFountain owns one ammo source tile: it keeps a pickup there and
// refills it a fixed number of steps after it is taken.
type AmmoFountain struct {
	pos       geom.Vec // top-left of the pickup footprint
	respawnIn int
	live      *Ammo
}

func NewAmmoFountain(pos geom.Vec) *AmmoFountain {
	return &AmmoFountain{pos: pos}
}

func (f *AmmoFountain) Body() *physics.Body   { return nil }
func (f *AmmoFountain) Collide(*Game, Object) {}

func (f *AmmoFountain) Update(g *Game) {
	if f.live != nil {
		return
	}
	if f.respawnIn > 0 {
		f.respawnIn--
		return
	}
	f.live = newAmmo(f.pos, f)
	g.addObject(f.live)
}

func (f *AmmoFountain) taken(g *Game) {
	f.live = nil
	f.respawnIn = g.settings.AmmoRate
}

// Available reports whether the fountain currently holds a pickup.
func (f *AmmoFountain) Available() bool { return f.live != nil }

// Center of the fountain's tile footprint.
func (f *AmmoFountain) Center() geom.Vec {
	return geom.Vec{X: f.pos.X + AmmoSize/2, Y: f.pos.Y + AmmoSize/2}
}

// Ammo is a pickup granting a few shots to the first tank that
// touches it.
type Ammo struct {
	body     physics.Body
	fountain *AmmoFountain
	taken    bool
}

func newAmmo(pos geom.Vec, fountain *AmmoFountain) *Ammo {
	a := &Ammo{fountain: fountain}
	a.body = physics.Body{
		Pos: pos, W: AmmoSize, H: AmmoSize,
		Shape: physics.ShapeCircle, Owner: a,
	}
	return a
}

func (a *Ammo) Body() *physics.Body { return &a.body }
func (a *Ammo) Update(*Game)        {}

func (a *Ammo) Collide(g *Game, other Object) {
	tank, ok := other.(*Tank)
	if !ok || a.taken {
		return
	}
	a.taken = true
	tank.Ammo += g.settings.AmmoAmount
	tank.ammoPicked++
	a.fountain.taken(g)
	g.removeObject(a)
}

// CrumbFountain scatters crumb pickups around its tile. In crumbs mode
// its stock is finite and the game ends when all crumbs are gone; in
// score mode it replenishes forever.
type CrumbFountain struct {
	pos       geom.Vec
	stock     int
	countdown int
}

func NewCrumbFountain(pos geom.Vec, stock int) *CrumbFountain {
	return &CrumbFountain{pos: pos, stock: stock}
}

func (f *CrumbFountain) Body() *physics.Body   { return nil }
func (f *CrumbFountain) Collide(*Game, Object) {}

func (f *CrumbFountain) Update(g *Game) {
	if g.settings.End == EndCrumbs && f.stock <= 0 {
		return
	}
	if f.countdown > 0 {
		f.countdown--
		return
	}
	g.addObject(newCrumb(f.scatter(g)))
	f.stock--
	f.countdown = g.settings.AmmoRate
}

// Exhausted reports whether a finite fountain has nothing left to
// drop.
func (f *CrumbFountain) Exhausted() bool { return f.stock <= 0 }

// scatter picks a clear spot within two tiles of the fountain.
func (f *CrumbFountain) scatter(g *Game) geom.Vec {
	ts := g.field.TileSize
	home := geom.Cell{
		X: int(f.pos.X / ts),
		Y: int(f.pos.Y / ts),
	}
	grid := g.field.WallGrid()
	for tries := 0; tries < 20; tries++ {
		c := geom.Cell{
			X: home.X + g.rng.Intn(5) - 2,
			Y: home.Y + g.rng.Intn(5) - 2,
		}
		if grid.Passable(c) {
			center := g.field.TileCenter(c)
			return geom.Vec{X: center.X - CrumbSize/2, Y: center.Y - CrumbSize/2}
		}
	}
	return f.pos
}

// Crumb is a one-point pickup; collecting it shifts the score toward
// the collector's team.
type Crumb struct {
	body  physics.Body
	taken bool
}

func newCrumb(pos geom.Vec) *Crumb {
	c := &Crumb{}
	c.body = physics.Body{
		Pos: pos, W: CrumbSize, H: CrumbSize,
		Shape: physics.ShapeCircle, Owner: c,
	}
	return c
}

func (c *Crumb) Body() *physics.Body { return &c.body }
func (c *Crumb) Update(*Game)        {}

func (c *Crumb) Collide(g *Game, other Object) {
	tank, ok := other.(*Tank)
	if !ok || c.taken {
		return
	}
	c.taken = true
	g.shiftScore(tank.Team)
	g.removeObject(c)
}
