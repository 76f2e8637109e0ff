package game

import (
	"math"
	"time"

	"domination/internal/geom"
	"domination/internal/physics"
)

// spawnOffset centers a tank on its 16-unit spawn tile.
const spawnOffset = (SpawnSize - TankSize) / 2

// Tank is one agent's vehicle. Tanks are circles, always solid and
// movable, and are never removed: being shot starts a respawn
// countdown and teleports the tank back to its spawn.
type Tank struct {
	ID    int
	Team  Team
	Angle float64
	Ammo  int
	// RespawnIn is -1 while alive, otherwise steps until respawn.
	RespawnIn int
	Shoots    bool
	Selected  bool

	body  physics.Body
	spawn *TankSpawn
	brain Brain

	// actions is the recorded or replayed action list; next indexes
	// the replay cursor.
	actions []Action
	next    int

	obs        Observation
	gridCell   geom.Cell
	gridValid  bool
	thought    time.Duration
	shotTarget geom.Vec
	ammoPicked int
}

func newTank(id int, spawn *TankSpawn, brain Brain) *Tank {
	t := &Tank{
		ID:        id,
		Team:      spawn.Team,
		Angle:     spawn.Angle,
		RespawnIn: -1,
		spawn:     spawn,
		brain:     brain,
	}
	t.body = physics.Body{
		Pos: geom.Vec{X: spawn.body.Pos.X + spawnOffset, Y: spawn.body.Pos.Y + spawnOffset},
		W:   TankSize, H: TankSize,
		Shape: physics.ShapeCircle, Solid: true, Movable: true,
		Owner: t,
	}
	return t
}

func (t *Tank) Body() *physics.Body { return &t.body }

// Center of the tank at its working position.
func (t *Tank) Center() geom.Vec { return t.body.Center() }

func (t *Tank) Update(*Game) {
	if t.RespawnIn == 0 {
		t.RespawnIn = -1
	} else if t.RespawnIn > 0 {
		t.RespawnIn--
	}
}

func (t *Tank) Collide(_ *Game, other Object) {
	switch other.(type) {
	case *Tank, *Wall:
		t.obs.Collided = true
	}
}

// apply clamps and applies an action. Dead tanks ignore their action
// entirely.
func (t *Tank) apply(s *Settings, a Action) {
	t.Shoots = false
	if t.RespawnIn != -1 {
		return
	}
	turn := geom.AngleNorm(a.Turn)
	turn = math.Max(-s.MaxTurn, math.Min(s.MaxTurn, turn))
	speed := math.Min(s.MaxSpeed, a.Speed)

	t.Angle += turn
	t.body.Pos.X += math.Cos(t.Angle) * speed
	t.body.Pos.Y += math.Sin(t.Angle) * speed
	if a.Shoot && t.Ammo > 0 {
		t.Shoots = true
		t.Ammo--
	}
}

// respawn teleports the tank home with empty ammo.
func (t *Tank) respawn() {
	t.Ammo = 0
	t.Angle = t.spawn.Angle
	t.body.Teleport(geom.Vec{
		X: t.spawn.body.Pos.X + spawnOffset,
		Y: t.spawn.body.Pos.Y + spawnOffset,
	})
}

// observe fills the tank's reusable observation from the game state.
func (t *Tank) observe(g *Game) *Observation {
	s := &g.settings
	obs := &t.obs
	obs.Step = g.steps
	obs.Loc = t.Center()
	obs.Angle = t.Angle
	obs.AmmoHeld = t.Ammo
	obs.RespawnIn = t.RespawnIn
	obs.Score = [2]int{g.scoreRed, g.scoreBlue}
	obs.Friends = obs.Friends[:0]
	obs.Foes = obs.Foes[:0]
	obs.Ammo = obs.Ammo[:0]
	obs.Crumbs = obs.Crumbs[:0]
	obs.CPs = obs.CPs[:0]
	obs.Selected = t.Selected
	obs.Clicked = g.clicked
	obs.Keys = g.keys

	rng := s.MaxSee
	view := geom.Rect{
		X: t.body.Sim.X - rng,
		Y: t.body.Sim.Y - rng,
		W: t.body.W + 2*rng,
		H: t.body.H + 2*rng,
	}
	for _, b := range g.world.InBounds(view, false) {
		switch o := b.Owner.(type) {
		case *Tank:
			if o == t {
				continue
			}
			if o.Team == t.Team {
				obs.Friends = append(obs.Friends, FriendInfo{Pos: o.Center()})
			} else {
				obs.Foes = append(obs.Foes, FoeInfo{Pos: o.Center(), Angle: o.Angle})
			}
		case *Ammo:
			obs.Ammo = append(obs.Ammo, PickupInfo{Pos: b.Center(), Available: !o.taken})
		case *Crumb:
			obs.Crumbs = append(obs.Crumbs, PickupInfo{Pos: b.Center(), Available: !o.taken})
		}
	}
	// Fountains without a live pickup still show up, empty, so brains
	// can camp them.
	for _, f := range g.fountains {
		if !f.Available() && view.Contains(f.Center()) {
			obs.Ammo = append(obs.Ammo, PickupInfo{Pos: f.Center(), Available: false})
		}
	}
	for _, cp := range g.controlPoints {
		obs.CPs = append(obs.CPs, CPInfo{Pos: cp.Center(), Team: cp.Team})
	}

	t.observeWalls(g)
	return obs
}

// observeWalls refreshes the wall window, but only when the tank moved
// to a different tile since the last refresh.
func (t *Tank) observeWalls(g *Game) {
	f := g.field
	loc := t.obs.Loc
	cell := geom.Cell{X: int(loc.X / f.TileSize), Y: int(loc.Y / f.TileSize)}
	if t.gridValid && cell == t.gridCell {
		return
	}
	t.gridCell = cell
	t.gridValid = true

	half := int(g.settings.MaxSee/2+1) / int(f.TileSize)
	size := 2*half + 1
	if len(t.obs.Walls) != size {
		t.obs.Walls = make([][]bool, size)
		for i := range t.obs.Walls {
			t.obs.Walls[i] = make([]bool, size)
		}
	}
	grid := f.WallGrid()
	for oy := 0; oy < size; oy++ {
		for ox := 0; ox < size; ox++ {
			c := geom.Cell{X: cell.X - half + ox, Y: cell.Y - half + oy}
			t.obs.Walls[oy][ox] = !grid.Passable(c)
		}
	}
}
