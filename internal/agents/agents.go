// Package agents registers the built-in brains. Importing it for side
// effects makes "inert" and "pathfinder" available by name.
package agents

import (
	"math"

	"domination/internal/game"
	"domination/internal/geom"
	"domination/internal/nav"
)

func init() {
	game.Register("inert", func(game.BrainContext) (game.Brain, error) {
		return game.InertBrain{}, nil
	})
	game.Register("pathfinder", newPathfinder)
}

// pathfinder is the reference brain: it walks the nav mesh toward the
// nearest objective and shoots at enemies it has a clear line to.
type pathfinder struct {
	id       int
	team     game.Team
	settings game.Settings
	grid     nav.Grid
	tile     float64
	mesh     nav.Mesh

	loc     geom.Vec
	angle   float64
	ammo    int
	dead    bool
	foes    []game.FoeInfo
	cps     []game.CPInfo
	pickups []game.PickupInfo
	crumbs  []game.PickupInfo
}

func newPathfinder(ctx game.BrainContext) (game.Brain, error) {
	return &pathfinder{
		id:       ctx.ID,
		team:     ctx.Team,
		settings: ctx.Settings,
		grid:     ctx.WallGrid,
		tile:     ctx.Settings.TileSize,
		mesh:     ctx.Mesh,
	}, nil
}

// Observe copies what Act needs; the observation's slices are reused
// by the engine.
func (p *pathfinder) Observe(obs *game.Observation) error {
	p.loc = obs.Loc
	p.angle = obs.Angle
	p.ammo = obs.AmmoHeld
	p.dead = obs.RespawnIn >= 0
	p.foes = append(p.foes[:0], obs.Foes...)
	p.cps = append(p.cps[:0], obs.CPs...)
	p.pickups = append(p.pickups[:0], obs.Ammo...)
	p.crumbs = append(p.crumbs[:0], obs.Crumbs...)
	return nil
}

func (p *pathfinder) Act() (game.Action, error) {
	if p.dead {
		return game.Action{}, nil
	}
	if a, ok := p.tryShoot(); ok {
		return a, nil
	}
	return p.drive(p.goal()), nil
}

func (p *pathfinder) Finalize(bool) error { return nil }

// tryShoot aims at the closest enemy that is in range with a clear
// line of fire.
func (p *pathfinder) tryShoot() (game.Action, bool) {
	if p.ammo == 0 {
		return game.Action{}, false
	}
	best := -1
	bestD := p.settings.MaxRange
	for i, f := range p.foes {
		if d := dist(p.loc, f.Pos); d <= bestD && nav.GridClear(p.loc, f.Pos, p.grid, p.tile) {
			best, bestD = i, d
		}
	}
	if best < 0 {
		return game.Action{}, false
	}
	turn := p.turnTo(p.foes[best].Pos)
	// Hold fire until the barrel is actually pointing at the target.
	return game.Action{Turn: turn, Shoot: math.Abs(turn) < 0.1}, true
}

// goal picks a destination: crumbs first, then ammo when empty, then
// the closest contestable control point, spread across teammates by
// agent ID.
func (p *pathfinder) goal() geom.Vec {
	if g, ok := nearestAvailable(p.loc, p.crumbs); ok {
		return g
	}
	if p.ammo == 0 {
		if g, ok := nearestAvailable(p.loc, p.pickups); ok {
			return g
		}
	}
	var open []game.CPInfo
	for _, cp := range p.cps {
		if cp.Team != p.team {
			open = append(open, cp)
		}
	}
	if len(open) == 0 {
		open = p.cps
	}
	if len(open) == 0 {
		return p.loc
	}
	target := open[0]
	for _, cp := range open[1:] {
		if dist(p.loc, cp.Pos) < dist(p.loc, target.Pos) {
			target = cp
		}
	}
	if len(open) > 1 {
		target = open[p.id%len(open)]
	}
	return target.Pos
}

// drive turns toward the next path waypoint and throttles down for
// sharp turns so the tank does not orbit its goal.
func (p *pathfinder) drive(goal geom.Vec) game.Action {
	wp := goal
	if path, _, ok := nav.FindPath(p.loc, goal, p.mesh, p.grid, p.tile); ok && len(path) > 0 {
		wp = path[0]
	}
	turn := p.turnTo(wp)
	speed := dist(p.loc, wp)
	if math.Abs(turn) > p.settings.MaxTurn {
		speed *= 0.5
	}
	return game.Action{Turn: turn, Speed: speed}
}

func (p *pathfinder) turnTo(target geom.Vec) float64 {
	want := math.Atan2(target.Y-p.loc.Y, target.X-p.loc.X)
	return geom.AngleNorm(want - p.angle)
}

func nearestAvailable(from geom.Vec, pickups []game.PickupInfo) (geom.Vec, bool) {
	best := geom.Vec{}
	bestD := math.Inf(1)
	for _, pk := range pickups {
		if !pk.Available {
			continue
		}
		if d := dist(from, pk.Pos); d < bestD {
			best, bestD = pk.Pos, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}

func dist(a, b geom.Vec) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
