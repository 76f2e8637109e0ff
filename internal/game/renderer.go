package game

import "domination/internal/geom"

// TankView is one tank's interpolated render state.
type TankView struct {
	ID        int
	Team      Team
	Pos       geom.Vec // center
	Angle     float64
	Ammo      int
	RespawnIn int
	Selected  bool
}

// ShotView is a shot fired this step, from muzzle to impact.
type ShotView struct {
	Team     Team
	From, To geom.Vec
}

// Frame is the render state after one physics substep. Substep runs
// from 1 to Settings.Substeps within each step, so positions arrive
// already interpolated.
type Frame struct {
	Step      int
	Substep   int
	ScoreRed  int
	ScoreBlue int
	Tanks     []TankView
	Shots     []ShotView
	CPs       []CPInfo
}

// Renderer consumes frames. The engine never depends on a concrete
// implementation; attaching one also enables the UI event methods on
// Game (Click, KeyPress, SelectTanks).
type Renderer interface {
	Frame(f Frame)
}

func (g *Game) renderFrame(substep int) {
	if g.renderer == nil {
		return
	}
	f := Frame{
		Step:      g.steps,
		Substep:   substep,
		ScoreRed:  g.scoreRed,
		ScoreBlue: g.scoreBlue,
	}
	for _, t := range g.tanks {
		f.Tanks = append(f.Tanks, TankView{
			ID:        t.ID,
			Team:      t.Team,
			Pos:       t.Center(),
			Angle:     t.Angle,
			Ammo:      t.Ammo,
			RespawnIn: t.RespawnIn,
			Selected:  t.Selected,
		})
		if t.Shoots {
			f.Shots = append(f.Shots, ShotView{Team: t.Team, From: t.Center(), To: t.shotTarget})
		}
	}
	for _, cp := range g.controlPoints {
		f.CPs = append(f.CPs, CPInfo{Pos: cp.Center(), Team: cp.Team})
	}
	g.renderer.Frame(f)
}

// Click injects a right-click at a field position; the next
// observation passes it to the brains.
func (g *Game) Click(pos geom.Vec) {
	g.clicked = &pos
}

// KeyPress injects a key press for the next observation.
func (g *Game) KeyPress(key string) {
	g.keys = append(g.keys, key)
}

// SelectTanks marks the given team's tanks inside the rectangle as
// selected and deselects the rest. Negative extents are normalized.
func (g *Game) SelectTanks(r geom.Rect, team Team) {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	for _, t := range g.tanks {
		b := t.body.Bounds()
		hit := b.X < r.X+r.W && b.X+b.W > r.X && b.Y < r.Y+r.H && b.Y+b.H > r.Y
		t.Selected = hit && t.Team == team
	}
}
