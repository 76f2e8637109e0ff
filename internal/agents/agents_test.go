package agents

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination/internal/game"
	"domination/internal/geom"
	"domination/internal/nav"
)

func TestBuiltinsRegistered(t *testing.T) {
	names := game.Brains()
	assert.Contains(t, names, "inert")
	assert.Contains(t, names, "pathfinder")
}

func TestInertDoesNothing(t *testing.T) {
	b, err := game.NewBrain("inert", game.BrainContext{})
	require.NoError(t, err)
	require.NoError(t, b.Observe(&game.Observation{}))
	a, err := b.Act()
	require.NoError(t, err)
	assert.Equal(t, game.Action{}, a)
}

func openGrid(w, h int) nav.Grid {
	g := make(nav.Grid, h)
	for y := range g {
		g[y] = make([]bool, w)
		for x := range g[y] {
			g[y][x] = true
		}
	}
	return g
}

func newBrain(t *testing.T, ctx game.BrainContext) game.Brain {
	t.Helper()
	ctx.Settings = game.DefaultSettings()
	if ctx.WallGrid == nil {
		ctx.WallGrid = openGrid(16, 16)
	}
	b, err := game.NewBrain("pathfinder", ctx)
	require.NoError(t, err)
	return b
}

func act(t *testing.T, b game.Brain, obs *game.Observation) game.Action {
	t.Helper()
	obs.RespawnIn = -1
	require.NoError(t, b.Observe(obs))
	a, err := b.Act()
	require.NoError(t, err)
	return a
}

func TestPathfinderDrivesTowardControlPoint(t *testing.T) {
	b := newBrain(t, game.BrainContext{})
	a := act(t, b, &game.Observation{
		Loc: geom.Vec{X: 0, Y: 0},
		CPs: []game.CPInfo{{Pos: geom.Vec{X: 100, Y: 0}, Team: game.TeamNeutral}},
	})
	assert.InDelta(t, 0, a.Turn, 1e-9)
	assert.InDelta(t, 100, a.Speed, 1e-9)
	assert.False(t, a.Shoot)
}

func TestPathfinderShootsClearFoe(t *testing.T) {
	b := newBrain(t, game.BrainContext{})
	a := act(t, b, &game.Observation{
		AmmoHeld: 1,
		Foes:     []game.FoeInfo{{Pos: geom.Vec{X: 30, Y: 0}}},
	})
	assert.True(t, a.Shoot)
	assert.InDelta(t, 0, a.Turn, 1e-9)
}

func TestPathfinderHoldsFireBehindWall(t *testing.T) {
	grid := openGrid(16, 16)
	grid[0][1] = false
	b := newBrain(t, game.BrainContext{WallGrid: grid})
	a := act(t, b, &game.Observation{
		Loc:      geom.Vec{X: 8, Y: 8},
		AmmoHeld: 1,
		Foes:     []game.FoeInfo{{Pos: geom.Vec{X: 40, Y: 8}}},
	})
	assert.False(t, a.Shoot)
}

func TestPathfinderShootsPastGrazedCorner(t *testing.T) {
	// The wall tile only touches the firing line at its corner, which
	// the grid traversal does not count as crossing.
	grid := openGrid(16, 16)
	grid[1][0] = false
	b := newBrain(t, game.BrainContext{WallGrid: grid})
	a := act(t, b, &game.Observation{
		Loc:      geom.Vec{X: 8, Y: 8},
		Angle:    math.Pi / 4,
		AmmoHeld: 1,
		Foes:     []game.FoeInfo{{Pos: geom.Vec{X: 24, Y: 24}}},
	})
	assert.True(t, a.Shoot)
}

func TestPathfinderTurnsBeforeShooting(t *testing.T) {
	b := newBrain(t, game.BrainContext{})
	a := act(t, b, &game.Observation{
		AmmoHeld: 1,
		Foes:     []game.FoeInfo{{Pos: geom.Vec{X: 0, Y: 30}}},
	})
	assert.False(t, a.Shoot, "ninety degrees off target")
	assert.InDelta(t, math.Pi/2, a.Turn, 1e-9)
}

func TestPathfinderSeeksAmmoWhenEmpty(t *testing.T) {
	b := newBrain(t, game.BrainContext{})
	a := act(t, b, &game.Observation{
		AmmoHeld: 0,
		Ammo:     []game.PickupInfo{{Pos: geom.Vec{X: 0, Y: 50}, Available: true}},
		CPs:      []game.CPInfo{{Pos: geom.Vec{X: 100, Y: 0}, Team: game.TeamNeutral}},
	})
	assert.InDelta(t, math.Pi/2, a.Turn, 1e-9, "ammo beats the control point")
}

func TestPathfinderPrefersCrumbs(t *testing.T) {
	b := newBrain(t, game.BrainContext{})
	a := act(t, b, &game.Observation{
		AmmoHeld: 2,
		Crumbs:   []game.PickupInfo{{Pos: geom.Vec{X: 0, Y: 40}, Available: true}},
		CPs:      []game.CPInfo{{Pos: geom.Vec{X: 100, Y: 0}, Team: game.TeamNeutral}},
	})
	assert.InDelta(t, math.Pi/2, a.Turn, 1e-9)
}

func TestPathfinderIdlesWhileDead(t *testing.T) {
	b := newBrain(t, game.BrainContext{})
	obs := &game.Observation{
		RespawnIn: 3,
		CPs:       []game.CPInfo{{Pos: geom.Vec{X: 100, Y: 0}}},
	}
	require.NoError(t, b.Observe(obs))
	a, err := b.Act()
	require.NoError(t, err)
	assert.Equal(t, game.Action{}, a)
}
