package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination/internal/field"
	"domination/internal/geom"
)

// Small hand-built arenas. One tank per team keeps the geometry easy
// to reason about.
const (
	openArena = `
w w w w w w w
w R _ _ _ B w
w w w w w w w`

	// The control point overlaps the red spawn tile's neighbour, so
	// red holds it from step one without moving.
	cpArena = `
w w w w w w w
w R C _ _ B w
w w w w w w w`

	// Red and blue in shooting range of each other.
	duelArena = `
w w w w w
w R _ B w
w w w w w`

	ammoArena = `
w R A _ B w
w w w w w w`

	crumbArena = `
w w w w w w w
w R _ F _ B w
w w w w w w w`
)

var (
	sleepyDur   time.Duration
	panickyActs int
)

type scriptBrain struct {
	act func() (Action, error)
}

func (b *scriptBrain) Observe(*Observation) error { return nil }
func (b *scriptBrain) Act() (Action, error)       { return b.act() }
func (b *scriptBrain) Finalize(bool) error        { return nil }

func script(act func() (Action, error)) Factory {
	return func(BrainContext) (Brain, error) {
		return &scriptBrain{act: act}, nil
	}
}

func init() {
	Register("test-stand", script(func() (Action, error) {
		return Action{}, nil
	}))
	Register("test-driver", script(func() (Action, error) {
		return Action{Speed: 10}, nil
	}))
	Register("test-wander", script(func() (Action, error) {
		return Action{Turn: 0.2, Speed: 8}, nil
	}))
	Register("test-gunner", script(func() (Action, error) {
		return Action{Shoot: true}, nil
	}))
	Register("test-sleepy", script(func() (Action, error) {
		time.Sleep(sleepyDur)
		return Action{Speed: 40}, nil
	}))
	Register("test-panicky", script(func() (Action, error) {
		panickyActs++
		panic("no thoughts")
	}))
	Register("test-badctor", func(BrainContext) (Brain, error) {
		return nil, errors.New("missing weights")
	})
}

func mustField(t *testing.T, text string) *field.Field {
	t.Helper()
	f, err := field.Parse(text)
	require.NoError(t, err)
	return f
}

func tinySettings() Settings {
	s := DefaultSettings()
	s.NumAgents = 1
	s.MaxSteps = 3
	return s
}

func tankCenters(g *Game) []geom.Vec {
	out := make([]geom.Vec, len(g.tanks))
	for i, t := range g.tanks {
		out[i] = t.Center()
	}
	return out
}

func TestGameRunsToMaxSteps(t *testing.T) {
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.Equal(t, StateReady, g.State())

	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, StateEnded, g.State())
	assert.Equal(t, 3, g.Steps())
	red, blue := g.Scores()
	assert.Equal(t, 500, red)
	assert.Equal(t, 500, blue)

	st := g.Stats()
	assert.InDelta(t, 0.5, st.Score, 1e-9)
	assert.False(t, st.Interrupted)
	assert.False(t, st.FaultRed)
}

func TestOneStepInertGame(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 1
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, openArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, StateEnded, g.State())
	assert.Equal(t, 1, g.Steps())
	red, blue := g.Scores()
	assert.Equal(t, red, blue, "nobody scored")
}

func TestFaultedSideStillLoses(t *testing.T) {
	s := tinySettings()
	s.MaxScore = 2
	arena := `
w w w w w w w
w R _ _ C B w
w w w w w w w`
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, arena),
		RedBrain:  "test-badctor",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.True(t, g.Faulted(TeamRed))

	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, StateEnded, g.State())
	red, blue := g.Scores()
	assert.Equal(t, 0, red)
	assert.Equal(t, 2, blue)
}

func TestRunRequiresReadyState(t *testing.T) {
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))
	assert.Error(t, g.Run(context.Background()))
}

func TestControlPointDrainsScore(t *testing.T) {
	s := tinySettings()
	s.MaxScore = 2
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, cpArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	// Red owns the point after step one; step two's scoring zeroes
	// blue and ends the game before its physics run.
	assert.Equal(t, 2, g.Steps())
	red, blue := g.Scores()
	assert.Equal(t, 2, red)
	assert.Equal(t, 0, blue)
	assert.Equal(t, TeamRed, g.controlPoints[0].Team)
	assert.InDelta(t, 1.0, g.Stats().Score, 1e-9)
}

func TestShootingStartsRespawnCountdown(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 2
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, duelArena),
		RedBrain:  "test-gunner",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)

	red, blue := g.tanks[0], g.tanks[1]
	require.Equal(t, TeamRed, red.Team)
	red.Ammo = 1

	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, 0, red.Ammo)
	// Hit in step one, one countdown tick in step two.
	assert.Equal(t, s.SpawnTime-1, blue.RespawnIn)
	assert.Equal(t, blue.spawn.body.Pos.X+spawnOffset, blue.body.Pos.X)
}

func TestDeadTankIgnoresActions(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 2
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, duelArena),
		RedBrain:  "test-gunner",
		BlueBrain: "test-driver",
	})
	require.NoError(t, err)
	g.tanks[0].Ammo = 1

	require.NoError(t, g.Run(context.Background()))

	blue := g.tanks[1]
	assert.Equal(t, blue.spawn.body.Pos.X+spawnOffset, blue.body.Pos.X,
		"dead tank must not move")
}

func TestAmmoPickup(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 2
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, ammoArena),
		RedBrain:  "test-driver",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	red := g.tanks[0]
	assert.Equal(t, s.AmmoAmount, red.Ammo)
	assert.Equal(t, 1, red.ammoPicked)
	require.Len(t, g.fountains, 1)
	assert.False(t, g.fountains[0].Available())
	assert.Equal(t, 1, g.Stats().AmmoRed)
}

func TestUnknownBrainGoesInert(t *testing.T) {
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "no-such-brain",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	assert.True(t, g.Faulted(TeamRed))
	assert.False(t, g.Faulted(TeamBlue))

	require.NoError(t, g.Run(context.Background()))
	assert.True(t, g.Stats().FaultRed)
}

func TestConstructorErrorGoesInert(t *testing.T) {
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "test-badctor",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	assert.True(t, g.Faulted(TeamRed))
}

func TestPanicRetiresTeam(t *testing.T) {
	panickyActs = 0
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "test-panicky",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, StateEnded, g.State())
	assert.Equal(t, 3, g.Steps())
	assert.True(t, g.Faulted(TeamRed))
	assert.Equal(t, 1, panickyActs, "retired brain must not be called again")
}

func TestThinkOverrunDropsAction(t *testing.T) {
	sleepyDur = 5 * time.Millisecond
	s := tinySettings()
	s.MaxSteps = 2
	s.ThinkTime = time.Millisecond
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, openArena),
		RedBrain:  "test-sleepy",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	start := g.tanks[0].Center()

	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, start, g.tanks[0].Center(), "overrun action must be dropped")
	assert.False(t, g.Faulted(TeamRed), "an overrun is not a fault")
}

func TestEnforcedDeadlineRetiresTeam(t *testing.T) {
	sleepyDur = 50 * time.Millisecond
	s := tinySettings()
	s.MaxSteps = 2
	s.ThinkTime = time.Millisecond
	s.EnforceThinkTime = true
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, openArena),
		RedBrain:  "test-sleepy",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	start := g.tanks[0].Center()

	require.NoError(t, g.Run(context.Background()))

	assert.True(t, g.Faulted(TeamRed))
	assert.Equal(t, start, g.tanks[0].Center())
}

func TestInterruptBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(ctx))

	assert.Equal(t, StateEnded, g.State())
	assert.Equal(t, 0, g.Steps())
	assert.True(t, g.Stats().Interrupted)
}

func TestCrumbModeEndsWhenExhausted(t *testing.T) {
	s := tinySettings()
	s.End = EndCrumbs
	s.CrumbStock = 0
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, crumbArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, 1, g.Steps())
	assert.Equal(t, StateEnded, g.State())
}

func TestCrumbFountainDrops(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 1
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, crumbArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
		Seed:      7,
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	assert.Equal(t, 1, g.crumbsLive)
	var found bool
	for _, o := range g.objects {
		if _, ok := o.(*Crumb); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCrumbPickupShiftsScore(t *testing.T) {
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, crumbArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)

	c := newCrumb(geom.Vec{X: 40, Y: 20})
	g.addObject(c)
	g.flushAdds()
	assert.Equal(t, 1, g.crumbsLive)

	red := g.tanks[0]
	c.Collide(g, red)
	red2, blue2 := g.Scores()
	assert.Equal(t, 501, red2)
	assert.Equal(t, 499, blue2)
	assert.Equal(t, 0, g.crumbsLive)

	// A second touch on the same crumb is a no-op.
	c.Collide(g, red)
	red2, _ = g.Scores()
	assert.Equal(t, 501, red2)

	g.flushRemovals()
	for _, o := range g.objects {
		assert.NotSame(t, c, o)
	}
}

func TestObservationContents(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 1
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, cpArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	obs := &g.tanks[0].obs
	assert.Equal(t, 1, obs.Step)
	assert.Equal(t, geom.Vec{X: 24, Y: 24}, obs.Loc)
	assert.Equal(t, -1, obs.RespawnIn)
	assert.Len(t, obs.CPs, 1)
	assert.Len(t, obs.Foes, 1, "blue is inside the view range")
	assert.Empty(t, obs.Friends)

	// 100-unit view over 16-unit tiles gives a 7x7 wall window.
	require.Len(t, obs.Walls, 7)
	require.Len(t, obs.Walls[0], 7)
	assert.True(t, obs.Walls[0][3], "out of bounds reads as wall")
	assert.False(t, obs.Walls[3][3], "own tile is clear")
}

func TestDeterministicAcrossRuns(t *testing.T) {
	run := func() *Game {
		s := DefaultSettings()
		s.MaxSteps = 8
		g, err := New(Config{
			Settings:  s,
			Seed:      42,
			RedBrain:  "test-wander",
			BlueBrain: "test-wander",
		})
		require.NoError(t, err)
		require.NoError(t, g.Run(context.Background()))
		return g
	}
	a, b := run(), run()

	assert.Equal(t, a.field.String(), b.field.String())
	assert.Equal(t, tankCenters(a), tankCenters(b))
	ar, ab := a.Scores()
	br, bb := b.Scores()
	assert.Equal(t, ar, br)
	assert.Equal(t, ab, bb)
}

type frameLog struct {
	frames []Frame
}

func (r *frameLog) Frame(f Frame) { r.frames = append(r.frames, f) }

func TestRendererGetsOneFramePerSubstep(t *testing.T) {
	s := tinySettings()
	s.MaxSteps = 1
	s.Substeps = 4
	log := &frameLog{}
	g, err := New(Config{
		Settings:  s,
		Field:     mustField(t, openArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
		Renderer:  log,
	})
	require.NoError(t, err)
	require.NoError(t, g.Run(context.Background()))

	require.Len(t, log.frames, 4)
	for i, f := range log.frames {
		assert.Equal(t, 1, f.Step)
		assert.Equal(t, i+1, f.Substep)
		assert.Len(t, f.Tanks, 2)
	}
}

func TestSelectTanksNormalizesRect(t *testing.T) {
	g, err := New(Config{
		Settings:  tinySettings(),
		Field:     mustField(t, openArena),
		RedBrain:  "test-stand",
		BlueBrain: "test-stand",
	})
	require.NoError(t, err)

	// Rectangle dragged up-left across the red tank.
	g.SelectTanks(geom.Rect{X: 40, Y: 40, W: -30, H: -30}, TeamRed)
	assert.True(t, g.tanks[0].Selected)
	assert.False(t, g.tanks[1].Selected)
}
