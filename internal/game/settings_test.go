package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"domination/internal/geom"
)

func TestDefaultSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestSettingsValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"odd max score", func(s *Settings) { s.MaxScore = 999 }},
		{"zero max score", func(s *Settings) { s.MaxScore = 0 }},
		{"even field width", func(s *Settings) { s.FieldWidth = 46 }},
		{"zero max steps", func(s *Settings) { s.MaxSteps = 0 }},
		{"negative speed", func(s *Settings) { s.MaxSpeed = -1 }},
		{"no agents", func(s *Settings) { s.NumAgents = 0 }},
		{"zero tile size", func(s *Settings) { s.TileSize = 0 }},
		{"zero substeps", func(s *Settings) { s.Substeps = 0 }},
		{"negative spawn time", func(s *Settings) { s.SpawnTime = -1 }},
		{"zero think time", func(s *Settings) { s.ThinkTime = 0 }},
		{"bad capture mode", func(s *Settings) { s.Capture = CaptureMajority + 1 }},
		{"bad end condition", func(s *Settings) { s.End = EndCrumbs + 1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings()
			tc.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestTeamHelpers(t *testing.T) {
	assert.Equal(t, TeamBlue, TeamRed.Opponent())
	assert.Equal(t, TeamRed, TeamBlue.Opponent())
	assert.Equal(t, "red", TeamRed.String())
	assert.Equal(t, "blue", TeamBlue.String())
	assert.Equal(t, "neutral", TeamNeutral.String())
}

func TestCaptureNeutralContestsBack(t *testing.T) {
	g := &Game{settings: Settings{Capture: CaptureNeutral}}
	cp := NewControlPoint(geom.Vec{})
	red := &Tank{Team: TeamRed}
	blue := &Tank{Team: TeamBlue}

	cp.Collide(g, red)
	assert.Equal(t, TeamRed, cp.Team)
	cp.Collide(g, blue)
	assert.Equal(t, TeamNeutral, cp.Team)
	cp.Collide(g, blue)
	assert.Equal(t, TeamBlue, cp.Team)
}

func TestCaptureFirstKeepsHolder(t *testing.T) {
	g := &Game{settings: Settings{Capture: CaptureFirst}}
	cp := NewControlPoint(geom.Vec{})
	red := &Tank{Team: TeamRed}
	blue := &Tank{Team: TeamBlue}

	cp.Collide(g, red)
	cp.Collide(g, blue)
	cp.Collide(g, blue)
	assert.Equal(t, TeamRed, cp.Team, "first touch this step wins")

	// A new step resets the touches, so blue can take it.
	cp.touches = [3]int{}
	cp.Collide(g, blue)
	assert.Equal(t, TeamBlue, cp.Team)
}

func TestCaptureMajorityCountsTanks(t *testing.T) {
	g := &Game{settings: Settings{Capture: CaptureMajority}}
	cp := NewControlPoint(geom.Vec{})
	red := &Tank{Team: TeamRed}
	blue := &Tank{Team: TeamBlue}

	cp.Collide(g, red)
	cp.Collide(g, red)
	assert.Equal(t, TeamRed, cp.Team)
	cp.Collide(g, blue)
	assert.Equal(t, TeamRed, cp.Team, "minority does not flip it")
	cp.Collide(g, blue)
	assert.Equal(t, TeamNeutral, cp.Team, "a tie contests it back")
	cp.Collide(g, blue)
	assert.Equal(t, TeamBlue, cp.Team)
}
