// Package game runs the simulation: objects, tanks, brains, the step
// loop, scoring, and replay recording.
package game

import (
	"fmt"
	"math"
	"time"
)

// Team identifies a side. Neutral is used for unowned control points.
type Team uint8

const (
	TeamRed Team = iota
	TeamBlue
	TeamNeutral
)

func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	default:
		return "neutral"
	}
}

// Opponent of a playing team.
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamBlue
	}
	return TeamRed
}

// CaptureMode sets how control points change hands when tanks of both
// teams touch them in the same step.
type CaptureMode uint8

const (
	// CaptureNeutral flips a contested point back to neutral.
	CaptureNeutral CaptureMode = iota
	// CaptureFirst lets whoever touched first this step keep it.
	CaptureFirst
	// CaptureMajority gives the point to the team with more tanks on
	// it, neutral on a tie.
	CaptureMajority
)

// EndCondition selects when a game is over before max steps run out.
type EndCondition uint8

const (
	// EndScore ends when either team's score reaches zero.
	EndScore EndCondition = iota
	// EndCrumbs ends when every crumb has been collected.
	EndCrumbs
)

// Settings is the immutable rule set of one game.
type Settings struct {
	MaxSteps    int           `msgpack:"max_steps"`
	MaxScore    int           `msgpack:"max_score"` // must be even, split at start
	MaxTurn     float64       `msgpack:"max_turn"`  // radians per step
	MaxSpeed    float64       `msgpack:"max_speed"` // game units per step
	MaxRange    float64       `msgpack:"max_range"` // shooting distance
	MaxSee      float64       `msgpack:"max_see"`   // observation range
	AmmoRate    int           `msgpack:"ammo_rate"` // steps before a fountain refills
	AmmoAmount  int           `msgpack:"ammo_amount"`
	CrumbStock  int           `msgpack:"crumb_stock"` // crumbs per fountain in crumbs mode
	SpawnTime   int           `msgpack:"spawn_time"`  // steps dead after being shot
	ThinkTime   time.Duration `msgpack:"think_time"`  // budget per tank per step
	FieldWidth  int           `msgpack:"field_width"` // tiles, odd
	FieldHeight int           `msgpack:"field_height"`
	TileSize    float64       `msgpack:"tile_size"`
	NumAgents   int           `msgpack:"num_agents"` // tanks per team
	Capture     CaptureMode   `msgpack:"capture_mode"`
	End         EndCondition  `msgpack:"end_condition"`
	Substeps    int           `msgpack:"substeps"`
	SolverIter  int           `msgpack:"solver_iter"`

	// EnforceThinkTime runs brains under a hard deadline instead of
	// only measuring elapsed time. A brain that blows the deadline is
	// retired for the rest of the game.
	EnforceThinkTime bool `msgpack:"enforce_think_time"`
}

// DefaultSettings are the stock competition rules.
func DefaultSettings() Settings {
	return Settings{
		MaxSteps:    500,
		MaxScore:    1000,
		MaxTurn:     math.Pi / 3,
		MaxSpeed:    40,
		MaxRange:    60,
		MaxSee:      100,
		AmmoRate:    20,
		AmmoAmount:  3,
		CrumbStock:  5,
		SpawnTime:   10,
		ThinkTime:   10 * time.Millisecond,
		FieldWidth:  47,
		FieldHeight: 32,
		TileSize:    16,
		NumAgents:   5,
		Capture:     CaptureNeutral,
		End:         EndScore,
		Substeps:    10,
		SolverIter:  10,
	}
}

// Validate rejects rule sets the engine cannot run. Invalid settings
// are a construction error, never silently corrected.
func (s Settings) Validate() error {
	if s.MaxScore <= 0 || s.MaxScore%2 != 0 {
		return fmt.Errorf("settings: max score %d must be positive and even", s.MaxScore)
	}
	if s.FieldWidth%2 == 0 {
		return fmt.Errorf("settings: field width %d must be odd", s.FieldWidth)
	}
	if s.MaxSteps <= 0 {
		return fmt.Errorf("settings: max steps %d must be positive", s.MaxSteps)
	}
	if s.MaxSpeed < 0 || s.MaxRange < 0 || s.MaxSee < 0 {
		return fmt.Errorf("settings: speed/range/see limits must not be negative")
	}
	if s.NumAgents < 1 {
		return fmt.Errorf("settings: need at least one agent per team, got %d", s.NumAgents)
	}
	if s.TileSize <= 0 {
		return fmt.Errorf("settings: tile size %v must be positive", s.TileSize)
	}
	if s.Substeps < 1 || s.SolverIter < 1 {
		return fmt.Errorf("settings: substeps and solver iterations must be positive")
	}
	if s.AmmoRate < 0 || s.AmmoAmount < 0 || s.SpawnTime < 0 || s.CrumbStock < 0 {
		return fmt.Errorf("settings: timers and amounts must not be negative")
	}
	if s.ThinkTime <= 0 {
		return fmt.Errorf("settings: think time %v must be positive", s.ThinkTime)
	}
	if s.Capture > CaptureMajority {
		return fmt.Errorf("settings: unknown capture mode %d", s.Capture)
	}
	if s.End > EndCrumbs {
		return fmt.Errorf("settings: unknown end condition %d", s.End)
	}
	return nil
}
