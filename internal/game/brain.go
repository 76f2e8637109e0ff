package game

import (
	"fmt"
	"sort"
	"sync"

	"domination/internal/geom"
	"domination/internal/nav"
)

// Action is what a brain wants its tank to do this step. Turn and
// speed are clamped to the settings limits when applied.
type Action struct {
	Turn  float64 `msgpack:"turn"`
	Speed float64 `msgpack:"speed"`
	Shoot bool    `msgpack:"shoot"`
}

// Observation is the visibility-limited world state handed to a brain
// each step. Slices are reused between steps; brains must not retain
// them.
type Observation struct {
	Step     int
	Loc      geom.Vec
	Angle    float64
	AmmoHeld int
	Score    [2]int
	Collided bool
	// RespawnIn is -1 while alive, otherwise steps until respawn.
	RespawnIn int

	// Walls is the occupancy window around the tank, indexed [y][x],
	// true meaning wall or out of bounds.
	Walls [][]bool

	Friends []FriendInfo
	Foes    []FoeInfo
	CPs     []CPInfo
	Ammo    []PickupInfo
	Crumbs  []PickupInfo

	// UI state, only populated when a renderer is attached.
	Selected bool
	Clicked  *geom.Vec
	Keys     []string
}

// FriendInfo is a visible teammate.
type FriendInfo struct {
	Pos geom.Vec
}

// FoeInfo is a visible enemy tank.
type FoeInfo struct {
	Pos   geom.Vec
	Angle float64
}

// CPInfo is a control point. Control points are always observed,
// regardless of distance.
type CPInfo struct {
	Pos  geom.Vec
	Team Team
}

// PickupInfo is a visible ammo fountain or crumb.
type PickupInfo struct {
	Pos       geom.Vec
	Available bool
}

// MatchInfo is opaque match metadata passed through to brains and
// stats; the engine never interprets it.
type MatchInfo struct {
	ID       string
	RedName  string
	BlueName string
	Meta     map[string]string
}

// BrainContext is everything a brain gets at construction time.
type BrainContext struct {
	ID          int
	Team        Team
	Settings    Settings
	FieldBounds geom.Rect
	WallRects   []geom.Rect
	WallGrid    nav.Grid
	Mesh        nav.Mesh
	Coordinator *Coordinator
	Match       MatchInfo
	// Init carries caller-supplied arguments straight through.
	Init map[string]any
}

// Brain drives one tank. Implementations are untrusted: errors and
// panics from any method are contained by the engine and never abort
// the game.
type Brain interface {
	// Observe receives the world state for this step.
	Observe(obs *Observation) error
	// Act returns the tank's action for this step.
	Act() (Action, error)
	// Finalize is called exactly once when the game is over.
	Finalize(interrupted bool) error
}

// Factory builds a brain for one tank.
type Factory func(ctx BrainContext) (Brain, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a brain available under the given name. It panics on
// duplicates, like database/sql driver registration.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("game: brain %q registered twice", name))
	}
	registry[name] = f
}

// NewBrain constructs a registered brain. The factory's own failure is
// wrapped so callers can tell a missing name from a broken factory.
func NewBrain(name string, ctx BrainContext) (Brain, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("game: unknown brain %q", name)
	}
	b, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("game: brain %q: %w", name, err)
	}
	return b, nil
}

// Brains lists the registered brain names.
func Brains() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// InertBrain does nothing. It substitutes for brains that failed to
// construct and backs replay playback.
type InertBrain struct{}

func (InertBrain) Observe(*Observation) error { return nil }
func (InertBrain) Act() (Action, error)       { return Action{}, nil }
func (InertBrain) Finalize(bool) error        { return nil }
