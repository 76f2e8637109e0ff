package game

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"domination/internal/field"
	"domination/internal/geom"
	"domination/internal/metrics"
	"domination/internal/physics"
)

// State of a game's lifecycle.
type State uint8

const (
	StateNew State = iota
	StateReady
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	default:
		return "ended"
	}
}

// Config assembles one game. The zero value of Settings selects the
// defaults. Exactly one of the brain names per team is required unless
// Replay is set, in which case brains are ignored and actions are fed
// from the recording.
type Config struct {
	Settings Settings
	// Field overrides procedural generation. When nil a map is
	// generated from FieldConfig (or defaults derived from Settings).
	Field       *field.Field
	FieldConfig *field.Config

	RedBrain  string
	BlueBrain string
	RedInit   map[string]any
	BlueInit  map[string]any

	Seed   int64
	Record bool
	Replay *ReplayData

	Renderer Renderer
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Match    MatchInfo
}

// Game is one running match. Build it with New, drive it with Run.
type Game struct {
	settings Settings
	field    *field.Field
	world    *physics.World
	rng      *rand.Rand
	log      zerolog.Logger
	metrics  *metrics.Metrics
	renderer Renderer
	match    MatchInfo

	state       State
	interrupted bool
	steps       int
	scoreRed    int
	scoreBlue   int
	seed        int64
	record      bool
	playback    *ReplayData
	recorded    *ReplayData

	objects       []Object
	tanks         []*Tank
	controlPoints []*ControlPoint
	fountains     []*AmmoFountain
	crumbSources  []*CrumbFountain
	crumbsLive    int
	pendingAdd    []Object
	pendingRemove []Object

	coordRed   *Coordinator
	coordBlue  *Coordinator
	faulted    [2]bool
	faultLimit [2]*rate.Limiter

	thinkRedTotal  time.Duration
	thinkBlueTotal time.Duration

	clicked *geom.Vec
	keys    []string
}

// New validates the configuration, builds the field, the physics
// world, every object and the brains, and leaves the game ready to
// run. A brain whose constructor fails flags its team and is replaced
// by an inert stub; the game is still playable.
func New(cfg Config) (*Game, error) {
	settings := cfg.Settings
	if settings == (Settings{}) {
		settings = DefaultSettings()
	}
	seed := cfg.Seed
	if cfg.Replay != nil {
		settings = cfg.Replay.Settings
		seed = cfg.Replay.Seed
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	g := &Game{
		settings:  settings,
		rng:       rand.New(rand.NewSource(seed)),
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
		renderer:  cfg.Renderer,
		match:     cfg.Match,
		state:     StateNew,
		seed:      seed,
		record:    cfg.Record,
		playback:  cfg.Replay,
		world:     physics.NewWorld(settings.SolverIter),
		coordRed:  NewCoordinator(),
		coordBlue: NewCoordinator(),
		faultLimit: [2]*rate.Limiter{
			rate.NewLimiter(rate.Every(time.Second), 5),
			rate.NewLimiter(rate.Every(time.Second), 5),
		},
		scoreRed:  settings.MaxScore / 2,
		scoreBlue: settings.MaxScore / 2,
	}

	if err := g.setupField(cfg); err != nil {
		return nil, err
	}
	g.setupObjects()
	if err := g.setupTanks(cfg); err != nil {
		return nil, err
	}
	g.state = StateReady
	return g, nil
}

func (g *Game) setupField(cfg Config) error {
	switch {
	case cfg.Replay != nil:
		f, err := field.Parse(cfg.Replay.FieldText)
		if err != nil {
			return err
		}
		f.TileSize = g.settings.TileSize
		g.field = f
	case cfg.Field != nil:
		g.field = cfg.Field
	default:
		fc := field.DefaultConfig()
		if cfg.FieldConfig != nil {
			fc = *cfg.FieldConfig
		} else {
			fc.Width = g.settings.FieldWidth
			fc.Height = g.settings.FieldHeight
			fc.TileSize = g.settings.TileSize
			fc.Spawns = g.settings.NumAgents
			if g.settings.End == EndCrumbs {
				fc.Crumbs = 4
			}
		}
		f, err := field.Generate(fc, rand.New(rand.NewSource(g.seed)))
		if err != nil {
			return err
		}
		g.field = f
	}
	return nil
}

// setupObjects turns the field into game objects, added in a fixed
// order so body ids, and with them callback order, are reproducible.
func (g *Game) setupObjects() {
	f := g.field
	ts := f.TileSize
	for _, r := range f.WallRects() {
		g.attach(NewWall(r))
	}
	for _, c := range f.Find(field.ControlPoint) {
		pos := geom.Vec{
			X: float64(c.X)*ts + (ts-ControlPointSize)/2,
			Y: float64(c.Y)*ts + (ts-ControlPointSize)/2,
		}
		cp := NewControlPoint(pos)
		g.controlPoints = append(g.controlPoints, cp)
		g.attach(cp)
	}
	for _, c := range f.Find(field.AmmoSource) {
		pos := geom.Vec{
			X: float64(c.X)*ts + (ts-AmmoSize)/2,
			Y: float64(c.Y)*ts + (ts-AmmoSize)/2,
		}
		af := NewAmmoFountain(pos)
		g.fountains = append(g.fountains, af)
		g.attach(af)
	}
	for _, c := range f.Find(field.CrumbSource) {
		pos := geom.Vec{
			X: float64(c.X)*ts + (ts-AmmoSize)/2,
			Y: float64(c.Y)*ts + (ts-AmmoSize)/2,
		}
		cf := NewCrumbFountain(pos, g.settings.CrumbStock)
		g.crumbSources = append(g.crumbSources, cf)
		g.attach(cf)
	}
}

func (g *Game) setupTanks(cfg Config) error {
	spawns := func(tile field.Tile, team Team, angle float64) []*TankSpawn {
		var out []*TankSpawn
		ts := g.field.TileSize
		for _, c := range g.field.Find(tile) {
			pos := geom.Vec{
				X: float64(c.X)*ts + (ts-SpawnSize)/2,
				Y: float64(c.Y)*ts + (ts-SpawnSize)/2,
			}
			s := NewTankSpawn(pos, team, angle)
			g.attach(s)
			out = append(out, s)
		}
		return out
	}
	reds := spawns(field.RedSpawn, TeamRed, field.SpawnAngleRed)
	blues := spawns(field.BlueSpawn, TeamBlue, field.SpawnAngleBlue)
	if len(reds) < g.settings.NumAgents || len(blues) < g.settings.NumAgents {
		return fmt.Errorf("game: field has %d/%d spawns, need %d per team",
			len(reds), len(blues), g.settings.NumAgents)
	}

	build := func(i int, s *TankSpawn, name string, init map[string]any) *Tank {
		var brain Brain = InertBrain{}
		if g.playback == nil {
			ctx := BrainContext{
				ID:          i,
				Team:        s.Team,
				Settings:    g.settings,
				FieldBounds: g.field.Bounds(),
				WallRects:   g.field.WallRects(),
				WallGrid:    g.field.WallGrid(),
				Mesh:        g.field.Mesh(),
				Coordinator: g.coordinator(s.Team),
				Match:       g.match,
				Init:        init,
			}
			b, err := NewBrain(name, ctx)
			if err != nil {
				g.faulted[s.Team] = true
				g.log.Warn().Err(err).Str("team", s.Team.String()).Int("agent", i).
					Msg("brain construction failed, going inert")
				g.metrics.BrainFault(s.Team.String())
			} else {
				brain = b
			}
		}
		t := newTank(i, s, brain)
		if g.playback != nil {
			actions := g.playback.ActionsRed
			if s.Team == TeamBlue {
				actions = g.playback.ActionsBlue
			}
			if i < len(actions) {
				t.actions = actions[i]
			}
		}
		g.tanks = append(g.tanks, t)
		g.attach(t)
		return t
	}
	for i := 0; i < g.settings.NumAgents; i++ {
		build(i, reds[i], cfg.RedBrain, cfg.RedInit)
	}
	for i := 0; i < g.settings.NumAgents; i++ {
		build(i, blues[i], cfg.BlueBrain, cfg.BlueInit)
	}
	return nil
}

// attach registers an object immediately, during setup.
func (g *Game) attach(o Object) {
	g.objects = append(g.objects, o)
	if b := o.Body(); b != nil {
		g.world.Add(b)
	}
}

// addObject queues an object spawned mid-step; it joins the world at
// the next flush point.
func (g *Game) addObject(o Object) {
	g.pendingAdd = append(g.pendingAdd, o)
	if _, ok := o.(*Crumb); ok {
		g.crumbsLive++
	}
}

// removeObject queues an object for removal after the substep loop.
func (g *Game) removeObject(o Object) {
	g.pendingRemove = append(g.pendingRemove, o)
	if _, ok := o.(*Crumb); ok {
		g.crumbsLive--
	}
}

func (g *Game) flushAdds() {
	for _, o := range g.pendingAdd {
		g.attach(o)
	}
	g.pendingAdd = g.pendingAdd[:0]
}

func (g *Game) flushRemovals() {
	for _, o := range g.pendingRemove {
		if b := o.Body(); b != nil {
			g.world.Remove(b)
		}
		for i, x := range g.objects {
			if x == o {
				g.objects = append(g.objects[:i], g.objects[i+1:]...)
				break
			}
		}
	}
	g.pendingRemove = g.pendingRemove[:0]
}

func (g *Game) coordinator(team Team) *Coordinator {
	if team == TeamRed {
		return g.coordRed
	}
	return g.coordBlue
}

// shiftScore moves one point toward the given team, bounded by the
// rule that neither score exceeds the maximum.
func (g *Game) shiftScore(team Team) {
	switch team {
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

// State reports the lifecycle state.
func (g *Game) State() State { return g.state }

// Scores returns the current red and blue scores.
func (g *Game) Scores() (red, blue int) { return g.scoreRed, g.scoreBlue }

// Steps run so far.
func (g *Game) Steps() int { return g.steps }

// Field the game is played on.
func (g *Game) Field() *field.Field { return g.field }

// Faulted reports whether the team has been flagged for a brain
// fault.
func (g *Game) Faulted(team Team) bool { return g.faulted[team] }

// Stats of the game; meaningful once it has ended.
func (g *Game) Stats() Stats { return g.stats() }

// Replay returns the recording, or nil when the game was not run with
// Record set.
func (g *Game) Replay() *ReplayData { return g.recorded }

// Run plays the game to its end. Cancelling the context interrupts it
// between steps; interruption is a controlled shutdown, not an error,
// and still finalizes brains and produces stats and the recording.
func (g *Game) Run(ctx context.Context) error {
	if g.state != StateReady {
		return fmt.Errorf("game: cannot run in state %s", g.state)
	}
	g.state = StateRunning

	for s := 0; s < g.settings.MaxSteps; s++ {
		if ctx.Err() != nil {
			g.interrupted = true
			break
		}
		if done := g.runStep(); done {
			break
		}
	}
	g.finish()
	return nil
}

// runStep advances one full step and reports whether an end condition
// fired.
func (g *Game) runStep() bool {
	stepStart := time.Now()
	g.steps++

	for _, o := range g.objects {
		o.Update(g)
	}
	g.flushAdds()

	for _, t := range g.tanks {
		obs := t.observe(g)
		start := time.Now()
		g.safeObserve(t, obs)
		t.thought = time.Since(start)
		obs.Collided = false
	}

	for _, t := range g.tanks {
		g.actTank(t)
	}

	for _, t := range g.tanks {
		if !t.Shoots {
			continue
		}
		from := t.Center()
		target := geom.Vec{
			X: from.X + math.Cos(t.Angle)*g.settings.MaxRange,
			Y: from.Y + math.Sin(t.Angle)*g.settings.MaxRange,
		}
		t.shotTarget = target
		hits := g.world.Raycast(from, target, &t.body)
		if len(hits) > 0 {
			t.shotTarget = hits[0].P
			if victim, ok := hits[0].Body.Owner.(*Tank); ok {
				victim.RespawnIn = g.settings.SpawnTime
			}
		}
	}

	for _, t := range g.tanks {
		g.metrics.ObserveThink(t.Team.String(), t.thought)
		if t.Team == TeamRed {
			g.thinkRedTotal += t.thought
		} else {
			g.thinkBlueTotal += t.thought
		}
	}

	if g.scoreRed == 0 || g.scoreBlue == 0 {
		return true
	}
	if g.settings.End == EndCrumbs && g.crumbsExhausted() {
		return true
	}

	g.clicked = nil
	g.keys = nil

	g.world.BeginStep(g.settings.Substeps)
	for _, t := range g.tanks {
		if t.RespawnIn == g.settings.SpawnTime {
			t.respawn()
		}
	}

	simStart := time.Now()
	for i := 1; i <= g.settings.Substeps; i++ {
		passes := g.world.Substep(g.collide)
		g.metrics.SetSolverIterations(passes)
		g.renderFrame(i)
	}
	g.metrics.ObserveSim(time.Since(simStart))

	g.world.Commit()
	for _, t := range g.tanks {
		t.Angle = geom.AngleNorm(t.Angle)
	}
	g.flushRemovals()
	g.metrics.ObserveStep(time.Since(stepStart))
	return false
}

func (g *Game) crumbsExhausted() bool {
	if g.crumbsLive > 0 {
		return false
	}
	for _, f := range g.crumbSources {
		if !f.Exhausted() {
			return false
		}
	}
	return len(g.crumbSources) > 0
}

func (g *Game) collide(a, b *physics.Body) {
	ao, aok := a.Owner.(Object)
	bo, bok := b.Owner.(Object)
	if aok && bok {
		ao.Collide(g, bo)
		bo.Collide(g, ao)
	}
}

// actTank obtains and applies one tank's action: from the replay
// queue in playback, from the brain otherwise, with the think-time
// budget enforced and every action recorded when requested.
func (g *Game) actTank(t *Tank) {
	var a Action
	if g.playback != nil {
		if t.next < len(t.actions) {
			a = t.actions[t.next]
			t.next++
		}
	} else {
		start := time.Now()
		a = g.safeAct(t)
		t.thought += time.Since(start)
		if t.thought > g.settings.ThinkTime {
			a = Action{}
			g.metrics.ThinkOverrun(t.Team.String())
			if g.faultLimit[t.Team].Allow() {
				g.log.Warn().Str("team", t.Team.String()).Int("agent", t.ID).
					Dur("thought", t.thought).Msg("think budget exceeded, action dropped")
			}
			if g.settings.EnforceThinkTime {
				g.retire(t.Team)
			}
		}
		if g.record {
			t.actions = append(t.actions, a)
		}
	}
	t.apply(&g.settings, a)
}

func (g *Game) safeObserve(t *Tank, obs *Observation) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.brain.Observe(obs)
	}()
	if err != nil {
		g.brainFault(t, "observe", err)
	}
}

func (g *Game) safeAct(t *Tank) Action {
	if g.settings.EnforceThinkTime {
		return g.deadlineAct(t)
	}
	a, err := func() (a Action, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.brain.Act()
	}()
	if err != nil {
		g.brainFault(t, "act", err)
		return Action{}
	}
	return a
}

// deadlineAct runs the brain on its own goroutine under a hard timer.
// A brain that misses the deadline has its whole team retired, so a
// stuck goroutine is never called into again.
func (g *Game) deadlineAct(t *Tank) Action {
	type result struct {
		a   Action
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		a, err := t.brain.Act()
		ch <- result{a: a, err: err}
	}()

	budget := g.settings.ThinkTime - t.thought
	if budget < 0 {
		budget = 0
	}
	timer := time.NewTimer(budget)
	defer timer.Stop()
	select {
	case res := <-ch:
		if res.err != nil {
			g.brainFault(t, "act", res.err)
			return Action{}
		}
		return res.a
	case <-timer.C:
		g.metrics.ThinkOverrun(t.Team.String())
		g.log.Warn().Str("team", t.Team.String()).Int("agent", t.ID).
			Msg("deadline missed, retiring team")
		g.retire(t.Team)
		return Action{}
	}
}

func (g *Game) safeFinalize(t *Tank, interrupted bool) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.brain.Finalize(interrupted)
	}()
	if err != nil {
		g.brainFault(t, "finalize", err)
	}
}

// brainFault flags the team, logs it (throttled), and retires the
// team to inert stubs. Faults never propagate out of the engine.
func (g *Game) brainFault(t *Tank, op string, err error) {
	g.faulted[t.Team] = true
	g.metrics.BrainFault(t.Team.String())
	if g.faultLimit[t.Team].Allow() {
		g.log.Warn().Err(err).Str("team", t.Team.String()).Int("agent", t.ID).
			Str("op", op).Msg("brain fault, team going inert")
	}
	g.retire(t.Team)
}

func (g *Game) retire(team Team) {
	g.faulted[team] = true
	for _, t := range g.tanks {
		if t.Team == team {
			t.brain = InertBrain{}
		}
	}
}

// finish closes out the game: records the replay, finalizes every
// brain exactly once, and logs the outcome.
func (g *Game) finish() {
	g.state = StateEnded

	if g.record {
		settings := g.settings
		// A game interrupted before its first step still has to round-trip
		// through Validate on playback.
		settings.MaxSteps = max(g.steps, 1)
		r := &ReplayData{
			Version:   ReplayVersion,
			Settings:  settings,
			FieldText: g.field.String(),
			Seed:      g.seed,
		}
		for _, t := range g.tanks {
			if t.Team == TeamRed {
				r.ActionsRed = append(r.ActionsRed, t.actions)
			} else {
				r.ActionsBlue = append(r.ActionsBlue, t.actions)
			}
		}
		g.recorded = r
	}

	if g.playback == nil {
		for _, t := range g.tanks {
			g.safeFinalize(t, g.interrupted)
		}
	}

	g.metrics.GameCompleted()
	g.log.Info().
		Int("steps", g.steps).
		Int("score_red", g.scoreRed).
		Int("score_blue", g.scoreBlue).
		Bool("interrupted", g.interrupted).
		Msg("game ended")
}
