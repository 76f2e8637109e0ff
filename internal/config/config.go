// Package config loads runner configuration from defaults, an
// optional YAML file, and DOM_* environment variables, in that order
// of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"domination/internal/game"
)

// Config is everything the headless runner needs.
type Config struct {
	// LogLevel is a zerolog level name (trace..panic).
	LogLevel  string
	LogPretty bool
	// DebugAddr enables the local metrics/pprof server when set,
	// e.g. "localhost:6060".
	DebugAddr string

	RedBrain  string
	BlueBrain string
	Games     int
	Parallel  int
	Seed      int64

	// FieldFile loads a fixed map instead of generating one.
	FieldFile string
	// RecordTo writes the first game's replay to this path.
	RecordTo string
	// ReplayFrom plays back a recorded game instead of running brains.
	ReplayFrom string

	Game game.Settings
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("debug.addr", "")

	v.SetDefault("run.red", "pathfinder")
	v.SetDefault("run.blue", "pathfinder")
	v.SetDefault("run.games", 1)
	v.SetDefault("run.parallel", 1)
	v.SetDefault("run.seed", 0)
	v.SetDefault("run.field_file", "")
	v.SetDefault("run.record_to", "")
	v.SetDefault("run.replay_from", "")

	s := game.DefaultSettings()
	v.SetDefault("sim.max_steps", s.MaxSteps)
	v.SetDefault("sim.max_score", s.MaxScore)
	v.SetDefault("sim.max_turn", s.MaxTurn)
	v.SetDefault("sim.max_speed", s.MaxSpeed)
	v.SetDefault("sim.max_range", s.MaxRange)
	v.SetDefault("sim.max_see", s.MaxSee)
	v.SetDefault("sim.ammo_rate", s.AmmoRate)
	v.SetDefault("sim.ammo_amount", s.AmmoAmount)
	v.SetDefault("sim.crumb_stock", s.CrumbStock)
	v.SetDefault("sim.spawn_time", s.SpawnTime)
	v.SetDefault("sim.think_time", s.ThinkTime)
	v.SetDefault("sim.field_width", s.FieldWidth)
	v.SetDefault("sim.field_height", s.FieldHeight)
	v.SetDefault("sim.tile_size", s.TileSize)
	v.SetDefault("sim.num_agents", s.NumAgents)
	v.SetDefault("sim.capture_mode", int(s.Capture))
	v.SetDefault("sim.end_condition", int(s.End))
	v.SetDefault("sim.substeps", s.Substeps)
	v.SetDefault("sim.solver_iter", s.SolverIter)
	v.SetDefault("sim.enforce_think_time", s.EnforceThinkTime)
}

// Load reads the configuration. An empty path means no file is
// required; a named file that cannot be read is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("dom")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	cfg := &Config{
		LogLevel:   v.GetString("log.level"),
		LogPretty:  v.GetBool("log.pretty"),
		DebugAddr:  v.GetString("debug.addr"),
		RedBrain:   v.GetString("run.red"),
		BlueBrain:  v.GetString("run.blue"),
		Games:      v.GetInt("run.games"),
		Parallel:   v.GetInt("run.parallel"),
		Seed:       v.GetInt64("run.seed"),
		FieldFile:  v.GetString("run.field_file"),
		RecordTo:   v.GetString("run.record_to"),
		ReplayFrom: v.GetString("run.replay_from"),
		Game: game.Settings{
			MaxSteps:         v.GetInt("sim.max_steps"),
			MaxScore:         v.GetInt("sim.max_score"),
			MaxTurn:          v.GetFloat64("sim.max_turn"),
			MaxSpeed:         v.GetFloat64("sim.max_speed"),
			MaxRange:         v.GetFloat64("sim.max_range"),
			MaxSee:           v.GetFloat64("sim.max_see"),
			AmmoRate:         v.GetInt("sim.ammo_rate"),
			AmmoAmount:       v.GetInt("sim.ammo_amount"),
			CrumbStock:       v.GetInt("sim.crumb_stock"),
			SpawnTime:        v.GetInt("sim.spawn_time"),
			ThinkTime:        v.GetDuration("sim.think_time"),
			FieldWidth:       v.GetInt("sim.field_width"),
			FieldHeight:      v.GetInt("sim.field_height"),
			TileSize:         v.GetFloat64("sim.tile_size"),
			NumAgents:        v.GetInt("sim.num_agents"),
			Capture:          game.CaptureMode(v.GetInt("sim.capture_mode")),
			End:              game.EndCondition(v.GetInt("sim.end_condition")),
			Substeps:         v.GetInt("sim.substeps"),
			SolverIter:       v.GetInt("sim.solver_iter"),
			EnforceThinkTime: v.GetBool("sim.enforce_think_time"),
		},
	}
	if err := cfg.Game.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Games < 1 {
		return nil, fmt.Errorf("config: run.games must be at least 1, got %d", cfg.Games)
	}
	return cfg, nil
}
