// Command domsim runs headless tank matches: generated or fixed maps,
// any registered brains, optional recording and replay.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "domination/internal/agents"
	"domination/internal/config"
	"domination/internal/field"
	"domination/internal/game"
	"domination/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("bad configuration")
	}
	log := newLogger(cfg)

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.DebugAddr != "" {
		metrics.StartDebugServer(cfg.DebugAddr, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, m); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w = zerolog.MultiLevelWriter(os.Stderr)
	if cfg.LogPretty {
		w = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) error {
	if cfg.ReplayFrom != "" {
		return playback(ctx, cfg, log, m)
	}

	base := game.Config{
		Settings:  cfg.Game,
		RedBrain:  cfg.RedBrain,
		BlueBrain: cfg.BlueBrain,
		Seed:      cfg.Seed,
		Logger:    log,
		Metrics:   m,
		Match:     game.MatchInfo{RedName: cfg.RedBrain, BlueName: cfg.BlueBrain},
	}
	if cfg.FieldFile != "" {
		data, err := os.ReadFile(cfg.FieldFile)
		if err != nil {
			return err
		}
		f, err := field.Parse(string(data))
		if err != nil {
			return err
		}
		f.TileSize = cfg.Game.TileSize
		base.Field = f
	}

	if cfg.RecordTo != "" {
		return record(ctx, base, cfg.RecordTo, log)
	}

	res, err := game.RunSeries(ctx, game.SeriesConfig{
		Base:     base,
		Games:    cfg.Games,
		Parallel: cfg.Parallel,
	})
	log.Info().
		Int("games", len(res.Stats)).
		Int("wins_red", res.WinsRed).
		Int("wins_blue", res.WinsBlue).
		Int("draws", res.Draws).
		Float64("score", res.Score).
		Msg("series finished")
	return err
}

// record plays one game and writes its replay.
func record(ctx context.Context, base game.Config, path string, log zerolog.Logger) error {
	base.Record = true
	g, err := game.New(base)
	if err != nil {
		return err
	}
	if err := g.Run(ctx); err != nil {
		return err
	}
	data, err := g.Replay().Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("steps", g.Steps()).Msg("replay written")
	return nil
}

func playback(ctx context.Context, cfg *config.Config, log zerolog.Logger, m *metrics.Metrics) error {
	data, err := os.ReadFile(cfg.ReplayFrom)
	if err != nil {
		return err
	}
	replay, err := game.DecodeReplay(data)
	if err != nil {
		return err
	}
	g, err := game.New(game.Config{Replay: replay, Logger: log, Metrics: m})
	if err != nil {
		return err
	}
	if err := g.Run(ctx); err != nil {
		return err
	}
	red, blue := g.Scores()
	log.Info().Int("steps", g.Steps()).Int("score_red", red).Int("score_blue", blue).
		Msg("replay finished")
	return nil
}
