package game

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// SeriesConfig runs the same matchup several times. Each game gets its
// own seed derived from the base seed, so a series is as reproducible
// as a single game.
type SeriesConfig struct {
	Base  Config
	Games int
	// Parallel caps how many games run at once; 0 or 1 means
	// sequential.
	Parallel int
}

// SeriesResult aggregates a finished series.
type SeriesResult struct {
	Stats []Stats
	// Score is the mean red share over all games.
	Score    float64
	WinsRed  int
	WinsBlue int
	Draws    int
}

// RunSeries plays the configured number of games and aggregates their
// stats. Games that fail to construct are reported through the joined
// error; the rest of the series still runs. Cancelling the context
// interrupts in-flight games and skips the remainder.
func RunSeries(ctx context.Context, cfg SeriesConfig) (SeriesResult, error) {
	if cfg.Games < 1 {
		return SeriesResult{}, fmt.Errorf("series: need at least one game, got %d", cfg.Games)
	}
	workers := cfg.Parallel
	if workers < 1 {
		workers = 1
	}

	stats := make([]*Stats, cfg.Games)
	errs := make([]error, cfg.Games)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Games; i++ {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			gc := cfg.Base
			gc.Seed = cfg.Base.Seed + int64(i)
			if gc.Match.ID != "" {
				gc.Match.ID = fmt.Sprintf("%s-%d", cfg.Base.Match.ID, i)
			}
			g, err := New(gc)
			if err != nil {
				errs[i] = fmt.Errorf("series: game %d: %w", i, err)
				return
			}
			if err := g.Run(ctx); err != nil {
				errs[i] = fmt.Errorf("series: game %d: %w", i, err)
				return
			}
			st := g.Stats()
			stats[i] = &st
		}(i)
	}
	wg.Wait()

	var res SeriesResult
	for _, st := range stats {
		if st == nil {
			continue
		}
		res.Stats = append(res.Stats, *st)
		res.Score += st.Score
		switch {
		case st.ScoreRed > st.ScoreBlue:
			res.WinsRed++
		case st.ScoreBlue > st.ScoreRed:
			res.WinsBlue++
		default:
			res.Draws++
		}
	}
	if len(res.Stats) > 0 {
		res.Score /= float64(len(res.Stats))
	}
	return res, errors.Join(errs...)
}
