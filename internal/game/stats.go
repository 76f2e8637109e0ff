package game

import "time"

// Stats summarizes a finished game.
type Stats struct {
	ScoreRed  int
	ScoreBlue int
	// Score is the red share of the total, 0.5 meaning a draw.
	Score       float64
	Steps       int
	AmmoRed     int
	AmmoBlue    int
	ThinkRed    time.Duration // mean think time per red tank per step
	ThinkBlue   time.Duration
	Interrupted bool
	FaultRed    bool
	FaultBlue   bool
	Match       MatchInfo
}

func (g *Game) stats() Stats {
	st := Stats{
		ScoreRed:    g.scoreRed,
		ScoreBlue:   g.scoreBlue,
		Steps:       g.steps,
		Interrupted: g.interrupted,
		FaultRed:    g.faulted[TeamRed],
		FaultBlue:   g.faulted[TeamBlue],
		Match:       g.match,
	}
	if total := g.scoreRed + g.scoreBlue; total > 0 {
		st.Score = float64(g.scoreRed) / float64(total)
	}
	var nRed, nBlue int
	for _, t := range g.tanks {
		if t.Team == TeamRed {
			st.AmmoRed += t.ammoPicked
			nRed++
		} else {
			st.AmmoBlue += t.ammoPicked
			nBlue++
		}
	}
	if g.steps > 0 {
		if nRed > 0 {
			st.ThinkRed = g.thinkRedTotal / time.Duration(nRed*g.steps)
		}
		if nBlue > 0 {
			st.ThinkBlue = g.thinkBlueTotal / time.Duration(nBlue*g.steps)
		}
	}
	return st
}
