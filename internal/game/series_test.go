package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSeriesAggregates(t *testing.T) {
	res, err := RunSeries(context.Background(), SeriesConfig{
		Base: Config{
			Settings:  tinySettings(),
			Field:     mustField(t, openArena),
			RedBrain:  "test-stand",
			BlueBrain: "test-stand",
			Seed:      1,
		},
		Games:    3,
		Parallel: 2,
	})
	require.NoError(t, err)
	require.Len(t, res.Stats, 3)
	assert.Equal(t, 3, res.Draws)
	assert.Zero(t, res.WinsRed)
	assert.Zero(t, res.WinsBlue)
	assert.InDelta(t, 0.5, res.Score, 1e-9)
}

func TestRunSeriesRejectsEmpty(t *testing.T) {
	_, err := RunSeries(context.Background(), SeriesConfig{Games: 0})
	assert.Error(t, err)
}

func TestRunSeriesReportsBrokenGames(t *testing.T) {
	badField := mustField(t, `
w w w
w R w
w w w`)
	_, err := RunSeries(context.Background(), SeriesConfig{
		Base: Config{
			Settings:  tinySettings(),
			Field:     badField,
			RedBrain:  "test-stand",
			BlueBrain: "test-stand",
		},
		Games: 2,
	})
	require.Error(t, err)
}
