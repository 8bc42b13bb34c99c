package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitRateSeries(t *testing.T) {
	shots := []ShotResult{
		{Name: "duck", Tick: 10, Outcome: ShotHit},
		{Name: "duck", Tick: 10, Baseline: true, Outcome: ShotMissed},
		{Name: "duck", Tick: 20, Outcome: ShotMissed},
		{Name: "duck", Tick: 20, Baseline: true, Outcome: ShotHit},
		{Name: "crab", Tick: 20, Outcome: ShotHit},
		{Name: "crab", Tick: 40, Outcome: ShotUngraded},
	}

	series := hitRateSeries(shots)
	require.Len(t, series, 2)

	engine := series["duck"][false]
	require.Len(t, engine, 2)
	assert.Equal(t, 10.0, engine[0].X)
	assert.Equal(t, 1.0, engine[0].Y)
	assert.Equal(t, 0.5, engine[1].Y)

	naive := series["duck"][true]
	require.Len(t, naive, 2)
	assert.Equal(t, 0.0, naive[0].Y)
	assert.Equal(t, 0.5, naive[1].Y)

	assert.Len(t, series["crab"][false], 1, "ungraded shots are not plotted")
	assert.Empty(t, series["crab"][true])
}

func TestSaveHitRateChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.png")
	shots := []ShotResult{
		{Name: "duck", Tick: 10, Outcome: ShotHit},
		{Name: "duck", Tick: 20, Outcome: ShotMissed},
		{Name: "duck", Tick: 10, Baseline: true, Outcome: ShotHit},
	}

	require.NoError(t, SaveHitRateChart(shots, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, SaveHitRateChart(nil, path))
}
