package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lab1702/marksman/game"
	"github.com/lab1702/marksman/server"
)

func TestReplay_Duel(t *testing.T) {
	script, err := LoadScenarioScript("testdata/duel.yaml")
	require.NoError(t, err)

	cfg := server.DefaultEngineConfig()
	scn, err := NewScenario(script, cfg.Rules)
	require.NoError(t, err)

	reported := 0
	results := Replay(scn, server.NewEngine(cfg), ReplayOptions{
		Every:  20,
		OnShot: func(ShotResult) { reported++ },
	})

	require.Len(t, results, 4)
	names := make([]string, 0, len(results))
	total := 0
	for _, r := range results {
		names = append(names, r.Name)
		total += r.Shots + r.Ungraded + r.BaselineShots + r.BaselineUngraded
		assert.Equal(t, 12, r.Shots+r.Ungraded+r.NoSolution, "%s: one engine attempt per solve tick", r.Name)
	}
	assert.Equal(t, []string{"crazy", "sitter", "spinbot", "walls"}, names)
	assert.Equal(t, total, reported)

	// Shots fired on the last tick land after the scenario ends
	sitter := results[1]
	assert.Equal(t, game.PatternStationary, sitter.Kind)
	assert.Equal(t, 11, sitter.Shots)
	assert.Equal(t, 1, sitter.Ungraded)
	assert.Equal(t, sitter.Shots, sitter.Hits)
	assert.Equal(t, 1, sitter.BaselineUngraded)
	assert.Equal(t, sitter.BaselineShots, sitter.BaselineHits)
	assert.InDelta(t, 1.0, sitter.HitRate(), 1e-9)
	assert.InDelta(t, 1.0, sitter.BaselineHitRate(), 1e-9)

	assert.Equal(t, game.PatternCircular, results[2].Kind)
}

func TestAccuracy_RatesWithoutShots(t *testing.T) {
	var a Accuracy
	assert.Zero(t, a.HitRate())
	assert.Zero(t, a.BaselineHitRate())

	a = Accuracy{Shots: 4, Hits: 3, BaselineShots: 4, BaselineHits: 1}
	assert.InDelta(t, 0.75, a.HitRate(), 1e-9)
	assert.InDelta(t, 0.25, a.BaselineHitRate(), 1e-9)
}

func TestNaiveShot_LeadsMovingTarget(t *testing.T) {
	cfg := server.DefaultEngineConfig()
	engine := server.NewEngine(cfg)
	engine.Observe(server.Observation{Name: "runner", Ping: game.Ping{
		Tick: 10, Location: game.Location{X: 0, Y: 200}, Heading: 90, Velocity: 8, Energy: 100,
	}})

	shot, flight, ok := naiveShot(cfg, engine, "runner", 12, game.Location{})
	require.True(t, ok)
	assert.Equal(t, int64(12), shot.FireTick)
	assert.Greater(t, shot.Heading, 0.0, "should lead to the east of the target")
	assert.Less(t, shot.Heading, 90.0)
	assert.Positive(t, flight)

	_, _, ok = naiveShot(cfg, engine, "nobody", 12, game.Location{})
	assert.False(t, ok)
	_, _, ok = naiveShot(cfg, engine, "runner", 5, game.Location{})
	assert.False(t, ok, "ping from the future")
}
