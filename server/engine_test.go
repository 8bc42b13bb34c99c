package server

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lab1702/marksman/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate tracks one opponent of every pattern kind
func populate(e *Engine) {
	feed(e, "duck", parkedPings(game.Location{X: 100, Y: 0}, 120, 1, 3)...)
	feed(e, "duck2", parkedPings(game.Location{X: 0, Y: 200}, 60, 1, 3)...)
	feed(e, "shark", orbitPings(game.Location{X: 400, Y: 400}, 80, 8, 30, 1, 10)...)
	feed(e, "crab", shuttle(100, 100, 150)...)
	feed(e, "ghost",
		game.Ping{Tick: 1, Location: game.Location{X: 500, Y: 500}, Heading: 45, Velocity: 8, Energy: 10},
		game.Ping{Tick: 5, Location: game.Location{X: 540, Y: 500}, Heading: 90, Velocity: 8, Energy: 10},
	)
}

func TestEngineObserve(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())

	assert.False(t, e.Observe(Observation{Ping: game.Ping{Tick: 1}}), "unnamed")
	assert.True(t, e.Observe(Observation{Name: "duck", Ping: game.Ping{Tick: 1}}))
	assert.False(t, e.Observe(Observation{Name: "duck", Ping: game.Ping{Tick: 1}}), "repeated tick")
	assert.False(t, e.Observe(Observation{Name: "duck", Ping: game.Ping{Tick: 2, Velocity: math.NaN()}}))
	assert.True(t, e.IsStale())

	tracker, ok := e.Tracker("duck")
	require.True(t, ok)
	assert.Len(t, tracker.Pings(), 1)
	assert.Equal(t, []string{"duck"}, e.Opponents())
}

func TestEngineReclassifiesOnDemand(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	feed(e, "duck", parkedPings(game.Location{X: 100, Y: 0}, 100, 1, 3)...)
	require.True(t, e.IsStale())

	loc, ok := e.PredictLocation("duck", 20)
	require.True(t, ok)
	assert.Equal(t, game.Location{X: 100, Y: 0}, loc)
	assert.False(t, e.IsStale())

	tracker, _ := e.Tracker("duck")
	assert.Equal(t, game.PatternStationary, tracker.Kind())

	// It drives off east at full speed
	feed(e, "duck",
		game.Ping{Tick: 4, Location: game.Location{X: 108, Y: 0}, Heading: 90, Velocity: 8, Energy: 100},
		game.Ping{Tick: 5, Location: game.Location{X: 116, Y: 0}, Heading: 90, Velocity: 8, Energy: 100},
	)
	assert.True(t, e.IsStale())

	loc, ok = e.PredictLocation("duck", 6)
	require.True(t, ok)
	assert.Equal(t, game.PatternProjection, tracker.Kind())
	assertNear(t, game.Location{X: 124, Y: 0}, loc)

	heading, ok := e.PredictHeading("duck", 6)
	require.True(t, ok)
	assert.InDelta(t, 90, heading, 1e-9)

	_, ok = e.PredictLocation("nobody", 6)
	assert.False(t, ok)
	_, ok = e.PredictLocation("duck", 4)
	assert.False(t, ok, "before the newest ping")
}

func TestEngineUpdateShooter(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())

	_, _, ok := e.Shooter()
	assert.False(t, ok)

	first := e.UpdateShooter(ShooterStatus{Tick: 1, Heading: 350, Velocity: 4, GunHeading: 370})
	assert.Equal(t, 0.0, first.HeadingDelta)
	assert.Equal(t, 0.0, first.Acceleration)
	assert.InDelta(t, 10, first.GunHeading, 1e-9)

	// Two ticks later, turned 20 degrees through north and 2 faster
	second := e.UpdateShooter(ShooterStatus{Tick: 3, Heading: 10, Velocity: 6})
	assert.InDelta(t, 10, second.HeadingDelta, 1e-9)
	assert.InDelta(t, 1, second.Acceleration, 1e-9)

	state, tick, ok := e.Shooter()
	require.True(t, ok)
	assert.Equal(t, int64(3), tick)
	assert.Equal(t, second, state)
}

func TestEngineSolveFiring(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Rules = fastRules()
	e := NewEngine(cfg)
	feed(e, "duck", parkedPings(game.Location{X: 100, Y: 0}, 100, 1, 3)...)

	_, ok := e.SolveFiringNow("duck")
	assert.False(t, ok, "no status yet")

	e.UpdateShooter(ShooterStatus{Tick: 3, GunHeading: 90})
	solution, ok := e.SolveFiringNow("duck")
	require.True(t, ok)
	assert.Equal(t, int64(10), solution.ImpactTick)
	assert.InDelta(t, 90, solution.GunHeading, 1e-9)

	_, ok = e.SolveFiringNow("nobody")
	assert.False(t, ok)
}

func TestEngineJitterIsSeeded(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Rules = fastRules()
	cfg.Solver.JitterDeg = 5
	cfg.Seed = 9

	solve := func() []FiringSolution {
		e := NewEngine(cfg)
		feed(e, "duck", parkedPings(game.Location{X: 100, Y: 0}, 100, 1, 3)...)
		shooter := ShooterState{GunHeading: 90}
		var out []FiringSolution
		for i := 0; i < 5; i++ {
			solution, ok := e.SolveFiring("duck", 3, shooter)
			require.True(t, ok)
			out = append(out, solution)
		}
		return out
	}

	first, second := solve(), solve()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed gave different solutions (-first +second):\n%s", diff)
	}
	for _, s := range first {
		assert.LessOrEqual(t, math.Abs(s.JitterDeg), 5.0)
		assert.InDelta(t, 0, game.ShortestAngle(s.GunHeading-90-s.JitterDeg), 1e-9)
		assert.LessOrEqual(t, math.Abs(s.GunTurn), cfg.Rules.GunTurnRate)
		assertNear(t, game.Location{X: 100, Y: 0}, s.AimPoint)
		assertNear(t, game.Location{X: 100, Y: 0}, s.Candidate)
	}
}

func TestEngineResetRestartsJitter(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Rules = fastRules()
	cfg.Solver.JitterDeg = 30
	cfg.Seed = 11

	e := NewEngine(cfg)
	session := func() []float64 {
		feed(e, "duck", parkedPings(game.Location{X: 100, Y: 0}, 100, 1, 3)...)
		var offsets []float64
		for i := 0; i < 4; i++ {
			solution, ok := e.SolveFiring("duck", 3, ShooterState{GunHeading: 90})
			require.True(t, ok)
			offsets = append(offsets, solution.JitterDeg)
		}
		return offsets
	}

	first := session()
	e.Reset()
	second := session()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reset session did not replay the jitter sequence (-first +second):\n%s", diff)
	}
}

func TestRankTargets(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	populate(e)

	ranked := e.RankTargets()
	names := make([]string, 0, len(ranked))
	for _, r := range ranked {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"duck2", "duck", "shark", "crab", "ghost"}, names)

	kinds := map[string]game.PatternKind{}
	for _, r := range ranked {
		kinds[r.Name] = r.Kind
		assert.Equal(t, r.Kind.String(), r.Pattern)
		assert.NotEmpty(t, r.Summary)
	}
	assert.Equal(t, game.PatternCircular, kinds["shark"])
	assert.Equal(t, game.PatternLinear, kinds["crab"])
	assert.Equal(t, game.PatternNone, kinds["ghost"])

	assert.True(t, ranked[0].Radar)
	assert.False(t, ranked[1].Radar)
	assert.True(t, ranked[2].Critical)
	assert.True(t, ranked[4].Critical)
}

func TestRankingPriorityWithinKind(t *testing.T) {
	cfg := DefaultRankingConfig()

	tests := []struct {
		name    string
		opening float64 // Energy at first sight
		latest  float64
		want    int
	}{
		{"nearly dead", 120, 20, priorityCritical},
		{"critical beats radar", 80, 50, priorityCritical},
		{"radar carrier", 100, 90, priorityRadar},
		{"full health", 120, 110, priorityOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := game.NewTracker(tt.name, game.DefaultRules(), game.DefaultClassifierConfig())
			tr.AddPing(game.Ping{Tick: 1, Energy: tt.opening})
			tr.AddPing(game.Ping{Tick: 2, Energy: tt.latest})
			assert.Equal(t, tt.want, priorityClass(cfg, tr))
		})
	}
}

func TestRankingCustomKindOrder(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Ranking.KindOrder = []game.PatternKind{game.PatternLinear}
	e := NewEngine(cfg)
	populate(e)

	ranked := e.RankTargets()
	require.Len(t, ranked, 5)
	assert.Equal(t, "crab", ranked[0].Name)

	// Unlisted kinds fall back to priority then energy
	var rest []string
	for _, r := range ranked[1:] {
		rest = append(rest, r.Name)
	}
	assert.Equal(t, []string{"ghost", "shark", "duck2", "duck"}, rest)
}

func TestSelectTarget(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())

	_, ok := e.SelectTarget(3)
	assert.False(t, ok, "nothing tracked")

	feed(e, "duck", parkedPings(game.Location{X: 100, Y: 0}, 120, 1, 3)...)
	feed(e, "duck2", parkedPings(game.Location{X: 0, Y: 200}, 60, 1, 3)...)

	name, ok := e.SelectTarget(3)
	require.True(t, ok)
	assert.Equal(t, "duck2", name)

	// A teammate between the shooter and duck2 passes the shot to duck
	e.UpdateShooter(ShooterStatus{Tick: 3})
	e.SetFriendly("buddy", game.Location{X: 0, Y: 100})
	name, ok = e.SelectTarget(3)
	require.True(t, ok)
	assert.Equal(t, "duck", name)

	e.SetFriendly("pal", game.Location{X: 50, Y: 0})
	_, ok = e.SelectTarget(3)
	assert.False(t, ok, "both lines of fire blocked")

	e.RemoveFriendly("buddy")
	e.RemoveFriendly("pal")
	name, _ = e.SelectTarget(3)
	assert.Equal(t, "duck2", name)
}

func TestEngineRemoveAndReset(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	populate(e)
	e.UpdateShooter(ShooterStatus{Tick: 3})
	e.SetFriendly("buddy", game.Location{X: 0, Y: 100})

	assert.True(t, e.RemoveOpponent("duck"))
	assert.False(t, e.RemoveOpponent("duck"))
	assert.NotContains(t, e.Opponents(), "duck")
	assert.Len(t, e.RankTargets(), 4)

	e.Reset()
	assert.Empty(t, e.Opponents())
	assert.Empty(t, e.RankTargets())
	_, _, ok := e.Shooter()
	assert.False(t, ok)
	assert.False(t, e.IsStale())
}

func assertNear(t *testing.T, want, got game.Location) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-6, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-6, "y")
}
