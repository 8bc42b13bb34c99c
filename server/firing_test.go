package server

import (
	"testing"

	"github.com/lab1702/marksman/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastRules fires every bullet at 20 units per tick
func fastRules() game.Rules {
	rules := game.DefaultRules()
	rules.BulletSpeedPerPower = 0
	return rules
}

func parkedTracker(rules game.Rules, loc game.Location) *game.Tracker {
	tr := game.NewTracker("duck", rules, game.DefaultClassifierConfig())
	for _, p := range parkedPings(loc, 100, 1, 3) {
		tr.AddPing(p)
	}
	tr.FindPatterns()
	return tr
}

func TestSolveFiringStationaryTarget(t *testing.T) {
	rules := fastRules()
	tr := parkedTracker(rules, game.Location{X: 100, Y: 0})
	require.Equal(t, game.PatternStationary, tr.Kind())

	shooter := ShooterState{Location: game.Location{X: 0, Y: 0}, GunHeading: 90}
	solution, ok := SolveFiring(rules, DefaultSolverConfig(), tr, 3, shooter)
	require.True(t, ok)

	assert.Equal(t, 0, solution.AimTicks, "gun already on target")
	assert.Equal(t, int64(5), solution.FlightTicks, "ceil(100/20)")
	assert.Equal(t, game.MaxBulletPower, solution.BulletPower)
	assert.Equal(t, 20.0, solution.BulletSpeed)
	assert.Equal(t, int64(1), solution.LeadTicks)
	assert.Equal(t, int64(5), solution.FireTick)
	assert.Equal(t, int64(10), solution.ImpactTick)
	assert.Equal(t, game.Location{X: 100, Y: 0}, solution.AimPoint)
	assert.InDelta(t, 0, solution.GunTurn, 1e-9)
	assert.InDelta(t, 90, solution.GunHeading, 1e-9)
	assert.False(t, solution.StraightLine)
	assert.Equal(t, "duck", solution.Target)
}

func TestSolveFiringTurnsGun(t *testing.T) {
	rules := fastRules()
	tr := parkedTracker(rules, game.Location{X: 100, Y: 0})

	shooter := ShooterState{Location: game.Location{X: 0, Y: 0}, GunHeading: 0}
	solution, ok := SolveFiring(rules, DefaultSolverConfig(), tr, 3, shooter)
	require.True(t, ok)

	// 90 degrees at 20 per tick: four clamped ticks then the final 10
	assert.Equal(t, 4, solution.AimTicks)
	assert.Equal(t, rules.GunTurnRate, solution.GunTurn)
	assert.Equal(t, int64(3+5+1), solution.FireTick)
	assert.InDelta(t, 90, solution.GunHeading, 1e-9)
}

func TestSolveFiringStraightLineFallback(t *testing.T) {
	rules := fastRules()
	tr := parkedTracker(rules, game.Location{X: 100, Y: 0})

	cfg := DefaultSolverConfig()
	cfg.MaxAimIterations = 0

	// Turning left carries the gun 25 degrees off; holding course leaves 15
	shooter := ShooterState{Location: game.Location{}, Heading: 0, GunHeading: 75, HeadingDelta: -10}
	solution, ok := SolveFiring(rules, cfg, tr, 3, shooter)
	require.True(t, ok)
	assert.True(t, solution.StraightLine)
	assert.Equal(t, 0, solution.AimTicks)
	assert.InDelta(t, 15, solution.GunTurn, 1e-9)
}

func TestSolveFiringNoSolution(t *testing.T) {
	rules := fastRules()
	cfg := DefaultSolverConfig()
	cfg.MaxAimIterations = 0

	tr := parkedTracker(rules, game.Location{X: 100, Y: 0})
	_, ok := SolveFiring(rules, cfg, tr, 3, ShooterState{GunHeading: 270})
	assert.False(t, ok, "gun cannot come around in time")

	empty := game.NewTracker("ghost", rules, game.DefaultClassifierConfig())
	_, ok = SolveFiring(rules, DefaultSolverConfig(), empty, 3, ShooterState{})
	assert.False(t, ok, "no pings")

	_, ok = SolveFiring(rules, DefaultSolverConfig(), nil, 3, ShooterState{})
	assert.False(t, ok)

	_, ok = SolveFiring(rules, DefaultSolverConfig(), tr, 1, ShooterState{GunHeading: 90})
	assert.True(t, ok, "leads before the newest ping are skipped")
}

func TestSolveFiringCircularTarget(t *testing.T) {
	rules := game.DefaultRules()
	center := game.Location{X: 400, Y: 400}

	tr := game.NewTracker("shark", rules, game.DefaultClassifierConfig())
	for _, p := range orbitPings(center, 80, 8, 100, 1, 10) {
		tr.AddPing(p)
	}
	require.Equal(t, game.PatternCircular, tr.FindPatterns().Kind())

	shooter := ShooterState{Location: game.Location{X: 100, Y: 100}, GunHeading: 45}
	solution, ok := SolveFiring(rules, DefaultSolverConfig(), tr, 10, shooter)
	require.True(t, ok)

	impact, heading, ok := tr.Predict(solution.ImpactTick)
	require.True(t, ok)
	assert.Equal(t, impact, solution.AimPoint)
	assert.True(t, game.InsideFootprint(impact, heading, solution.Candidate, rules.BotHalfWidth, 0))

	// Power and flight time come from the same distance
	distance := solution.FireFrom.Distance(solution.Candidate)
	assert.Equal(t, rules.BulletPower(distance, game.DefaultPowerCurve()), solution.BulletPower)
	flight, ok := rules.FlightTicks(distance, solution.BulletPower)
	require.True(t, ok)
	assert.Equal(t, flight, solution.FlightTicks)
	assert.Equal(t, solution.FireTick+solution.FlightTicks, solution.ImpactTick)
}

func TestClearShot(t *testing.T) {
	rules := game.DefaultRules()
	from := game.Location{X: 0, Y: 0}
	to := game.Location{X: 100, Y: 0}

	tests := []struct {
		name   string
		friend game.Location
		radius float64
		clear  bool
	}{
		{"in the line of fire", game.Location{X: 50, Y: 0}, FriendlyFireRadius, false},
		{"grazing the footprint", game.Location{X: 50, Y: 20}, FriendlyFireRadius, false},
		{"well to the side", game.Location{X: 50, Y: 30}, FriendlyFireRadius, true},
		{"behind the shooter", game.Location{X: -40, Y: 0}, FriendlyFireRadius, true},
		{"beyond the radius", game.Location{X: 50, Y: 0}, 40, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClearShot(rules, from, to, []game.Location{tt.friend}, tt.radius, FriendlyTolerance)
			assert.Equal(t, tt.clear, got)
		})
	}

	assert.True(t, ClearShot(rules, from, to, nil, FriendlyFireRadius, FriendlyTolerance))
}
