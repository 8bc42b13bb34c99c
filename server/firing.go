package server

import (
	"math"

	"github.com/lab1702/marksman/game"
)

// ShooterState is the shooter's own motion at the current tick.
// HeadingDelta and Acceleration describe how it is currently maneuvering
// and are applied every simulated tick.
type ShooterState struct {
	Location     game.Location `json:"location"`
	Heading      float64       `json:"heading"`
	Velocity     float64       `json:"velocity"`
	GunHeading   float64       `json:"gun_heading"`
	HeadingDelta float64       `json:"heading_delta"`
	Acceleration float64       `json:"acceleration"`
}

// FiringSolution is an aim point and bullet power for which the bullet is
// predicted to arrive over the opponent's footprint.
type FiringSolution struct {
	Target      string        `json:"target"`
	AimPoint    game.Location `json:"aim_point"` // Target's predicted location at impact
	Candidate   game.Location `json:"candidate"` // Location the gun converged on
	FireFrom    game.Location `json:"fire_from"`
	BulletPower float64       `json:"bullet_power"`
	BulletSpeed float64       `json:"bullet_speed"`
	GunHeading  float64       `json:"gun_heading"` // Gun heading when the bullet leaves, JitterDeg included
	GunTurn     float64       `json:"gun_turn"`    // Gun adjustment to apply this tick, within the turn rate
	JitterDeg   float64       `json:"jitter_deg"`  // Random offset added to GunHeading and GunTurn
	AimTicks    int           `json:"aim_ticks"`   // Ticks the gun needed at full turn rate
	LeadTicks   int64         `json:"lead_ticks"`  // Candidate offset from the current tick
	FireTick    int64         `json:"fire_tick"`
	ImpactTick  int64         `json:"impact_tick"`
	FlightTicks int64         `json:"flight_ticks"`

	// StraightLine is set when the solution assumes the shooter stops
	// turning and accelerating.
	StraightLine bool `json:"straight_line"`
}

// SolverConfig bounds the firing solution search
type SolverConfig struct {
	MaxLeadTicks       int64
	MaxAimIterations   int
	Power              game.PowerCurve
	FootprintTolerance float64
	FriendlyFireRadius float64
	FriendlyTolerance  float64
	JitterDeg          float64
}

// DefaultSolverConfig returns the standard search bounds
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		MaxLeadTicks:       MaxLeadTicks,
		MaxAimIterations:   MaxAimIterations,
		Power:              game.DefaultPowerCurve(),
		FriendlyFireRadius: FriendlyFireRadius,
		FriendlyTolerance:  FriendlyTolerance,
	}
}

// aimResult is the outcome of simulating the gun onto one candidate
type aimResult struct {
	fireFrom   game.Location
	gunHeading float64
	gunTurn    float64
	aimTicks   int
	simTicks   int64
}

// simulateAim steps the shooter forward until the gun can cover the remaining
// angle to candidate within one tick. ok is false if the gun does not catch
// up within maxIterations ticks.
func simulateAim(rules game.Rules, shooter ShooterState, candidate game.Location, headingDelta, acceleration float64, maxIterations int) (aimResult, bool) {
	loc := shooter.Location
	heading := shooter.Heading
	velocity := shooter.Velocity
	gun := shooter.GunHeading
	result := aimResult{}

	for i := 0; i <= maxIterations; i++ {
		heading = game.NormalizeHeading(heading + headingDelta)
		velocity = rules.StepVelocity(velocity, acceleration)

		next := game.Project(loc, heading, velocity)
		ideal := game.HeadingTo(next, candidate)

		// The gun turns with the chassis before its own adjustment
		adjustment := game.ShortestAngle(ideal - (gun + headingDelta))
		caughtUp := math.Abs(adjustment) <= rules.GunTurnRate
		if !caughtUp {
			adjustment = math.Copysign(rules.GunTurnRate, adjustment)
		}
		if i == 0 {
			result.gunTurn = adjustment
		}

		loc = next
		gun = game.NormalizeHeading(gun + headingDelta + adjustment)
		result.simTicks++

		if caughtUp {
			result.fireFrom = loc
			result.gunHeading = gun
			return result, true
		}
		result.aimTicks++
	}
	return aimResult{}, false
}

// solveCandidate tries to hit the target at the candidate location predicted
// for tick+lead.
func solveCandidate(rules game.Rules, cfg SolverConfig, tracker *game.Tracker, tick, lead int64, shooter ShooterState, headingDelta, acceleration float64) (FiringSolution, bool) {
	candidate, ok := tracker.LocationAt(tick + lead)
	if !ok {
		return FiringSolution{}, false
	}

	aim, ok := simulateAim(rules, shooter, candidate, headingDelta, acceleration, cfg.MaxAimIterations)
	if !ok {
		return FiringSolution{}, false
	}

	distance := aim.fireFrom.Distance(candidate)
	power := rules.BulletPower(distance, cfg.Power)
	flight, ok := rules.FlightTicks(distance, power)
	if !ok {
		return FiringSolution{}, false
	}

	fireTick := tick + aim.simTicks + 1
	impactTick := fireTick + flight

	impact, heading, ok := tracker.Predict(impactTick)
	if !ok {
		return FiringSolution{}, false
	}
	if !game.InsideFootprint(impact, heading, candidate, rules.BotHalfWidth, cfg.FootprintTolerance) {
		return FiringSolution{}, false
	}

	return FiringSolution{
		Target:      tracker.Name(),
		AimPoint:    impact,
		Candidate:   candidate,
		FireFrom:    aim.fireFrom,
		BulletPower: power,
		BulletSpeed: rules.BulletSpeed(power),
		GunHeading:  aim.gunHeading,
		GunTurn:     aim.gunTurn,
		AimTicks:    aim.aimTicks,
		LeadTicks:   lead,
		FireTick:    fireTick,
		ImpactTick:  impactTick,
		FlightTicks: flight,
	}, true
}

// SolveFiring sweeps candidate impact points 1..MaxLeadTicks ahead of tick
// and returns the first that validates. When the shooter is maneuvering and
// nothing validates, the sweep is repeated assuming it holds a straight line
// at constant speed.
func SolveFiring(rules game.Rules, cfg SolverConfig, tracker *game.Tracker, tick int64, shooter ShooterState) (FiringSolution, bool) {
	if tracker == nil || tracker.NoPings() {
		return FiringSolution{}, false
	}

	for lead := int64(1); lead <= cfg.MaxLeadTicks; lead++ {
		if solution, ok := solveCandidate(rules, cfg, tracker, tick, lead, shooter, shooter.HeadingDelta, shooter.Acceleration); ok {
			logSolverDecision(tracker.Name(), "FIRE", tick, lead, "maneuvering pass")
			return solution, true
		}
	}

	if shooter.HeadingDelta == 0 && shooter.Acceleration == 0 {
		logSolverDecision(tracker.Name(), "HOLD", tick, cfg.MaxLeadTicks, "no candidate validated")
		return FiringSolution{}, false
	}

	for lead := int64(1); lead <= cfg.MaxLeadTicks; lead++ {
		if solution, ok := solveCandidate(rules, cfg, tracker, tick, lead, shooter, 0, 0); ok {
			solution.StraightLine = true
			logSolverDecision(tracker.Name(), "FIRE", tick, lead, "straight line pass")
			return solution, true
		}
	}

	logSolverDecision(tracker.Name(), "HOLD", tick, cfg.MaxLeadTicks, "no candidate validated in either pass")
	return FiringSolution{}, false
}

// ClearShot reports whether no friendly footprint lies on the segment from
// the shooter to the target. Friendlies farther than radius from the shooter
// are ignored.
func ClearShot(rules game.Rules, from, to game.Location, friendlies []game.Location, radius, tolerance float64) bool {
	for _, friend := range friendlies {
		if from.Distance(friend) >= radius {
			continue
		}
		closest := game.ClosestOnSegment(from, to, friend)
		if game.InsideFootprint(friend, 0, closest, rules.BotHalfWidth, tolerance) {
			return false
		}
	}
	return true
}
