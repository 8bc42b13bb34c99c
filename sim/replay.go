package sim

import (
	"math"
	"sort"

	"github.com/lab1702/marksman/game"
	"github.com/lab1702/marksman/server"
)

// Accuracy holds shot statistics for one opponent
type Accuracy struct {
	Name       string
	Kind       game.PatternKind // Classification at the end of the replay
	Shots      int              // Graded engine shots
	Hits       int
	Ungraded   int // Engine shots still in flight when the scenario ended
	NoSolution int // Solve ticks where the engine declined to fire

	BaselineShots    int
	BaselineHits     int
	BaselineUngraded int
}

// HitRate returns the engine's hits per shot
func (a Accuracy) HitRate() float64 {
	if a.Shots == 0 {
		return 0
	}
	return float64(a.Hits) / float64(a.Shots)
}

// BaselineHitRate returns the naive lead's hits per shot
func (a Accuracy) BaselineHitRate() float64 {
	if a.BaselineShots == 0 {
		return 0
	}
	return float64(a.BaselineHits) / float64(a.BaselineShots)
}

// ShotResult describes one shot and how it ended
type ShotResult struct {
	Name     string
	Tick     int64
	Baseline bool
	Shot     Shot
	Outcome  ShotOutcome
	HitTick  int64
}

// ReplayOptions controls how often shots are taken
type ReplayOptions struct {
	Every  int64            // Solve for every opponent each Every ticks
	OnShot func(ShotResult) // Called for every shot, may be nil
}

// Replay feeds the scenario into engine tick by tick, and on every
// opts.Every'th tick fires one engine shot and one naive shot at each
// opponent. Shots are graded against the scenario's ground truth; shots the
// scenario ends on are counted apart from misses. Results are sorted by
// opponent name.
func Replay(scn *Scenario, engine *server.Engine, opts ReplayOptions) []Accuracy {
	every := opts.Every
	if every <= 0 {
		every = 1
	}

	cfg := engine.Config()
	byName := make(map[string]*Accuracy)
	for _, name := range scn.Opponents() {
		byName[name] = &Accuracy{Name: name}
	}

	report := func(r ShotResult) {
		if opts.OnShot != nil {
			opts.OnShot(r)
		}
	}

	for tick := int64(0); tick <= scn.Ticks(); tick++ {
		status := scn.ShooterStatus(tick)
		engine.UpdateShooter(status)
		for _, o := range scn.ScansAt(tick) {
			engine.Observe(o)
		}
		if tick == 0 || tick%every != 0 {
			continue
		}

		for _, name := range scn.Opponents() {
			acc := byName[name]

			if solution, ok := engine.SolveFiringNow(name); ok {
				shot := Shot{
					FireTick: solution.FireTick,
					From:     solution.FireFrom,
					Heading:  solution.GunHeading,
					Speed:    solution.BulletSpeed,
				}
				hitTick, outcome := scn.Hit(name, shot, solution.FlightTicks+1)
				tallyOutcome(outcome, &acc.Shots, &acc.Hits, &acc.Ungraded)
				report(ShotResult{Name: name, Tick: tick, Shot: shot, Outcome: outcome, HitTick: hitTick})
			} else {
				acc.NoSolution++
			}

			if shot, flight, ok := naiveShot(cfg, engine, name, tick, status.Location); ok {
				hitTick, outcome := scn.Hit(name, shot, flight)
				tallyOutcome(outcome, &acc.BaselineShots, &acc.BaselineHits, &acc.BaselineUngraded)
				report(ShotResult{Name: name, Tick: tick, Baseline: true, Shot: shot, Outcome: outcome, HitTick: hitTick})
			}
		}
	}

	for _, ranked := range engine.RankTargets() {
		if acc, ok := byName[ranked.Name]; ok {
			acc.Kind = ranked.Kind
		}
	}

	results := make([]Accuracy, 0, len(byName))
	for _, acc := range byName {
		results = append(results, *acc)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}

func tallyOutcome(outcome ShotOutcome, shots, hits, ungraded *int) {
	switch outcome {
	case ShotUngraded:
		*ungraded++
	case ShotHit:
		*shots++
		*hits++
	default:
		*shots++
	}
}

// naiveShot leads the last ping at its own velocity and fires immediately
// from the shooter's location, ignoring gun turn and the movement model.
func naiveShot(cfg server.EngineConfig, engine *server.Engine, name string, tick int64, from game.Location) (Shot, int64, bool) {
	tracker, ok := engine.Tracker(name)
	if !ok {
		return Shot{}, 0, false
	}
	last, ok := tracker.LastPing()
	if !ok || last.Tick > tick {
		return Shot{}, 0, false
	}

	velocity := game.PingVelocity(last)
	target := last.Location.Add(velocity.Scale(float64(tick - last.Tick)))
	power := cfg.Rules.BulletPower(from.Distance(target), cfg.Solver.Power)
	speed := cfg.Rules.BulletSpeed(power)

	solution, ok := game.Intercept(from, target, velocity, speed)
	if !ok {
		return Shot{}, 0, false
	}
	flight := int64(math.Ceil(solution.TimeToIntercept)) + 1
	return Shot{FireTick: tick, From: from, Heading: solution.Heading, Speed: speed}, flight, true
}
