package server

import (
	"math"
	"sort"

	"github.com/lab1702/marksman/game"
)

// EngineConfig bundles everything an Engine needs
type EngineConfig struct {
	Rules      game.Rules
	Classifier game.ClassifierConfig
	Solver     SolverConfig
	Ranking    RankingConfig
	Seed       int64 // Jitter source seed
}

// DefaultEngineConfig returns the stock rules and thresholds
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Rules:      game.DefaultRules(),
		Classifier: game.DefaultClassifierConfig(),
		Solver:     DefaultSolverConfig(),
		Ranking:    DefaultRankingConfig(),
		Seed:       1,
	}
}

// Observation is an absolute scan of a named opponent
type Observation struct {
	Name string
	Ping game.Ping
}

// ShooterStatus is the shooter's own state reported each tick
type ShooterStatus struct {
	Tick       int64         `json:"tick"`
	Location   game.Location `json:"location"`
	Heading    float64       `json:"heading"`
	Velocity   float64       `json:"velocity"`
	GunHeading float64       `json:"gun_heading"`
}

// Engine tracks the opponents of one shooter and answers prediction,
// firing and ranking queries. It never advances time on its own: every
// query names the tick it is about. An Engine is not safe for concurrent
// use; each session owns one.
type Engine struct {
	cfg        EngineConfig
	trackers   map[string]*game.Tracker
	friendlies map[string]game.Location

	shooter     ShooterState
	shooterTick int64
	hasShooter  bool

	// stale is set whenever an observation arrives after the last
	// classification, and forces reclassification before the next query.
	stale   bool
	ranking []*game.Tracker

	jitter *jitter
}

// NewEngine creates an engine with no opponents
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		cfg:        cfg,
		trackers:   make(map[string]*game.Tracker),
		friendlies: make(map[string]game.Location),
		jitter:     newJitter(cfg.Seed, cfg.Solver.JitterDeg),
	}
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Observe records a scan, creating the opponent's tracker on first sight.
// It reports whether the ping was accepted.
func (e *Engine) Observe(o Observation) bool {
	if o.Name == "" {
		return false
	}
	tracker, ok := e.trackers[o.Name]
	if !ok {
		tracker = game.NewTracker(o.Name, e.cfg.Rules, e.cfg.Classifier)
		e.trackers[o.Name] = tracker
	}
	if !tracker.AddPing(o.Ping) {
		return false
	}
	e.stale = true
	return true
}

// RemoveOpponent discards a tracker, typically on a death notification
func (e *Engine) RemoveOpponent(name string) bool {
	if _, ok := e.trackers[name]; !ok {
		return false
	}
	delete(e.trackers, name)
	e.stale = true
	return true
}

// UpdateShooter records the shooter's status and derives its per-tick
// heading change and acceleration from the previous status.
func (e *Engine) UpdateShooter(status ShooterStatus) ShooterState {
	state := ShooterState{
		Location:   status.Location,
		Heading:    game.NormalizeHeading(status.Heading),
		Velocity:   status.Velocity,
		GunHeading: game.NormalizeHeading(status.GunHeading),
	}

	if e.hasShooter && status.Tick > e.shooterTick {
		ticks := float64(status.Tick - e.shooterTick)
		state.HeadingDelta = game.ShortestAngle(state.Heading-e.shooter.Heading) / ticks
		state.Acceleration = (state.Velocity - e.shooter.Velocity) / ticks
	}

	e.shooter = state
	e.shooterTick = status.Tick
	e.hasShooter = true
	return state
}

// Shooter returns the last shooter state and its tick
func (e *Engine) Shooter() (ShooterState, int64, bool) {
	return e.shooter, e.shooterTick, e.hasShooter
}

// SetFriendly records a teammate's location for friendly fire checks
func (e *Engine) SetFriendly(name string, loc game.Location) {
	e.friendlies[name] = loc
}

func (e *Engine) RemoveFriendly(name string) {
	delete(e.friendlies, name)
}

// Tracker returns the tracker of a named opponent
func (e *Engine) Tracker(name string) (*game.Tracker, bool) {
	t, ok := e.trackers[name]
	return t, ok
}

// Opponents returns the tracked opponent names in sorted order
func (e *Engine) Opponents() []string {
	names := make([]string, 0, len(e.trackers))
	for name := range e.trackers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PredictLocation returns where the opponent is expected at tick
func (e *Engine) PredictLocation(name string, tick int64) (game.Location, bool) {
	tracker, ok := e.classified(name)
	if !ok {
		return game.Location{}, false
	}
	return tracker.LocationAt(tick)
}

// PredictHeading returns the opponent's expected heading at tick
func (e *Engine) PredictHeading(name string, tick int64) (float64, bool) {
	tracker, ok := e.classified(name)
	if !ok {
		return 0, false
	}
	return tracker.HeadingAt(tick)
}

// SolveFiring finds a firing solution against the named opponent. With
// jitter enabled the gun heading and turn carry a random offset, recorded in
// JitterDeg; AimPoint and Candidate stay on the validated prediction.
func (e *Engine) SolveFiring(name string, tick int64, shooter ShooterState) (FiringSolution, bool) {
	tracker, ok := e.classified(name)
	if !ok {
		return FiringSolution{}, false
	}

	solution, ok := SolveFiring(e.cfg.Rules, e.cfg.Solver, tracker, tick, shooter)
	if !ok {
		return FiringSolution{}, false
	}

	if offset := e.jitter.offsetDeg(); offset != 0 {
		solution.JitterDeg = offset
		solution.GunHeading = game.NormalizeHeading(solution.GunHeading + offset)
		turn := solution.GunTurn + offset
		solution.GunTurn = math.Max(-e.cfg.Rules.GunTurnRate, math.Min(turn, e.cfg.Rules.GunTurnRate))
	}
	return solution, true
}

// SolveFiringNow solves from the last reported shooter status
func (e *Engine) SolveFiringNow(name string) (FiringSolution, bool) {
	if !e.hasShooter {
		return FiringSolution{}, false
	}
	return e.SolveFiring(name, e.shooterTick, e.shooter)
}

// RankTargets returns every opponent from most to least wanted
func (e *Engine) RankTargets() []RankedTarget {
	e.refresh()
	out := make([]RankedTarget, 0, len(e.ranking))
	for _, t := range e.ranking {
		out = append(out, describeRanked(e.cfg.Ranking, t))
	}
	return out
}

// SelectTarget picks the most wanted opponent that has been seen and has no
// friendly in the line of fire at tick.
func (e *Engine) SelectTarget(tick int64) (string, bool) {
	e.refresh()

	friendlies := make([]game.Location, 0, len(e.friendlies))
	for _, loc := range e.friendlies {
		friendlies = append(friendlies, loc)
	}

	for _, t := range e.ranking {
		if t.NoPings() {
			continue
		}
		if e.hasShooter && len(friendlies) > 0 {
			target, ok := t.LocationAt(tick)
			if !ok {
				last, _ := t.LastPing()
				target = last.Location
			}
			if !ClearShot(e.cfg.Rules, e.shooter.Location, target, friendlies,
				e.cfg.Solver.FriendlyFireRadius, e.cfg.Solver.FriendlyTolerance) {
				continue
			}
		}
		return t.Name(), true
	}
	return "", false
}

// Reset forgets every opponent, friendly and shooter status, and restarts
// the jitter sequence from the configured seed.
func (e *Engine) Reset() {
	e.jitter = newJitter(e.cfg.Seed, e.cfg.Solver.JitterDeg)
	e.trackers = make(map[string]*game.Tracker)
	e.friendlies = make(map[string]game.Location)
	e.shooter = ShooterState{}
	e.shooterTick = 0
	e.hasShooter = false
	e.ranking = nil
	e.stale = false
}

// classified returns the named tracker with an up to date pattern
func (e *Engine) classified(name string) (*game.Tracker, bool) {
	if _, ok := e.trackers[name]; !ok {
		return nil, false
	}
	e.refresh()
	return e.trackers[name], true
}

// refresh reclassifies every tracker and rebuilds the ranking if any
// observation arrived since the last time.
func (e *Engine) refresh() {
	if !e.stale && e.ranking != nil {
		return
	}

	trackers := make([]*game.Tracker, 0, len(e.trackers))
	for _, t := range e.trackers {
		before := t.Pattern()
		logClassification(t.Name(), before, t.FindPatterns())
		trackers = append(trackers, t)
	}
	e.ranking = rankTrackers(e.cfg.Ranking, trackers)
	e.stale = false
}
