package sim

import (
	"fmt"
	"math"
	"os"

	"github.com/lab1702/marksman/game"
	"github.com/lab1702/marksman/server"
	"gopkg.in/yaml.v3"
)

// ScenarioScript is a deterministic, script-driven engagement: one shooter and
// a set of opponents whose motion is computed tick by tick from a small set of
// motion kinds.
//
// YAML schema (v1):
//
//	version: 1
//	ticks: 300
//	shooter:
//	  x: 400
//	  y: 300
//	  heading: 0
//	  velocity: 0
//	  turn_rate: 0
//	  gun_heading: 0
//	opponents:
//	  - name: walls
//	    motion: line        # stationary | circle | line | turn
//	    x: 100
//	    y: 100
//	    heading: 90
//	    velocity: 8         # top speed for line
//	    length: 400         # line only
//	    radius: 120         # circle only
//	    turn_rate: 3        # turn only, degrees per tick
//	    acceleration: 0     # turn only
//	    energy: 100
//	    scan_every: 1
//	    scan_offset: 0
//	    blackouts:
//	      - {from: 50, to: 60}
//
// Opponents are scanned on ticks where (tick - scan_offset) is a multiple of
// scan_every, except inside a blackout.
type ScenarioScript struct {
	Version   int                `yaml:"version"`
	Ticks     int64              `yaml:"ticks"`
	Shooter   ScenarioShooter    `yaml:"shooter"`
	Opponents []ScenarioOpponent `yaml:"opponents"`
}

// ScenarioShooter drives at constant speed and turn rate
type ScenarioShooter struct {
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	Heading    float64 `yaml:"heading"`
	Velocity   float64 `yaml:"velocity"`
	TurnRate   float64 `yaml:"turn_rate"`
	GunHeading float64 `yaml:"gun_heading"`
}

type ScenarioOpponent struct {
	Name         string      `yaml:"name"`
	Motion       string      `yaml:"motion"`
	X            float64     `yaml:"x"`
	Y            float64     `yaml:"y"`
	Heading      float64     `yaml:"heading"`
	Velocity     float64     `yaml:"velocity"`
	Length       float64     `yaml:"length"`
	Radius       float64     `yaml:"radius"`
	TurnRate     float64     `yaml:"turn_rate"`
	Acceleration float64     `yaml:"acceleration"`
	Energy       float64     `yaml:"energy"`
	ScanEvery    int64       `yaml:"scan_every"`
	ScanOffset   int64       `yaml:"scan_offset"`
	Blackouts    []TickRange `yaml:"blackouts"`
}

// TickRange is an inclusive range of ticks
type TickRange struct {
	From int64 `yaml:"from"`
	To   int64 `yaml:"to"`
}

func (r TickRange) contains(tick int64) bool {
	return tick >= r.From && tick <= r.To
}

// Motion kinds
const (
	MotionStationary = "stationary"
	MotionCircle     = "circle"
	MotionLine       = "line"
	MotionTurn       = "turn"
)

// Scenario is the validated runtime representation with the ground truth of
// every opponent precomputed for ticks 0..Ticks.
type Scenario struct {
	script ScenarioScript
	rules  game.Rules
	truth  map[string][]game.Ping
	names  []string
}

// LoadScenarioScript reads and unmarshals a YAML scenario script from path.
func LoadScenarioScript(path string) (ScenarioScript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScenarioScript{}, fmt.Errorf("read scenario: %w", err)
	}
	s, err := ParseScenarioScriptYAML(b)
	if err != nil {
		return ScenarioScript{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseScenarioScriptYAML parses a YAML scenario script.
func ParseScenarioScriptYAML(b []byte) (ScenarioScript, error) {
	var s ScenarioScript
	if err := yaml.Unmarshal(b, &s); err != nil {
		return ScenarioScript{}, fmt.Errorf("parse scenario: %w", err)
	}
	return s, nil
}

// NewScenario validates script and computes every opponent's ground truth
// under rules.
func NewScenario(script ScenarioScript, rules game.Rules) (*Scenario, error) {
	if script.Version == 0 {
		script.Version = 1
	}
	if script.Version != 1 {
		return nil, fmt.Errorf("unsupported scenario version %d", script.Version)
	}
	if script.Ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive")
	}
	if len(script.Opponents) == 0 {
		return nil, fmt.Errorf("opponents is required")
	}

	s := &Scenario{
		script: script,
		rules:  rules,
		truth:  make(map[string][]game.Ping, len(script.Opponents)),
	}
	for i := range script.Opponents {
		o := &script.Opponents[i]
		if o.Name == "" {
			return nil, fmt.Errorf("opponents[%d].name is required", i)
		}
		if _, dup := s.truth[o.Name]; dup {
			return nil, fmt.Errorf("opponents[%d]: duplicate name %q", i, o.Name)
		}
		if o.ScanEvery == 0 {
			o.ScanEvery = 1
		}
		if o.ScanEvery < 0 || o.ScanOffset < 0 {
			return nil, fmt.Errorf("opponents[%d]: scan_every and scan_offset cannot be negative", i)
		}
		if o.Energy == 0 {
			o.Energy = 100
		}

		truth, err := s.simulate(*o)
		if err != nil {
			return nil, fmt.Errorf("opponents[%d] (%s): %w", i, o.Name, err)
		}
		s.truth[o.Name] = truth
		s.names = append(s.names, o.Name)
	}
	return s, nil
}

// Ticks returns the last tick of the scenario
func (s *Scenario) Ticks() int64 {
	return s.script.Ticks
}

// Opponents returns the opponent names in script order
func (s *Scenario) Opponents() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Truth returns where the opponent actually is at tick
func (s *Scenario) Truth(name string, tick int64) (game.Ping, bool) {
	truth, ok := s.truth[name]
	if !ok || tick < 0 || tick >= int64(len(truth)) {
		return game.Ping{}, false
	}
	return truth[tick], true
}

// ShooterStatus returns the shooter's status at tick
func (s *Scenario) ShooterStatus(tick int64) server.ShooterStatus {
	sh := s.script.Shooter
	loc := game.Location{X: sh.X, Y: sh.Y}
	heading := sh.Heading
	for t := int64(0); t < tick; t++ {
		heading = game.NormalizeHeading(heading + sh.TurnRate)
		loc = game.Project(loc, heading, sh.Velocity)
	}
	return server.ShooterStatus{
		Tick:       tick,
		Location:   loc,
		Heading:    game.NormalizeHeading(heading),
		Velocity:   sh.Velocity,
		GunHeading: game.NormalizeHeading(sh.GunHeading + sh.TurnRate*float64(tick)),
	}
}

// ScansAt returns the observations the shooter receives at tick
func (s *Scenario) ScansAt(tick int64) []server.Observation {
	var out []server.Observation
	for _, o := range s.script.Opponents {
		if !scanned(o, tick) {
			continue
		}
		if p, ok := s.Truth(o.Name, tick); ok {
			out = append(out, server.Observation{Name: o.Name, Ping: p})
		}
	}
	return out
}

func scanned(o ScenarioOpponent, tick int64) bool {
	if tick < o.ScanOffset || (tick-o.ScanOffset)%o.ScanEvery != 0 {
		return false
	}
	for _, b := range o.Blackouts {
		if b.contains(tick) {
			return false
		}
	}
	return true
}

// Shot is a bullet leaving From along Heading at FireTick
type Shot struct {
	FireTick int64
	From     game.Location
	Heading  float64
	Speed    float64
}

// ShotOutcome is how a graded shot ended
type ShotOutcome int

const (
	ShotMissed ShotOutcome = iota
	ShotHit
	// ShotUngraded means the scenario ended while the bullet was in flight
	ShotUngraded
)

func (o ShotOutcome) String() string {
	switch o {
	case ShotHit:
		return "hit"
	case ShotUngraded:
		return "ungraded"
	default:
		return "miss"
	}
}

// Hit follows the bullet tick by tick for at most maxFlight ticks and reports
// the first tick its path crosses the opponent's footprint. A shot still in
// flight when the scenario's ground truth runs out is ShotUngraded.
func (s *Scenario) Hit(name string, shot Shot, maxFlight int64) (int64, ShotOutcome) {
	if shot.Speed <= 0 {
		return 0, ShotMissed
	}
	prev := shot.From
	for flight := int64(1); flight <= maxFlight; flight++ {
		tick := shot.FireTick + flight
		truth, ok := s.Truth(name, tick)
		if !ok {
			return 0, ShotUngraded
		}
		bullet := game.Project(shot.From, shot.Heading, shot.Speed*float64(flight))
		if crossesFootprint(truth.Location, truth.Heading, prev, bullet, s.rules.BotHalfWidth) {
			return tick, ShotHit
		}
		prev = bullet
	}
	return 0, ShotMissed
}

// crossesFootprint clips segment a-b against the footprint square in the
// robot's own frame.
func crossesFootprint(center game.Location, heading float64, a, b game.Location, halfWidth float64) bool {
	la := game.VectorBetween(center, a).Rotate(-heading)
	lb := game.VectorBetween(center, b).Rotate(-heading)
	d := game.Vector{X: lb.X - la.X, Y: lb.Y - la.Y}

	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = math.Min(t1, r)
		}
		return true
	}

	return clip(-d.X, la.X+halfWidth) &&
		clip(d.X, halfWidth-la.X) &&
		clip(-d.Y, la.Y+halfWidth) &&
		clip(d.Y, halfWidth-la.Y) &&
		t0 <= t1
}

func (s *Scenario) simulate(o ScenarioOpponent) ([]game.Ping, error) {
	start := game.Location{X: o.X, Y: o.Y}
	heading := game.NormalizeHeading(o.Heading)
	n := s.script.Ticks + 1
	out := make([]game.Ping, 0, n)
	emit := func(tick int64, loc game.Location, heading, velocity float64) {
		out = append(out, game.Ping{
			Tick:     tick,
			Location: loc,
			Heading:  game.NormalizeHeading(heading),
			Velocity: velocity,
			Energy:   o.Energy,
		})
	}

	switch o.Motion {
	case MotionStationary, "":
		for t := int64(0); t < n; t++ {
			emit(t, start, heading, 0)
		}

	case MotionCircle:
		if o.Radius <= 0 || o.Velocity == 0 {
			return nil, fmt.Errorf("circle needs a positive radius and a velocity")
		}
		// Clockwise for forward velocity: the center is to the right
		circle := game.Circle{Center: game.Project(start, heading+90, o.Radius), Radius: o.Radius}
		angle0 := heading - 90
		step := circle.StepAngle(o.Velocity)
		for t := int64(0); t < n; t++ {
			angle := angle0 + step*float64(t)
			emit(t, game.Project(circle.Center, angle, o.Radius), angle+90, o.Velocity)
		}

	case MotionLine:
		if o.Length <= 0 || o.Velocity <= 0 {
			return nil, fmt.Errorf("line needs a positive length and velocity")
		}
		s.shuttle(o, start, heading, n, emit)

	case MotionTurn:
		loc, velocity := start, o.Velocity
		emit(0, loc, heading, velocity)
		for t := int64(1); t < n; t++ {
			heading = game.NormalizeHeading(heading + o.TurnRate)
			velocity = s.rules.StepVelocity(velocity, o.Acceleration)
			loc = game.Project(loc, heading, velocity)
			emit(t, loc, heading, velocity)
		}

	default:
		return nil, fmt.Errorf("unknown motion %q", o.Motion)
	}
	return out, nil
}

// shuttle drives back and forth along a segment without turning, braking to
// a stop at each end.
func (s *Scenario) shuttle(o ScenarioOpponent, start game.Location, heading float64, n int64, emit func(int64, game.Location, float64, float64)) {
	topSpeed := math.Min(o.Velocity, s.rules.MaxVelocity)
	pos, speed, dir := 0.0, 0.0, 1.0

	emit(0, start, heading, 0)
	for t := int64(1); t < n; t++ {
		remaining := o.Length - pos
		if dir < 0 {
			remaining = pos
		}

		if remaining <= game.BrakingDistance(speed, s.rules) {
			speed = math.Max(speed-s.rules.Deceleration, 0)
		} else {
			speed = math.Min(speed+s.rules.Acceleration, topSpeed)
		}
		move := math.Min(speed, remaining)
		pos += dir * move

		velocity := dir * speed
		if remaining-move <= game.DefaultTolerance {
			// Reached the end: report the stop and reverse
			pos = math.Round(pos/o.Length) * o.Length
			speed, velocity = 0, 0
			dir = -dir
		}
		emit(t, game.Project(start, heading, pos), heading, velocity)
	}
}
