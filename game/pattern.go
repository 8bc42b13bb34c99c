package game

import (
	"fmt"
	"strings"
)

// PatternKind identifies the movement model matched to an opponent
type PatternKind int

const (
	PatternNone PatternKind = iota
	PatternStationary
	PatternLinear
	PatternCircular
	PatternProjection
)

var patternNames = map[PatternKind]string{
	PatternNone:       "none",
	PatternStationary: "stationary",
	PatternLinear:     "linear",
	PatternCircular:   "circular",
	PatternProjection: "projection",
}

func (k PatternKind) String() string {
	if name, ok := patternNames[k]; ok {
		return name
	}
	return fmt.Sprintf("pattern(%d)", int(k))
}

// ParsePatternKind is the inverse of PatternKind.String
func ParsePatternKind(s string) (PatternKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for kind, name := range patternNames {
		if name == s {
			return kind, nil
		}
	}
	return PatternNone, fmt.Errorf("unknown pattern %q", s)
}

// Pattern is a fitted movement model. The set of patterns is closed: the
// variants are Stationary, Linear, Circular, Extrapolated and Unclassified.
type Pattern interface {
	Kind() PatternKind

	// predict returns the location and heading at tick. history is the
	// ping history, most recent first, and is never empty.
	predict(rules Rules, history []Ping, tick int64) (Location, float64)
}

// Unclassified is the fallback when no model fits. It continues in a
// straight line along the last heading at the last velocity.
type Unclassified struct{}

func (Unclassified) Kind() PatternKind { return PatternNone }

func (Unclassified) predict(_ Rules, history []Ping, tick int64) (Location, float64) {
	last := history[0]
	elapsed := float64(tick - last.Tick)
	return Project(last.Location, last.Heading, last.Velocity*elapsed), NormalizeHeading(last.Heading)
}

// Stationary is an opponent that does not move
type Stationary struct {
	Location Location
}

func (Stationary) Kind() PatternKind { return PatternStationary }

func (s Stationary) predict(_ Rules, history []Ping, _ int64) (Location, float64) {
	return s.Location, NormalizeHeading(history[0].Heading)
}

// Linear is an opponent oscillating along a line segment
type Linear struct {
	Line
}

func (Linear) Kind() PatternKind { return PatternLinear }

func (l Linear) predict(rules Rules, history []Ping, tick int64) (Location, float64) {
	last := history[0]
	velocity := last.Velocity
	if len(history) > 1 {
		velocity = l.Orientation(last.Location, history[1].Location, last.Velocity)
	}
	return l.Line.Predict(rules, last, tick, velocity)
}

// Circular is an opponent driving in a circle
type Circular struct {
	Circle
}

func (Circular) Kind() PatternKind { return PatternCircular }

func (c Circular) predict(_ Rules, history []Ping, tick int64) (Location, float64) {
	last := history[0]
	velocity := last.Velocity
	if len(history) > 1 {
		velocity = c.Orientation(last.Location, history[1].Location, last.Velocity)
	}
	return c.Circle.Predict(last, tick, velocity)
}

// Extrapolated wraps a Projection fitted from the two latest pings
type Extrapolated struct {
	Projection
}

func (Extrapolated) Kind() PatternKind { return PatternProjection }

func (e Extrapolated) predict(rules Rules, _ []Ping, tick int64) (Location, float64) {
	return e.LocationAt(rules, tick), e.HeadingAt(tick)
}

// Describe summarizes a pattern's parameters for logs and clients
func Describe(p Pattern) string {
	switch v := p.(type) {
	case Stationary:
		return fmt.Sprintf("stationary at (%.1f, %.1f)", v.Location.X, v.Location.Y)
	case Linear:
		mode := "turning"
		if v.VelocityReversal {
			mode = "reversing"
		}
		return fmt.Sprintf("linear (%.1f, %.1f)-(%.1f, %.1f) %s max %.1f",
			v.Start.X, v.Start.Y, v.End.X, v.End.Y, mode, v.MaxVelocity)
	case Circular:
		return fmt.Sprintf("circular center (%.1f, %.1f) radius %.1f", v.Center.X, v.Center.Y, v.Radius)
	case Extrapolated:
		return fmt.Sprintf("projection turn %.2f/tick accel %.2f/tick", v.HeadingRate, v.Acceleration)
	default:
		return "none"
	}
}
