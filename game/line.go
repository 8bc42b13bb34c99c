package game

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

var arenaOrigin = Location{X: 0, Y: 0}

// Line models an opponent travelling back and forth along a straight segment.
// Start and End are the two stop points, ordered by distance from the arena
// origin so that moving toward End is the positive direction.
type Line struct {
	Slope     float64 // +Inf for a vertical line
	Intercept float64 // Y intercept, or the X of a vertical line
	Start     Location
	End       Location

	// VelocityReversal is set when the opponent backs up at the bounds
	// (velocity sign flips, heading kept). Otherwise it turns around and
	// pays Rules.ReversalTicks at every bound.
	VelocityReversal bool

	// MaxVelocity is the fastest speed observed on the segment
	MaxVelocity float64
}

// FitLine builds the line through a and b
func FitLine(a, b Location, reversal bool, maxVelocity float64) Line {
	l := Line{
		VelocityReversal: reversal,
		MaxVelocity:      maxVelocity,
	}

	if math.Abs(a.X-b.X) < DefaultTolerance {
		l.Slope = math.Inf(1)
		l.Intercept = a.X
	} else {
		l.Slope = (a.Y - b.Y) / (a.X - b.X)
		l.Intercept = a.Y - l.Slope*a.X
	}

	if a.Distance(arenaOrigin) <= b.Distance(arenaOrigin) {
		l.Start, l.End = a, b
	} else {
		l.Start, l.End = b, a
	}
	return l
}

// Vertical reports whether the line is parallel to the Y axis
func (l Line) Vertical() bool {
	return math.IsInf(l.Slope, 0)
}

// Contains reports whether p satisfies the line equation within tolerance
func (l Line) Contains(p Location, tolerance float64) bool {
	if l.Vertical() {
		return scalar.EqualWithinAbs(p.X, l.Intercept, tolerance)
	}
	return scalar.EqualWithinAbs(p.Y, l.Slope*p.X+l.Intercept, tolerance)
}

// Heading returns the arena heading from Start to End
func (l Line) Heading() float64 {
	return HeadingTo(l.Start, l.End)
}

// Length of the segment between the stop points
func (l Line) Length() float64 {
	return l.Start.Distance(l.End)
}

// Orientation signs velocity by the direction of travel: moving away from
// the arena origin is positive.
func (l Line) Orientation(last, prev Location, velocity float64) float64 {
	if last.Distance(arenaOrigin) > prev.Distance(arenaOrigin) {
		return math.Abs(velocity)
	}
	return -math.Abs(velocity)
}

// BrakingDistance returns how far a robot travels while braking to a stop
func BrakingDistance(velocity float64, rules Rules) float64 {
	if rules.Deceleration <= 0 {
		return 0
	}
	v := math.Abs(velocity)
	distance := 0.0
	for v > 0 {
		v = math.Max(v-rules.Deceleration, 0)
		distance += v
	}
	return distance
}

// Predict returns the location and heading at tick, given the last ping and
// the orientation-signed velocity from Orientation.
func (l Line) Predict(rules Rules, last Ping, tick int64, signedVelocity float64) (Location, float64) {
	loc, flips := l.travel(rules, last.Location, tick-last.Tick, signedVelocity)
	if l.VelocityReversal || flips%2 == 0 {
		return loc, NormalizeHeading(last.Heading)
	}
	return loc, NormalizeHeading(last.Heading + FullRotation/2)
}

// travel steps the robot along the segment one tick at a time and reports
// where it ends up and how many times it changed direction.
func (l Line) travel(rules Rules, from Location, ticks int64, signedVelocity float64) (Location, int) {
	axis, ok := VectorBetween(l.Start, l.End).Normalize()
	if !ok {
		return from, 0
	}

	maxVelocity := rules.MaxVelocity
	if l.MaxVelocity > 0 && l.MaxVelocity < maxVelocity {
		maxVelocity = l.MaxVelocity
	}

	direction := 1.0
	if math.Signbit(signedVelocity) {
		direction = -1
	}
	speed := math.Min(math.Abs(signedVelocity), maxVelocity)
	loc := from
	flips := 0

	for remaining := ticks; remaining > 0; remaining-- {
		stop := l.End
		if direction < 0 {
			stop = l.Start
		}

		gap := VectorBetween(loc, stop).Dot(axis.Scale(direction))
		if gap <= DefaultTolerance {
			loc = stop
			speed = 0
			direction = -direction
			flips++
			if !l.VelocityReversal {
				remaining -= rules.ReversalTicks()
			}
			continue
		}

		if BrakingDistance(speed, rules) >= gap {
			speed = math.Max(speed-rules.Deceleration, 0)
		} else {
			speed = math.Min(speed+rules.Acceleration, maxVelocity)
		}
		loc = loc.Add(axis.Scale(direction * math.Min(speed, gap)))
	}

	return loc, flips
}
