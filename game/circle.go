package game

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Circle models an opponent driving around a fixed center at constant speed
type Circle struct {
	Center Location
	Radius float64
}

// FitCircle returns the circle through three points. ok is false when the
// points are collinear or coincide.
func FitCircle(a, b, c Location) (Circle, bool) {
	// The center is equidistant from all three points, which gives two
	// linear equations from the perpendicular bisectors of a-b and a-c.
	coef := mat.NewDense(2, 2, []float64{
		2 * (b.X - a.X), 2 * (b.Y - a.Y),
		2 * (c.X - a.X), 2 * (c.Y - a.Y),
	})
	rhs := mat.NewVecDense(2, []float64{
		b.X*b.X + b.Y*b.Y - a.X*a.X - a.Y*a.Y,
		c.X*c.X + c.Y*c.Y - a.X*a.X - a.Y*a.Y,
	})

	var center mat.VecDense
	if err := center.SolveVec(coef, rhs); err != nil {
		return Circle{}, false
	}

	circle := Circle{Center: Location{X: center.AtVec(0), Y: center.AtVec(1)}}
	if !circle.Center.IsFinite() {
		return Circle{}, false
	}
	circle.Radius = circle.Center.Distance(a)
	if !isFinite(circle.Radius) || circle.Radius < DefaultTolerance {
		return Circle{}, false
	}
	return circle, true
}

// Contains reports whether p lies on the circumference within tolerance
func (c Circle) Contains(p Location, tolerance float64) bool {
	return scalar.EqualWithinAbs(c.Center.Distance(p), c.Radius, tolerance)
}

// AngleFor returns the arena heading from the center to p
func (c Circle) AngleFor(p Location) float64 {
	return HeadingTo(c.Center, p)
}

// Orientation signs velocity by the direction of travel around the center:
// clockwise is positive.
func (c Circle) Orientation(last, prev Location, velocity float64) float64 {
	cross := (prev.Y-c.Center.Y)*(last.X-prev.X) - (prev.X-c.Center.X)*(last.Y-prev.Y)
	if cross > 0 {
		return math.Abs(velocity)
	}
	return -math.Abs(velocity)
}

// StepAngle is the arc in degrees swept per tick at the given signed velocity
func (c Circle) StepAngle(signedVelocity float64) float64 {
	if c.Radius <= 0 {
		return 0
	}
	return signedVelocity / c.Radius * 180 / math.Pi
}

// Predict returns the location and heading at tick, assuming the opponent
// keeps its speed from the last ping.
func (c Circle) Predict(last Ping, tick int64, signedVelocity float64) (Location, float64) {
	swept := c.StepAngle(signedVelocity) * float64(tick-last.Tick)
	angle := c.AngleFor(last.Location) + swept
	return Project(c.Center, angle, c.Radius), NormalizeHeading(last.Heading + swept)
}
