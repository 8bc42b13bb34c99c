package game

import (
	"math"
)

// InterceptSolution contains the result of an intercept calculation
type InterceptSolution struct {
	Heading         float64  // Arena heading to fire along
	TimeToIntercept float64  // Ticks until the bullet reaches the target
	InterceptPoint  Location // Where the intercept will occur
}

// Intercept calculates the heading to fire a bullet to meet a target moving
// at constant velocity. It ignores gun turn time and the target's movement
// model, so it serves as the naive baseline for the firing solver.
//
// Parameters:
//
//	shooter: Position of the shooter
//	target: Position of the target
//	targetVel: Velocity of the target (units per tick)
//	bulletSpeed: Speed of the bullet (units per tick)
//
// ok is false if no intercept exists.
func Intercept(shooter, target Location, targetVel Vector, bulletSpeed float64) (InterceptSolution, bool) {
	if bulletSpeed <= 0 {
		return InterceptSolution{}, false
	}

	rel := VectorBetween(shooter, target)
	distSq := rel.Dot(rel)
	if distSq < 1e-9 {
		return InterceptSolution{
			TimeToIntercept: 0,
			InterceptPoint:  shooter,
		}, true
	}

	velSq := targetVel.Dot(targetVel)
	if velSq < 1e-9 {
		return InterceptSolution{
			Heading:         rel.Heading(),
			TimeToIntercept: math.Sqrt(distSq) / bulletSpeed,
			InterceptPoint:  target,
		}, true
	}

	// Find t such that |rel + targetVel*t| = bulletSpeed*t, which expands to
	// a*t² + b*t + c = 0.
	a := velSq - bulletSpeed*bulletSpeed
	b := 2.0 * rel.Dot(targetVel)
	c := distSq

	var t float64
	if math.Abs(a) < 1e-9 {
		// Bullet and target have the same speed
		if math.Abs(b) < 1e-9 {
			return InterceptSolution{}, false
		}
		t = -c / b
		if t < 0 {
			return InterceptSolution{}, false
		}
	} else {
		discriminant := b*b - 4*a*c
		if discriminant < 0 {
			// Target is too fast to intercept
			return InterceptSolution{}, false
		}

		sqrtDiscriminant := math.Sqrt(discriminant)
		t1 := (-b + sqrtDiscriminant) / (2 * a)
		t2 := (-b - sqrtDiscriminant) / (2 * a)

		// Choose the smallest positive time
		switch {
		case t1 > 0 && t2 > 0:
			t = math.Min(t1, t2)
		case t1 > 0:
			t = t1
		case t2 > 0:
			t = t2
		default:
			return InterceptSolution{}, false
		}
	}

	point := target.Add(targetVel.Scale(t))
	return InterceptSolution{
		Heading:         HeadingTo(shooter, point),
		TimeToIntercept: t,
		InterceptPoint:  point,
	}, true
}

// PingVelocity returns the velocity vector observed in a ping
func PingVelocity(p Ping) Vector {
	return HeadingVector(p.Heading).Scale(p.Velocity)
}

// AngleDifference returns the absolute smallest angle between two headings
func AngleDifference(a1, a2 float64) float64 {
	return math.Abs(ShortestAngle(a1 - a2))
}
