package game

import "math"

// InsideFootprint reports whether p lies within the square footprint of a
// robot centered at center and turned to heading. tolerance grows the square
// on every side.
func InsideFootprint(center Location, heading float64, p Location, halfWidth, tolerance float64) bool {
	local := VectorBetween(center, p).Rotate(-heading)
	limit := halfWidth + tolerance
	return math.Abs(local.X) <= limit && math.Abs(local.Y) <= limit
}

// ClosestOnSegment returns the point of segment a-b closest to p
func ClosestOnSegment(a, b, p Location) Location {
	ab := VectorBetween(a, b)
	lengthSq := ab.Dot(ab)
	if lengthSq == 0 {
		return a
	}
	t := VectorBetween(a, p).Dot(ab) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Scale(t))
}
