package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Angles in the arena are measured from the Y axis, clockwise.
// Polar angles are measured from the X axis, counter-clockwise.
const polarToArenaOffset = 90.0

// Location is a point in arena coordinates
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector is a displacement in arena coordinates
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (l Location) vec() r2.Vec { return r2.Vec{X: l.X, Y: l.Y} }
func (v Vector) vec() r2.Vec   { return r2.Vec{X: v.X, Y: v.Y} }
func fromVec(p r2.Vec) Vector  { return Vector{X: p.X, Y: p.Y} }

// Distance returns the euclidean distance to o
func (l Location) Distance(o Location) float64 {
	return r2.Norm(r2.Sub(o.vec(), l.vec()))
}

// Near reports whether o is closer than tolerance
func (l Location) Near(o Location, tolerance float64) bool {
	return l.Distance(o) < tolerance
}

// SameAs reports whether o is the same point within DefaultTolerance
func (l Location) SameAs(o Location) bool {
	return l.Near(o, DefaultTolerance)
}

// Add applies a displacement to the location
func (l Location) Add(v Vector) Location {
	p := r2.Add(l.vec(), v.vec())
	return Location{X: p.X, Y: p.Y}
}

// IsFinite reports whether both coordinates are real numbers
func (l Location) IsFinite() bool {
	return isFinite(l.X) && isFinite(l.Y)
}

// VectorBetween returns the displacement from one location to another
func VectorBetween(from, to Location) Vector {
	return fromVec(r2.Sub(to.vec(), from.vec()))
}

// Length of the vector
func (v Vector) Length() float64 {
	return r2.Norm(v.vec())
}

// Normalize returns the unit vector with the same orientation.
// ok is false for a zero-length vector, which has no orientation.
func (v Vector) Normalize() (Vector, bool) {
	if v.Length() < DefaultTolerance*DefaultTolerance {
		return Vector{}, false
	}
	return fromVec(r2.Unit(v.vec())), true
}

// Scale multiplies the vector by a constant
func (v Vector) Scale(f float64) Vector {
	return fromVec(r2.Scale(f, v.vec()))
}

// Negate returns the vector with opposite orientation
func (v Vector) Negate() Vector {
	return v.Scale(-1)
}

// SetLength returns a vector with the same orientation and the given length.
// ok is false for a zero-length vector.
func (v Vector) SetLength(length float64) (Vector, bool) {
	unit, ok := v.Normalize()
	if !ok {
		return Vector{}, false
	}
	return unit.Scale(length), true
}

// Add sums two vectors
func (v Vector) Add(o Vector) Vector {
	return fromVec(r2.Add(v.vec(), o.vec()))
}

// Dot product
func (v Vector) Dot(o Vector) float64 {
	return r2.Dot(v.vec(), o.vec())
}

// Heading returns the arena angle of the vector. A zero vector points at 0.
func (v Vector) Heading() float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return PolarToArena(math.Atan2(v.Y, v.X) * 180 / math.Pi)
}

// AngleBetween returns the signed angle in [-180, 180] to rotate v onto o,
// positive clockwise.
func (v Vector) AngleBetween(o Vector) float64 {
	return ShortestAngle(o.Heading() - v.Heading())
}

// Rotate turns the vector clockwise by the given degrees
func (v Vector) Rotate(degrees float64) Vector {
	return fromVec(r2.Rotate(v.vec(), -degrees*math.Pi/180, r2.Vec{}))
}

// PerpendicularClockwise returns v turned 90 degrees clockwise
func (v Vector) PerpendicularClockwise() Vector {
	return Vector{X: v.Y, Y: -v.X}
}

// PerpendicularCounterClockwise returns v turned 90 degrees counter-clockwise
func (v Vector) PerpendicularCounterClockwise() Vector {
	return Vector{X: -v.Y, Y: v.X}
}

// NormalizeHeading keeps an angle in [0, 360)
func NormalizeHeading(angle float64) float64 {
	if !isFinite(angle) {
		return 0
	}
	angle = math.Mod(angle, FullRotation)
	if angle < 0 {
		angle += FullRotation
	}
	if angle >= FullRotation {
		angle = 0
	}
	return angle
}

// ShortestAngle maps an angle delta to (-180, 180]
func ShortestAngle(angle float64) float64 {
	angle = NormalizeHeading(angle)
	if angle > FullRotation/2 {
		angle -= FullRotation
	}
	return angle
}

// ArenaToPolar converts an arena angle to a polar angle. The conversion is its
// own inverse, so PolarToArena is the same transform.
func ArenaToPolar(angle float64) float64 {
	return NormalizeHeading(polarToArenaOffset - angle)
}

// PolarToArena converts a polar angle to an arena angle
func PolarToArena(angle float64) float64 {
	return ArenaToPolar(angle)
}

// HeadingVector returns the unit vector pointing along an arena heading
func HeadingVector(heading float64) Vector {
	rad := ArenaToPolar(heading) * math.Pi / 180
	return Vector{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Project moves length units from origin along an arena heading
func Project(origin Location, heading, length float64) Location {
	return origin.Add(HeadingVector(heading).Scale(length))
}

// HeadingTo returns the arena heading from one location to another
func HeadingTo(from, to Location) float64 {
	return VectorBetween(from, to).Heading()
}

// ScanLocation converts a relative scan (bearing from the observer's heading
// and distance) into an absolute location.
func ScanLocation(observer Location, observerHeading, bearing, distance float64) Location {
	return Project(observer, observerHeading+bearing, distance)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
