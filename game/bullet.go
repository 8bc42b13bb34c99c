package game

import "math"

// Bullet power curve defaults
const (
	// FullPowerRadius is the distance within which bullets are fired at full power
	FullPowerRadius = 120.0

	// PowerDropoffRange is the distance over which power drops by PowerDropoffStep
	PowerDropoffRange = 50.0
	PowerDropoffStep  = 0.20
)

// PowerCurve describes how bullet power falls off with distance to the target.
// Within NearRadius the bullet is fired at full power; beyond it power drops
// linearly by DropoffStep every DropoffRange units, down to the platform minimum.
type PowerCurve struct {
	NearRadius   float64
	DropoffRange float64
	DropoffStep  float64
}

// DefaultPowerCurve returns the standard falloff
func DefaultPowerCurve() PowerCurve {
	return PowerCurve{
		NearRadius:   FullPowerRadius,
		DropoffRange: PowerDropoffRange,
		DropoffStep:  PowerDropoffStep,
	}
}

// ClampPower keeps power within the platform limits
func (r Rules) ClampPower(power float64) float64 {
	return math.Max(r.MinBulletPower, math.Min(power, r.MaxBulletPower))
}

// BulletSpeed returns the distance a bullet of the given power covers per tick
func (r Rules) BulletSpeed(power float64) float64 {
	return r.BulletBaseSpeed - r.BulletSpeedPerPower*r.ClampPower(power)
}

// BulletPower returns the power to fire at a target the given distance away
func (r Rules) BulletPower(distance float64, curve PowerCurve) float64 {
	if distance <= curve.NearRadius || curve.DropoffRange <= 0 {
		return r.MaxBulletPower
	}
	drop := (distance - curve.NearRadius) / curve.DropoffRange * curve.DropoffStep
	return r.ClampPower(r.MaxBulletPower - drop)
}

// FlightTicks returns the whole ticks a bullet of the given power needs to
// cover distance. ok is false when the bullet would not move.
func (r Rules) FlightTicks(distance, power float64) (int64, bool) {
	speed := r.BulletSpeed(power)
	if speed <= 0 || !isFinite(distance) {
		return 0, false
	}
	return int64(math.Ceil(distance / speed)), true
}
