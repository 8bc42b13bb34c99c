package game

import (
	"math"
)

// Constants from the host arena rules
const (
	// Movement constants
	MaxVelocity  = 8.0  // Units per tick
	Acceleration = 1.0  // Velocity gained per tick when speeding up
	Deceleration = 2.0  // Velocity lost per tick when braking
	MaxTurnRate  = 10.0 // Chassis degrees per tick at rest
	GunTurnRate  = 20.0 // Turret degrees per tick

	// Bullet constants
	MinBulletPower      = 0.1
	MaxBulletPower      = 3.0
	BulletBaseSpeed     = 20.0 // Bullet speed at zero power
	BulletSpeedPerPower = 3.0  // Speed lost per unit of power

	// BotHalfWidth is half the side of a robot's square footprint
	BotHalfWidth = 18.0

	// DefaultTolerance is the distance under which two locations are the same
	DefaultTolerance = 1e-5

	// FullRotation in degrees
	FullRotation = 360.0
)

// Rules holds the platform kinematics that every model and the firing solver
// step through. The zero value is not usable; start from DefaultRules.
type Rules struct {
	MaxVelocity         float64
	Acceleration        float64
	Deceleration        float64
	MaxTurnRate         float64
	GunTurnRate         float64
	MinBulletPower      float64
	MaxBulletPower      float64
	BulletBaseSpeed     float64
	BulletSpeedPerPower float64
	BotHalfWidth        float64
}

// DefaultRules returns the stock arena rules.
func DefaultRules() Rules {
	return Rules{
		MaxVelocity:         MaxVelocity,
		Acceleration:        Acceleration,
		Deceleration:        Deceleration,
		MaxTurnRate:         MaxTurnRate,
		GunTurnRate:         GunTurnRate,
		MinBulletPower:      MinBulletPower,
		MaxBulletPower:      MaxBulletPower,
		BulletBaseSpeed:     BulletBaseSpeed,
		BulletSpeedPerPower: BulletSpeedPerPower,
		BotHalfWidth:        BotHalfWidth,
	}
}

// ReversalTicks is the time a robot needs to turn around 180 degrees.
func (r Rules) ReversalTicks() int64 {
	if r.MaxTurnRate <= 0 {
		return 0
	}
	return int64(math.Ceil(180 / r.MaxTurnRate))
}

// StepVelocity applies one tick of acceleration to velocity, clamped to
// [0, MaxVelocity] in magnitude. A velocity never crosses zero: a robot
// driving backwards that decelerates comes to rest.
func (r Rules) StepVelocity(velocity, acceleration float64) float64 {
	if velocity < 0 {
		return -r.StepVelocity(-velocity, -acceleration)
	}
	next := velocity + acceleration
	if acceleration > 0 {
		return math.Min(next, r.MaxVelocity)
	}
	return math.Max(next, 0)
}

// Ping is a single timestamped observation of an opponent.
type Ping struct {
	Tick     int64    `json:"tick"`
	Location Location `json:"location"`
	Heading  float64  `json:"heading"`  // Arena degrees
	Velocity float64  `json:"velocity"` // Negative when driving backwards
	Energy   float64  `json:"energy"`
}

