package game

// Projection extrapolates an opponent from the change between two pings:
// constant turn rate and constant acceleration, clamped by the arena rules.
type Projection struct {
	HeadingRate  float64 // Degrees per tick
	Acceleration float64 // Velocity change per tick
	Heading      float64
	Velocity     float64
	Location     Location
	Tick         int64
}

// FitProjection derives the per-tick deltas between two pings no more than
// maxGap ticks apart.
func FitProjection(recent, older Ping, maxGap int64) (Projection, bool) {
	gap := recent.Tick - older.Tick
	if gap <= 0 || gap > maxGap {
		return Projection{}, false
	}

	ticks := float64(gap)
	return Projection{
		HeadingRate:  ShortestAngle(recent.Heading-older.Heading) / ticks,
		Acceleration: (recent.Velocity - older.Velocity) / ticks,
		Heading:      recent.Heading,
		Velocity:     recent.Velocity,
		Location:     recent.Location,
		Tick:         recent.Tick,
	}, true
}

// HeadingAt returns the heading after turning at a constant rate until tick
func (p Projection) HeadingAt(tick int64) float64 {
	if tick <= p.Tick {
		return NormalizeHeading(p.Heading)
	}
	return NormalizeHeading(p.Heading + float64(tick-p.Tick)*p.HeadingRate)
}

// LocationAt steps the opponent forward tick by tick
func (p Projection) LocationAt(rules Rules, tick int64) Location {
	loc, heading, velocity := p.Location, p.Heading, p.Velocity
	for t := p.Tick; t < tick; t++ {
		heading = NormalizeHeading(heading + p.HeadingRate)
		velocity = rules.StepVelocity(velocity, p.Acceleration)
		loc = Project(loc, heading, velocity)
	}
	return loc
}
