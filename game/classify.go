package game

import (
	"fmt"
	"math"
)

// Classifier defaults
const (
	DefaultStationaryThreshold = 2
	DefaultLinearThreshold     = 10
	DefaultCircularThreshold   = 4
	DefaultProjectionMaxGap    = 1
	DefaultMaxCircleRadius     = 1000.0
	DefaultLineTolerance       = 1e-3
	DefaultCircleTolerance     = 0.1
	DefaultHeadingTolerance    = 0.1 // Degrees
	DefaultStopVelocity        = 1e-5
	DefaultHistoryLimit        = 100
	DefaultHorizon             = 1000 // Ticks past the last ping
)

// ClassifierConfig controls how pings are matched to patterns. Thresholds
// count confirming pings beyond the ones needed to fit the model.
type ClassifierConfig struct {
	Order []PatternKind

	StationaryThreshold int
	LinearThreshold     int
	CircularThreshold   int
	ProjectionMaxGap    int64

	MaxCircleRadius     float64
	StationaryTolerance float64
	LineTolerance       float64
	CircleTolerance     float64
	HeadingTolerance    float64
	StopVelocity        float64

	// RequireLinearStops rejects a line until both stop points were seen
	RequireLinearStops bool

	HistoryLimit int
	Horizon      int64
}

// DefaultPatternOrder tries the cheapest, most certain models first
func DefaultPatternOrder() []PatternKind {
	return []PatternKind{PatternStationary, PatternCircular, PatternLinear, PatternProjection}
}

// DefaultClassifierConfig returns the standard thresholds
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Order:               DefaultPatternOrder(),
		StationaryThreshold: DefaultStationaryThreshold,
		LinearThreshold:     DefaultLinearThreshold,
		CircularThreshold:   DefaultCircularThreshold,
		ProjectionMaxGap:    DefaultProjectionMaxGap,
		MaxCircleRadius:     DefaultMaxCircleRadius,
		StationaryTolerance: DefaultTolerance,
		LineTolerance:       DefaultLineTolerance,
		CircleTolerance:     DefaultCircleTolerance,
		HeadingTolerance:    DefaultHeadingTolerance,
		StopVelocity:        DefaultStopVelocity,
		RequireLinearStops:  true,
		HistoryLimit:        DefaultHistoryLimit,
		Horizon:             DefaultHorizon,
	}
}

// Validate checks the configuration for values the classifier cannot use
func (c ClassifierConfig) Validate() error {
	seen := make(map[PatternKind]bool)
	for _, kind := range c.Order {
		if kind == PatternNone {
			return fmt.Errorf("pattern order cannot contain %s", kind)
		}
		if _, ok := patternNames[kind]; !ok {
			return fmt.Errorf("unknown pattern %s in order", kind)
		}
		if seen[kind] {
			return fmt.Errorf("pattern %s listed twice", kind)
		}
		seen[kind] = true
	}

	if c.StationaryThreshold < 1 || c.LinearThreshold < 1 || c.CircularThreshold < 1 {
		return fmt.Errorf("thresholds must be positive")
	}
	if c.ProjectionMaxGap < 1 {
		return fmt.Errorf("projection max gap must be positive, got %d", c.ProjectionMaxGap)
	}
	if c.MaxCircleRadius <= 0 {
		return fmt.Errorf("max circle radius must be positive, got %g", c.MaxCircleRadius)
	}
	if c.StationaryTolerance <= 0 || c.LineTolerance <= 0 || c.CircleTolerance <= 0 || c.HeadingTolerance <= 0 {
		return fmt.Errorf("tolerances must be positive")
	}
	if c.StopVelocity < 0 {
		return fmt.Errorf("stop velocity cannot be negative")
	}

	need := max(c.StationaryThreshold+1, c.LinearThreshold+2, c.CircularThreshold+3, 2)
	if c.HistoryLimit < need {
		return fmt.Errorf("history limit %d cannot hold the %d pings the thresholds need", c.HistoryLimit, need)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	return nil
}

// Classify returns the first pattern in cfg.Order that fits the pings,
// which are ordered most recent first. Unclassified is returned when
// nothing fits.
func Classify(pings []Ping, cfg ClassifierConfig) Pattern {
	for _, kind := range cfg.Order {
		switch kind {
		case PatternStationary:
			if loc, ok := ClassifyStationary(pings, cfg.StationaryThreshold, cfg.StationaryTolerance); ok {
				return Stationary{Location: loc}
			}
		case PatternLinear:
			if line, ok := ClassifyLinear(pings, cfg); ok {
				return Linear{Line: line}
			}
		case PatternCircular:
			if circle, ok := ClassifyCircular(pings, cfg.CircularThreshold, cfg.MaxCircleRadius, cfg.CircleTolerance); ok {
				return Circular{Circle: circle}
			}
		case PatternProjection:
			if len(pings) >= 2 {
				if p, ok := FitProjection(pings[0], pings[1], cfg.ProjectionMaxGap); ok {
					return Extrapolated{Projection: p}
				}
			}
		}
	}
	return Unclassified{}
}

// ClassifyStationary matches an opponent that stayed within tolerance of its
// latest location for at least threshold distinct earlier ticks.
func ClassifyStationary(pings []Ping, threshold int, tolerance float64) (Location, bool) {
	if threshold < 1 || len(pings) < threshold+1 {
		return Location{}, false
	}

	anchor := pings[0]
	lastTick := anchor.Tick
	count := 0
	for _, p := range pings[1:] {
		if !p.Location.Near(anchor.Location, tolerance) {
			break
		}
		if p.Tick != lastTick {
			count++
			lastTick = p.Tick
		}
	}

	if count < threshold {
		return Location{}, false
	}
	return anchor.Location, true
}

// ClassifyCircular fits a circle through the three latest pings and checks the
// next threshold pings lie on it.
func ClassifyCircular(pings []Ping, threshold int, maxRadius, tolerance float64) (Circle, bool) {
	if threshold < 1 || len(pings) < threshold+3 {
		return Circle{}, false
	}

	circle, ok := FitCircle(pings[0].Location, pings[1].Location, pings[2].Location)
	if !ok || circle.Radius > maxRadius {
		return Circle{}, false
	}

	for _, p := range pings[3 : threshold+3] {
		if !circle.Contains(p.Location, tolerance) {
			return Circle{}, false
		}
	}
	return circle, true
}

// ClassifyLinear fits a line through the latest ping and the first older ping
// at a different location, then walks back through the history while pings
// stay on it. Stops (near-zero velocity) mark the segment bounds; a third
// distinct stop ends the run.
func ClassifyLinear(pings []Ping, cfg ClassifierConfig) (Line, bool) {
	threshold := cfg.LinearThreshold
	if threshold < 1 || len(pings) < threshold+2 {
		return Line{}, false
	}

	head := pings[0]
	anchor := -1
	for i := 1; i < len(pings); i++ {
		if !pings[i].Location.SameAs(head.Location) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return Line{}, false
	}
	fit := FitLine(head.Location, pings[anchor].Location, false, 0)

	var stops []Location
	addStop := func(loc Location) bool {
		for _, s := range stops {
			if s.SameAs(loc) {
				return true
			}
		}
		if len(stops) == 2 {
			return false
		}
		stops = append(stops, loc)
		return true
	}

	sameHeading := true
	maxVelocity := 0.0
	confirmed := 0
	run := make([]Location, 0, len(pings))

	for i, p := range pings {
		if i > anchor && !fit.Contains(p.Location, cfg.LineTolerance) {
			break
		}
		if math.Abs(p.Velocity) <= cfg.StopVelocity && !addStop(p.Location) {
			break
		}
		if i > anchor {
			confirmed++
		}
		maxVelocity = math.Max(maxVelocity, math.Abs(p.Velocity))
		if math.Abs(ShortestAngle(p.Heading-head.Heading)) >= cfg.HeadingTolerance {
			sameHeading = false
		}
		run = append(run, p.Location)
	}

	if confirmed < threshold {
		return Line{}, false
	}
	if len(stops) == 2 {
		return FitLine(stops[0], stops[1], sameHeading, maxVelocity), true
	}
	if cfg.RequireLinearStops {
		return Line{}, false
	}

	low, high, ok := extremes(fit, run)
	if !ok {
		return Line{}, false
	}
	return FitLine(low, high, sameHeading, maxVelocity), true
}

// extremes returns the two points of run farthest apart along the line
func extremes(l Line, run []Location) (Location, Location, bool) {
	axis, ok := VectorBetween(l.Start, l.End).Normalize()
	if !ok || len(run) == 0 {
		return Location{}, Location{}, false
	}

	low, high := run[0], run[0]
	lowT, highT := math.Inf(1), math.Inf(-1)
	for _, p := range run {
		t := VectorBetween(l.Start, p).Dot(axis)
		if t < lowT {
			lowT, low = t, p
		}
		if t > highT {
			highT, high = t, p
		}
	}
	if low.SameAs(high) {
		return Location{}, Location{}, false
	}
	return low, high, true
}
