package game

// Tracker keeps the ping history of one opponent and the pattern fitted to it
type Tracker struct {
	name        string
	rules       Rules
	cfg         ClassifierConfig
	pings       []Ping // Most recent first
	pattern     Pattern
	firstEnergy float64
}

// NewTracker creates an empty tracker for the named opponent
func NewTracker(name string, rules Rules, cfg ClassifierConfig) *Tracker {
	return &Tracker{
		name:    name,
		rules:   rules,
		cfg:     cfg,
		pattern: Unclassified{},
	}
}

// Name of the tracked opponent
func (t *Tracker) Name() string {
	return t.name
}

// AddPing records a new observation. Pings at or before the latest tick and
// pings with non-finite coordinates are dropped and false is returned.
func (t *Tracker) AddPing(p Ping) bool {
	if !p.Location.IsFinite() || !isFinite(p.Heading) || !isFinite(p.Velocity) {
		return false
	}
	if len(t.pings) > 0 && p.Tick <= t.pings[0].Tick {
		return false
	}
	if len(t.pings) == 0 {
		t.firstEnergy = p.Energy
	}

	t.pings = append(t.pings, Ping{})
	copy(t.pings[1:], t.pings)
	t.pings[0] = p

	if t.cfg.HistoryLimit > 0 && len(t.pings) > t.cfg.HistoryLimit {
		t.pings = t.pings[:t.cfg.HistoryLimit]
	}
	return true
}

// Pings returns a copy of the history, most recent first
func (t *Tracker) Pings() []Ping {
	out := make([]Ping, len(t.pings))
	copy(out, t.pings)
	return out
}

// LastPing returns the most recent observation
func (t *Tracker) LastPing() (Ping, bool) {
	if len(t.pings) == 0 {
		return Ping{}, false
	}
	return t.pings[0], true
}

func (t *Tracker) NoPings() bool {
	return len(t.pings) == 0
}

// LastKnownEnergy is the energy from the latest ping, or 0 with no pings
func (t *Tracker) LastKnownEnergy() float64 {
	if len(t.pings) == 0 {
		return 0
	}
	return t.pings[0].Energy
}

// FirstEnergy is the energy recorded on the first ping ever seen
func (t *Tracker) FirstEnergy() float64 {
	return t.firstEnergy
}

func (t *Tracker) Pattern() Pattern {
	return t.pattern
}

func (t *Tracker) Kind() PatternKind {
	return t.pattern.Kind()
}

// ResetPatterns drops the fitted pattern
func (t *Tracker) ResetPatterns() {
	t.pattern = Unclassified{}
}

// FindPatterns reclassifies the history from scratch
func (t *Tracker) FindPatterns() Pattern {
	t.ResetPatterns()
	t.pattern = Classify(t.pings, t.cfg)
	return t.pattern
}

// LocationAt predicts where the opponent will be at tick. ok is false with no
// pings, for ticks before the latest ping, or, for patterns stepped tick by
// tick, beyond the prediction horizon.
func (t *Tracker) LocationAt(tick int64) (Location, bool) {
	loc, _, ok := t.predict(tick)
	return loc, ok
}

// HeadingAt predicts the opponent's heading at tick
func (t *Tracker) HeadingAt(tick int64) (float64, bool) {
	_, heading, ok := t.predict(tick)
	return heading, ok
}

// Predict returns both location and heading at tick
func (t *Tracker) Predict(tick int64) (Location, float64, bool) {
	return t.predict(tick)
}

func (t *Tracker) predict(tick int64) (Location, float64, bool) {
	if len(t.pings) == 0 {
		return Location{}, 0, false
	}
	head := t.pings[0]
	if tick < head.Tick {
		return Location{}, 0, false
	}
	if stepped(t.pattern) && t.cfg.Horizon > 0 && tick-head.Tick > t.cfg.Horizon {
		return Location{}, 0, false
	}

	loc, heading := t.pattern.predict(t.rules, t.pings, tick)
	if !loc.IsFinite() || !isFinite(heading) {
		return Location{}, 0, false
	}
	return loc, heading, true
}

// stepped reports whether a pattern predicts by simulating every tick.
// Closed-form patterns answer any tick.
func stepped(p Pattern) bool {
	switch p.(type) {
	case Linear, Extrapolated:
		return true
	default:
		return false
	}
}
