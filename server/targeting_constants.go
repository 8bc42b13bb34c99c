package server

// Targeting constants
// These control the firing solver search and target ranking. They are the
// defaults behind SolverConfig and RankingConfig; the config package can
// override every one of them.

const (
	// Solver search bounds
	MaxLeadTicks     = 100 // Candidate ticks into the future tried as impact points
	MaxAimIterations = 50  // Ticks the gun may spend turning before a shot is abandoned

	// Friendly fire checks
	FriendlyFireRadius = 215.0 // Teammates farther than this from the shooter are ignored
	FriendlyTolerance  = 6.0   // Margin added to a teammate's footprint

	// Ranking thresholds
	CriticalEnergy = 50.0  // Opponents at or below this energy are nearly dead
	DroidEnergy    = 100.0 // Opponents first seen at or below this energy carry radar
)
