package server

import (
	"math/rand"
)

// jitter adds a bounded random angle to firing headings so repeated shots at
// the same opponent are harder to dodge. Each engine owns its source so a
// fixed seed replays the same sequence.
type jitter struct {
	rng    *rand.Rand
	maxDeg float64
}

func newJitter(seed int64, maxDeg float64) *jitter {
	return &jitter{
		rng:    rand.New(rand.NewSource(seed)),
		maxDeg: maxDeg,
	}
}

// offsetDeg returns a random angle in degrees within ±maxDeg
func (j *jitter) offsetDeg() float64 {
	if j == nil || j.maxDeg <= 0 {
		return 0
	}
	// Uniform value between -1 and 1, scaled by maxDeg
	return (j.rng.Float64()*2 - 1) * j.maxDeg
}
