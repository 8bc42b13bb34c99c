package server

import (
	"sort"

	"github.com/lab1702/marksman/game"
)

// RankingConfig orders opponents for target selection
type RankingConfig struct {
	// KindOrder lists pattern kinds from most to least wanted. Kinds not
	// listed rank after every listed kind.
	KindOrder      []game.PatternKind
	CriticalEnergy float64
	DroidEnergy    float64
}

// DefaultRankingConfig puts predictable opponents first
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		KindOrder: []game.PatternKind{
			game.PatternStationary,
			game.PatternCircular,
			game.PatternLinear,
			game.PatternProjection,
		},
		CriticalEnergy: CriticalEnergy,
		DroidEnergy:    DroidEnergy,
	}
}

// Priority classes inside a pattern group
const (
	priorityCritical = iota // Nearly dead
	priorityRadar           // Carries radar, first seen at or below DroidEnergy
	priorityOther
)

// RankedTarget is one opponent in ranking order
type RankedTarget struct {
	Name     string           `json:"name"`
	Kind     game.PatternKind `json:"-"`
	Pattern  string           `json:"pattern"`
	Energy   float64          `json:"energy"`
	Critical bool             `json:"critical"`
	Radar    bool             `json:"radar"`
	Summary  string           `json:"summary"`
}

func priorityClass(cfg RankingConfig, t *game.Tracker) int {
	switch {
	case t.LastKnownEnergy() <= cfg.CriticalEnergy:
		return priorityCritical
	case t.FirstEnergy() <= cfg.DroidEnergy:
		return priorityRadar
	default:
		return priorityOther
	}
}

// rankTrackers groups trackers by pattern kind in cfg.KindOrder. Within a
// group critically damaged opponents come first, then radar carriers, then
// the rest, each by ascending energy. Ties break on name so the order is
// stable across calls.
func rankTrackers(cfg RankingConfig, trackers []*game.Tracker) []*game.Tracker {
	kindRank := make(map[game.PatternKind]int, len(cfg.KindOrder))
	for i, kind := range cfg.KindOrder {
		if _, ok := kindRank[kind]; !ok {
			kindRank[kind] = i
		}
	}
	rankOf := func(kind game.PatternKind) int {
		if r, ok := kindRank[kind]; ok {
			return r
		}
		return len(cfg.KindOrder)
	}

	ranked := make([]*game.Tracker, len(trackers))
	copy(ranked, trackers)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if ra, rb := rankOf(a.Kind()), rankOf(b.Kind()); ra != rb {
			return ra < rb
		}
		if pa, pb := priorityClass(cfg, a), priorityClass(cfg, b); pa != pb {
			return pa < pb
		}
		if ea, eb := a.LastKnownEnergy(), b.LastKnownEnergy(); ea != eb {
			return ea < eb
		}
		return a.Name() < b.Name()
	})
	return ranked
}

func describeRanked(cfg RankingConfig, t *game.Tracker) RankedTarget {
	class := priorityClass(cfg, t)
	return RankedTarget{
		Name:     t.Name(),
		Kind:     t.Kind(),
		Pattern:  t.Kind().String(),
		Energy:   t.LastKnownEnergy(),
		Critical: class == priorityCritical,
		Radar:    t.FirstEnergy() <= cfg.DroidEnergy,
		Summary:  game.Describe(t.Pattern()),
	}
}
